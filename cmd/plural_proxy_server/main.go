package main

import (
	"fmt"
	"os"

	"plural_proxy_server/internal/config"
	"plural_proxy_server/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const programName = "plural_proxy_server"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Proxy bot for plural systems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// 1. 加载配置
			if configFile != "" {
				config.SetConfigPath(configFile)
			}
			conf := config.GetConfig()

			// 2. 初始化日志
			if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(tokenCommand())
	rootCmd.AddCommand(logChannelCommand())

	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
