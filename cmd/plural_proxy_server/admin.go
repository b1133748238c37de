package main

import (
	"fmt"
	"strconv"

	"plural_proxy_server/internal/config"
	dao "plural_proxy_server/internal/dao/mysql"
	"plural_proxy_server/internal/service/logchannel"
	"plural_proxy_server/pkg/util/jwt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := dao.Open(&config.GetConfig().MysqlConfig)
			if err != nil {
				return fmt.Errorf("connect mysql: %w", err)
			}
			if err := dao.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			zap.L().Info("migration finished")
			return nil
		},
	}
}

// tokenCommand 为平台账号签发 API 访问令牌
func tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token <account_id>",
		Short: "Issue an API access token for a platform account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || uid <= 0 {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			conf := config.GetConfig()
			jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
			token, err := jwt.GenerateAccessToken(uid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// logChannelCommand 设置服务器日志频道，channel 为 0 表示关闭
func logChannelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log-channel <guild_id> <channel_id>",
		Short: "Set the channel that receives proxied message logs for a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid guild id %q", args[0])
			}
			channelID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid channel id %q", args[1])
			}
			repos := dao.Init()
			observer := logchannel.NewObserver(repos.Server, nil, config.GetConfig().PlatformConfig.MessageLinkBase)
			return observer.SetLogChannel(cmd.Context(), guildID, channelID)
		},
	}
}
