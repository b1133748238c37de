package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plural_proxy_server/internal/config"
	dao "plural_proxy_server/internal/dao/mysql"
	myredis "plural_proxy_server/internal/dao/redis"
	"plural_proxy_server/internal/gateway/websocket"
	"plural_proxy_server/internal/handler"
	"plural_proxy_server/internal/https_server"
	"plural_proxy_server/internal/infrastructure/metrics"
	"plural_proxy_server/internal/infrastructure/mq"
	"plural_proxy_server/internal/infrastructure/platform"
	"plural_proxy_server/internal/service"
	"plural_proxy_server/internal/service/logchannel"
	"plural_proxy_server/internal/service/proxy"
	"plural_proxy_server/pkg/tokenseal"
	"plural_proxy_server/pkg/util/jwt"
	"plural_proxy_server/pkg/util/snowflake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the gateway and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveRun(ctx, config.GetConfig())
		},
	}
}

func serveRun(ctx context.Context, conf *config.Config) error {
	// 1. 基础组件
	if err := tokenseal.Init(conf.SecurityConfig.TokenSealKey); err != nil {
		return fmt.Errorf("init token seal: %w", err)
	}
	snowflake.Init(conf.SnowflakeConfig.Epoch)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	if err := handler.InitTrans("en"); err != nil {
		return fmt.Errorf("init validator translations: %w", err)
	}

	// 2. 存储
	repos := dao.Init()
	zap.L().Info("mysql initialized")
	cache := myredis.Init(&conf.RedisConfig)
	defer cache.Close()
	zap.L().Info("redis initialized")

	// 3. 平台客户端
	session, err := platform.NewSession(conf.PlatformConfig.Token)
	if err != nil {
		return err
	}
	client := platform.NewDiscordClient(session)
	if id, err := client.FetchBotUser(ctx); err != nil {
		zap.L().Warn("fetch bot user failed, waiting for READY", zap.Error(err))
	} else {
		zap.L().Info("bot user resolved", zap.Int64("bot_id", id))
	}

	// 4. 事件总线与订阅者
	m := metrics.New()
	bus := mq.NewEventBus(&conf.KafkaConfig)
	bus.Subscribe(m.Handle)
	bus.Subscribe(logchannel.NewObserver(repos.Server, client, conf.PlatformConfig.MessageLinkBase).Handle)
	bus.Start()
	defer bus.Close()

	// 5. 业务层
	services := service.NewServices(repos, cache)
	registry := proxy.NewWebhookRegistry(repos.Webhook, cache, client, conf.ProxyConfig.WebhookName, m)
	router := proxy.NewRouter(services.Member, repos.Message, registry, client, bus,
		conf.ProxyConfig.TriggerDeleteReason, m)
	reconciler := proxy.NewReconciler(repos.Message, client, bus,
		conf.ProxyConfig.CancelEmoji, conf.ProxyConfig.ReactionDeleteReason)

	gateway := websocket.NewGateway(
		session,
		conf.PlatformConfig.Intents,
		conf.PlatformConfig.Workers,
		handler.NewGatewayHandler(router, reconciler, client, client),
	)

	// 6. HTTP 服务
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           https_server.Init(handler.NewHandlers(services), m.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 7. 启动，任一组件退出即整体关闭
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gateway.Run(gctx)
	})
	g.Go(func() error {
		zap.L().Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	zap.L().Info("server stopped")
	return err
}
