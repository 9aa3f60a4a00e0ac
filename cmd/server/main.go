package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/gamerhub/internal/config"
	"github.com/mcoot/gamerhub/internal/factory"
	"github.com/mcoot/gamerhub/internal/server"
	redisstorage "github.com/mcoot/gamerhub/internal/storage/redis"
	"github.com/mcoot/gamerhub/internal/web"
	"github.com/mcoot/gamerhub/internal/web/middleware"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		APIURL:      cfg.APIURL,
		Logger:      logger,
		StorageType: cfg.StorageType,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	router := web.NewRouter(web.RouterConfig{
		Logger:    logger,
		Registry:  app.Registry,
		Validator: app.Validator,
		Cookie: middleware.CookieConfig{
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
	})

	serverCfg := server.DefaultConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	srv := server.New(router, serverCfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.Registry.RunEvictor(ctx, time.Minute, cfg.IdleTimeout)

	l, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		logger.Error("failed to listen", slog.String("addr", srv.Addr()), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server started", slog.String("addr", l.Addr().String()), slog.String("api", cfg.APIURL))

	if err := srv.Run(ctx, l); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
