package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gamehub/internal/api"
	"gamehub/internal/config"
	"gamehub/internal/factory"
	"gamehub/internal/services/anticheat"
	redisstorage "gamehub/internal/storage/redis"
	"gamehub/internal/ws"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		AntiCheat: &anticheat.Config{
			ProbabilityThreshold: cfg.BanProbabilityThreshold,
			RequiredConfidence:   cfg.BanRequiredConfidence,
			BanDuration:          cfg.BanDuration,
			Notify:               anticheat.NotifyPolicy(cfg.BanNotify),
		},
		WSOptions: ws.Options{
			AllowedOrigins:  cfg.AllowedOrigins,
			MaxMessageBytes: cfg.MaxMessageBytes,
			ConnectRate:     cfg.ConnectRate,
			ConnectBurst:    cfg.ConnectBurst,
			LeaderboardSize: cfg.LeaderboardSize,
		},
	}

	// Configure Redis if storage type is redis
	if factoryCfg.StorageType == factory.StorageTypeRedis {
		if cfg.RedisURL == "" {
			logger.Error("GAMEHUB_REDIS_URL required when GAMEHUB_STORAGE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Roster:    app.RosterService,
		WSHandler: app.WSHandler,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", factoryCfg.StorageType))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
