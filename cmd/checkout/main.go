package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	_ "github.com/lib/pq"

	"guestpost-checkout/internal/config"
	"guestpost-checkout/internal/notify"
	"guestpost-checkout/internal/server"
	"guestpost-checkout/internal/storage"
	redisstate "guestpost-checkout/internal/storage/redis"
	"guestpost-checkout/pkg/api"
	"guestpost-checkout/pkg/logger"
	"guestpost-checkout/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, storage.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.HTTPRequestTimeout, zapLogger)

	operator, err := notify.New(cfg.TelegramToken, cfg.OperatorChatID, pgStorage, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create operator notifier", zap.Error(err))
	}

	srv := server.New(
		ctx,
		cfg,
		apiClient,
		redisstate.New(redisClient),
		pgStorage,
		operator,
		zapLogger,
	)

	zapLogger.Info("Starting checkout server", zap.String("addr", cfg.ListenAddr))
	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Checkout server shutdown gracefully")
}
