package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vastraa/internal/app"
	"vastraa/internal/cache"
	"vastraa/internal/config"
	"vastraa/internal/database"
	"vastraa/internal/logger"
	"vastraa/internal/services"
	"vastraa/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Cache ---
	store, closeStore, err := newCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Messaging ---
	mq, events, sender, err := newMessaging(cfg, log)
	if err != nil {
		return err
	}
	if mq != nil {
		defer mq.Close()
		if err := mq.ConsumeOrderEvents(rabbitmq.OrderEventLogger(log.Named("order-events"))); err != nil {
			log.Warn("order event consumer not started", zap.Error(err))
		}
	}

	// --- Services and HTTP ---
	svc := app.NewServices(db, app.Options{
		Cache:  cache.New(store, cfg.CacheTTL, log.Named("cache")),
		Events: events,
		Sender: sender,
		Auth: services.AuthConfig{
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
			OTPTTL:    cfg.OTPTTL,
		},
	}, log)
	server := app.New(svc, log)

	if cfg.AdminPassword != "" {
		if _, err := svc.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Warn("admin account not provisioned", zap.String("email", cfg.AdminEmail), zap.Error(err))
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("env", cfg.AppEnv))
		listenErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}

// newCacheStore returns a Redis store when REDIS_URL is set and an in-process store otherwise.
func newCacheStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("using in-memory cache")
		return cache.NewMemoryStore(), func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis cache")
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	return cache.NewRedisStore(client, "vastraa"), closeFn, nil
}

// newMessaging connects to RabbitMQ when RABBITMQ_URL is set. Without a broker events are
// disabled and sign-in codes are written to the log.
func newMessaging(cfg *config.Config, log *zap.Logger) (*rabbitmq.Client, services.EventPublisher, services.OTPSender, error) {
	if cfg.RabbitMQURL == "" {
		log.Info("rabbitmq disabled, sign-in codes are logged")
		return nil, nil, services.LogOTPSender{Log: log.Named("otp")}, nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log.Named("rabbitmq"))
	if err != nil {
		return nil, nil, nil, err
	}
	return client, client, services.EventOTPSender{Events: client}, nil
}
