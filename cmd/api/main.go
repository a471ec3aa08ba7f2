package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/social-feed-api/internal/config"
	"github.com/social-feed-api/internal/infrastructure/delivery"
	"github.com/social-feed-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/social-feed-api/internal/infrastructure/jwt"
	"github.com/social-feed-api/internal/infrastructure/memory"
	"github.com/social-feed-api/internal/infrastructure/postgres"
	"github.com/social-feed-api/internal/infrastructure/smtp"
	"github.com/social-feed-api/internal/infrastructure/sns"
	"github.com/social-feed-api/internal/observability/logging"
	"github.com/social-feed-api/internal/observability/metrics"
	transporthttp "github.com/social-feed-api/internal/transport/http"
	appmiddleware "github.com/social-feed-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	users, sessions, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	gateway, err := newDelivery(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.MetricsEnabled {
		metrics.MustRegister()
	}

	limiter := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer limiter.Stop()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		UserRepo:    users,
		SessionRepo: sessions,
		Delivery:    gateway,
		JWTProvider: jwtProvider,
		Logger:      logger,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver, "delivery", cfg.DeliveryMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (transporthttp.UserRepository, transporthttp.SessionRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
			dynamo.NewSessionRepo(client, cfg.DynamoTables.Sessions), nil
	case config.StorePostgres:
		db, err := postgres.Open(postgres.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.DatabaseLogSQL})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepo(db), postgres.NewSessionRepo(db), nil
	case config.StoreMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return memory.NewUserRepo(), memory.NewSessionRepo(), nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func newDelivery(ctx context.Context, cfg *config.Config, logger *slog.Logger) (transporthttp.DeliveryGateway, error) {
	switch cfg.DeliveryMode {
	case config.DeliveryLog:
		if cfg.IsProduction() {
			return nil, errors.New("DELIVERY_MODE=log is not allowed in production")
		}
		return delivery.NewLogSender(logger), nil
	case config.DeliveryLive:
		sender, err := sns.NewSender(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("sns sender: %w", err)
		}
		return delivery.NewRouter(smtp.NewMailer(cfg), sender), nil
	}
	return nil, fmt.Errorf("unknown DELIVERY_MODE %q", cfg.DeliveryMode)
}
