package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/backend/firebase"
	"github.com/iliyamo/justloook-provider-portal/internal/backend/memory"
	mysqlbackend "github.com/iliyamo/justloook-provider-portal/internal/backend/mysql"
	"github.com/iliyamo/justloook-provider-portal/internal/config"
	"github.com/iliyamo/justloook-provider-portal/internal/database"
	"github.com/iliyamo/justloook-provider-portal/internal/handler"
	"github.com/iliyamo/justloook-provider-portal/internal/logging"
	"github.com/iliyamo/justloook-provider-portal/internal/middleware"
	"github.com/iliyamo/justloook-provider-portal/internal/preview"
	"github.com/iliyamo/justloook-provider-portal/internal/queue"
	"github.com/iliyamo/justloook-provider-portal/internal/repository"
	"github.com/iliyamo/justloook-provider-portal/internal/router"
	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		logger.Warn("SESSION_SECRET not set; using a random key, sessions end on restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Warn("backend close failed", "error", err)
		}
	}()

	pcfg := config.LoadPreviewConfig()
	var (
		previews preview.Cache = preview.NewMemoryCache(pcfg.TTL)
		scripter redis.Scripter
	)
	rdb, err := config.NewRedisClient(ctx)
	switch {
	case errors.Is(err, config.ErrRedisDisabled):
		logger.Info("redis disabled; rate limiting off, previews kept in memory")
	case err != nil:
		logger.Warn("redis unavailable; rate limiting off, previews kept in memory", "error", err)
	default:
		defer func() { _ = rdb.Close() }()
		previews = preview.NewRedisCache(rdb, pcfg.Prefix, pcfg.TTL)
		scripter = rdb
	}

	var events interface {
		PublishScreenRegistered(context.Context, queue.ScreenRegisteredEvent) error
	} = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL, logger)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.AuditLog, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("screen consumer stopped", "error", err)
			}
		}()
	}

	var media backend.ObjectReader
	if r, ok := be.Objects.(backend.ObjectReader); ok {
		media = r
	}

	providers := repository.NewProviderRepo(be.Docs)
	h := handler.New(handler.Deps{
		Auth:          service.NewAuthService(be.Auth, providers, logger),
		Profiles:      service.NewProfileService(providers, logger),
		Screens:       repository.NewScreenRepo(be.Docs),
		Bookings:      repository.NewBookingRepo(be.Docs),
		Objects:       be.Objects,
		Media:         media,
		Previews:      previews,
		Events:        events,
		MapsAPIKey:    cfg.MapsAPIKey,
		SecureCookies: cfg.SecureCookies,
		MaxImageBytes: pcfg.MaxBytes,
		Logger:        logger,
	})
	renderer, err := handler.NewRenderer()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	e := router.New(h, renderer, router.Options{
		Session: middleware.SessionConfig{
			Secret: cfg.SessionSecret,
			TTL:    cfg.SessionTTL,
			Secure: cfg.SecureCookies,
		},
		RateLimit:   config.LoadRateLimitConfig(),
		Redis:       scripter,
		MapsEnabled: cfg.MapsEnabled(),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend, "maps", cfg.MapsEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend.Backend, error) {
	switch cfg.Backend {
	case config.BackendFirebase:
		return firebase.New(ctx, firebase.Options{
			ProjectID:     cfg.FirebaseProjectID,
			APIKey:        cfg.FirebaseAPIKey,
			StorageBucket: cfg.FirebaseStorageBucket,
		})
	case config.BackendMySQL:
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return backend.Backend{}, err
		}
		be, err := mysqlbackend.New(ctx, db, mysqlbackend.Options{
			BcryptCost:   cfg.BcryptCost,
			MediaDir:     cfg.MediaDir,
			MediaBaseURL: cfg.MediaBaseURL,
		}, logger)
		if err != nil {
			_ = db.Close()
			return backend.Backend{}, err
		}
		return be, nil
	default:
		logger.Warn("memory backend: accounts and screens are lost on restart")
		return memory.New(cfg.MediaBaseURL), nil
	}
}

// randomSecret returns a 32 byte hex key for development runs.
func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
