package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"wanderfolio/app/internal/admin"
	"wanderfolio/app/internal/config"
	"wanderfolio/app/internal/content"
	appdb "wanderfolio/app/internal/db"
	apphttp "wanderfolio/app/internal/http"
	"wanderfolio/app/internal/llm"
	applog "wanderfolio/app/internal/log"
	"wanderfolio/app/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	dbConn, err := appdb.Open(appdb.Options{Path: cfg.DBPath})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := content.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running migrations")
	}

	repository, err := content.NewRepository(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building content repository")
	}

	uploader, err := storage.NewS3Uploader(ctx, storage.Options{
		Bucket:        cfg.StorageBucket,
		Region:        cfg.StorageRegion,
		Endpoint:      cfg.StorageEndpoint,
		PublicBaseURL: cfg.StoragePublicURL,
		Logger:        logger,
	})
	if err != nil {
		return eris.Wrap(err, "initialising object storage")
	}

	// Categorization is an optional side effect: without an API key the admin
	// gateway still serves CRUD and uploads, it just skips the suggestions.
	var categorizer admin.Categorizer
	if cfg.LLMAPIKey != "" {
		client, err := llm.NewClient(llm.ClientOptions{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMEndpoint,
			Logger:  logger,
		})
		if err != nil {
			return eris.Wrap(err, "creating llm client")
		}

		skillStore, err := content.NewSkillStore(dbConn, logger)
		if err != nil {
			return eris.Wrap(err, "building skill store")
		}

		categorizer, err = llm.NewCategorizer(llm.CategorizerOptions{
			Client: client,
			Skills: skillStore,
			Model:  cfg.LLMModel,
		})
		if err != nil {
			return eris.Wrap(err, "initialising categorizer")
		}
	} else {
		logger.Info("LLM_API_KEY not set, skill categorization disabled")
	}

	gateway, err := admin.NewGateway(admin.Options{
		Passcode:          cfg.AdminPasscode,
		Repository:        repository,
		Uploader:          uploader,
		Categorizer:       categorizer,
		CategorizeTimeout: cfg.CategorizeTimeout,
		Logger:            logger,
		SentryHub:         sentryHub,
	})
	if err != nil {
		return eris.Wrap(err, "creating admin gateway")
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		Gateway:    gateway,
		Repository: repository,
		Database:   dbConn,
		Logger:     logger,
		SentryHub:  sentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			ClientTTL:         cfg.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr": httpServer.Addr,
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	// In-flight categorization tasks finish before the process exits.
	gateway.Wait()

	logger.Info("http server shut down cleanly")
	return nil
}
