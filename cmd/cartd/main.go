package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartstore-demo/internal/cartstore"
	"github.com/nikolayk812/cartstore-demo/internal/catalog"
	"github.com/nikolayk812/cartstore-demo/internal/config"
	"github.com/nikolayk812/cartstore-demo/internal/logger"
	"github.com/nikolayk812/cartstore-demo/internal/notify"
	"github.com/nikolayk812/cartstore-demo/internal/port"
	"github.com/nikolayk812/cartstore-demo/internal/repository"
	"github.com/nikolayk812/cartstore-demo/internal/server"
	"github.com/nikolayk812/cartstore-demo/internal/telemetry"
	"github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config.Load: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(os.Stdout, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger.New: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()

	if err != nil {
		log.WithError(err).Fatal("cartd stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	if cfg.Tracing.Endpoint != "" {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
		if err != nil {
			return fmt.Errorf("telemetry.InitTracerProvider: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("tracer provider shutdown failed")
			}
		}()
		log.WithField("endpoint", cfg.Tracing.Endpoint).Info("tracing enabled")
	}

	kv, closeKV, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("openStorage: %w", err)
	}
	defer closeKV()

	if err := kv.Ping(ctx); err != nil {
		return fmt.Errorf("kv.Ping: %w", err)
	}

	unit, err := cfg.CurrencyUnit()
	if err != nil {
		return fmt.Errorf("cfg.CurrencyUnit: %w", err)
	}

	var catalogOpts []catalog.Option
	if cfg.Catalog.Timeout > 0 {
		catalogOpts = append(catalogOpts, catalog.WithTimeout(cfg.Catalog.Timeout))
	}
	catalogClient := catalog.New(cfg.Catalog.BaseURL, catalogOpts...)

	feed := notify.NewRecorder(notify.WithLimit(cfg.Notify.Buffer))
	notifier := notify.Multi(notify.NewLogger(log), feed)

	store, err := cartstore.New(ctx, kv, catalogClient, notifier,
		cartstore.WithKey(cfg.Storage.Key),
		cartstore.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("cartstore.New: %w", err)
	}

	h := server.NewHandler(store, feed, kv, unit, log)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           h.Router(cfg.Tracing.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTP.Addr, "storage": cfg.Storage.Driver}).Info("cartd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	return nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (port.KeyValueStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}

		repo, err := repository.NewPostgres(pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repository.NewPostgres: %w", err)
		}

		return repo, pool.Close, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

		repo, err := repository.NewRedis(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("repository.NewRedis: %w", err)
		}

		return repo, func() { _ = client.Close() }, nil

	default:
		return repository.NewMemory(), func() {}, nil
	}
}
