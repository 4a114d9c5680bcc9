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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jwg-resto/pos-api/internal/audit"
	"github.com/jwg-resto/pos-api/internal/config"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/logging"
	"github.com/jwg-resto/pos-api/internal/router"
	"github.com/sirupsen/logrus"
)

const (
	connectAttempts = 5
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	defer pool.Close()

	sink, err := buildSink(cfg, pool, logger)
	if err != nil {
		logger.WithError(err).Fatal("audit sink")
	}
	rec := audit.NewRecorder(sink, logger)
	defer rec.Close() //nolint:errcheck

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, pool, rec, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}

// connect opens the pool and pings it, retrying while the database starts.
func connect(ctx context.Context, url string, logger logrus.FieldLogger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			logger.Info("connected to database")
			return pool, nil
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("ping after %d attempts: %w", attempt, err)
		}
		logger.WithError(err).WithField("attempt", attempt).Warn("database not ready, retrying")

		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
}

func buildSink(cfg *config.Config, pool *pgxpool.Pool, logger logrus.FieldLogger) (audit.Sink, error) {
	switch cfg.AuditSink {
	case config.AuditSinkPostgres:
		return audit.NewPostgresSink(database.New(pool)), nil
	case config.AuditSinkAMQP:
		return audit.DialAMQPSink(cfg.AMQPURL, cfg.AuditExchange)
	case config.AuditSinkKafka:
		return audit.DialKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	return audit.NewLogSink(logger), nil
}
