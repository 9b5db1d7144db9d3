package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"FinDash/internal/service/live"
	"FinDash/internal/service/ratelimit"
	"FinDash/internal/usecase"
	"FinDash/pkg/config"
	xhttp "FinDash/pkg/http"
	pkgkafka "FinDash/pkg/kafka"
	applogger "FinDash/pkg/logger"
)

const limiterPruneInterval = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	l        *applogger.Logger
	http     *xhttp.Server
	hub      *live.Hub
	consumer *pkgkafka.Consumer
	changes  pkgkafka.MessageHandler
	seed     *usecase.SeedUseCase
	limiter  *ratelimit.Limiter
	seedPath string
}

// New creates a new App instance with all dependencies. consumer and
// limiter may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	hub *live.Hub,
	consumer *pkgkafka.Consumer,
	changes pkgkafka.MessageHandler,
	seed *usecase.SeedUseCase,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		http:     srv,
		hub:      hub,
		consumer: consumer,
		changes:  changes,
		seed:     seed,
		limiter:  limiter,
	}
}

// SeedOnStart makes Run replace the dashboard collections from the JSON
// file at path once the services are up.
func (a *App) SeedOnStart(path string) { a.seedPath = path }

// Seed loads the seed file at path into the store.
func (a *App) Seed(ctx context.Context, path string) error {
	data, err := usecase.LoadSeedFile(path)
	if err != nil {
		return err
	}
	return a.seed.Seed(ctx, data)
}

// Run starts the application and blocks until ctx is cancelled or the
// process is interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.hub.Run(ctx)

	if a.consumer != nil && a.changes != nil {
		if err := a.consumer.RegisterHandler(a.changes); err != nil {
			return fmt.Errorf("register handler: %w", err)
		}
		if err := a.consumer.Start(ctx); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.changes.Topic()))
	}

	if err := a.http.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.String("addr", a.http.Addr()))

	if a.seedPath != "" {
		if err := a.Seed(ctx, a.seedPath); err != nil {
			a.l.Error("seed failed", applogger.String("path", a.seedPath), applogger.Error(err))
		}
	}

	if a.limiter != nil {
		go a.pruneLimiter(ctx)
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := a.limiter.Prune(); n > 0 {
				a.l.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// shutdown gracefully stops all services. Clients opened by DI are closed
// by its cleanup function.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.http.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.l.RemoveCollector()

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

