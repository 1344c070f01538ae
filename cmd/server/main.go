package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/config"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/logger"
	"github.com/barberkas/api/internal/metrics"
	"github.com/barberkas/api/internal/router"
	"github.com/barberkas/api/internal/scheduler"
	"github.com/barberkas/api/internal/ws"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	bizdate.Location = cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracer pgx.QueryTracer
	if cfg.Log.SQL {
		tracer = logger.NewPgxTracer(lg)
	}
	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, tracer)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Int32("max_conns", pool.Config().MaxConns).Msg("connected to database")

	hub := ws.NewHub()
	go hub.Run(ctx)

	m := metrics.New()
	svc := router.NewServices(pool, hub, m)
	r := router.New(cfg, database.New(pool), pool, hub, m, svc)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg.Location(), cfg.Scheduler.ClosingSpec, svc.Closing)
		if err != nil {
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("timezone", cfg.App.Timezone).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown http server")
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("stop scheduler")
		}
	}
	log.Info().Msg("server stopped cleanly")
	return nil
}
