// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/buildfleet/buildfleet/internal/config"
	"github.com/buildfleet/buildfleet/internal/fleet/reconciler"
	"github.com/buildfleet/buildfleet/internal/fleet/tracker"
	"github.com/buildfleet/buildfleet/internal/registry"
)

const shutdownTimeout = 10 * time.Second

// Factory function variables - can be replaced in tests for dependency injection.
var (
	loadConfig  = config.LoadFile
	newRegistry = registry.FromConfig
)

// Serve runs the fleet manager daemon: an orphan sweep ticker, one
// operation poll loop per cloud, and the Prometheus endpoint. It returns
// after SIGINT/SIGTERM or context cancellation.
func Serve(ctx context.Context, configPath string, debug bool) error {
	log, err := newLogger(debug)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, mc := range reg.ManagedClouds() {
		tr := tracker.New(mc.Client(),
			tracker.WithLogger(log.WithName("tracker").WithValues("cloud", mc.Name())),
			tracker.WithMaxAge(cfg.OperationMaxAge.Std()),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Start(ctx, cfg.OperationPollInterval.Std())
		}()
	}

	rec := reconciler.New(reg, reconciler.WithLogger(log.WithName("reconciler")))
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Sweep once on startup so a restart doesn't wait a full interval
		// to pick up orphans.
		rec.Run(ctx)
		rec.Start(ctx, cfg.SweepInterval.Std())
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	log.Info("daemon started",
		"clouds", len(reg.ManagedClouds()),
		"sweepInterval", cfg.SweepInterval.Std().String(),
		"metricsAddress", cfg.MetricsAddress)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		log.Error(runErr, "metrics server failed")
		cancel()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
	wg.Wait()

	log.Info("daemon stopped")
	return runErr
}
