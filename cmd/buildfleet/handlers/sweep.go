package handlers

import (
	"context"

	"github.com/buildfleet/buildfleet/internal/fleet/reconciler"
)

// Sweep runs a single reconciliation pass over every configured cloud.
func Sweep(ctx context.Context, configPath string, debug bool) error {
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

	reconciler.New(reg, reconciler.WithLogger(log)).Run(ctx)
	return nil
}
