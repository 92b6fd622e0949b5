// Package app assembles the numbering service from configuration.
package app

import (
	"context"
	"fmt"

	"stockbook/internal/core/numerator"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/documents"
	"stockbook/internal/infrastructure/config"
	"stockbook/internal/infrastructure/metrics"
	infranumerator "stockbook/internal/infrastructure/numerator"
	"stockbook/pkg/logger"
)

// App holds the wired components shared by the server and the CLI.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Store     *infranumerator.InstrumentedStore
	Allocator *numerator.Allocator
	Numbering *documents.Service
	JWT       *auth.JWTService // nil when authentication is disabled

	backend infranumerator.Store
}

// New opens the configured store and builds the numbering service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	catalog, err := documents.NewCatalog(cfg.Numbering.Series)
	if err != nil {
		return nil, fmt.Errorf("numbering series: %w", err)
	}

	backend, err := infranumerator.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open counter store: %w", err)
	}

	m := metrics.New()
	store := infranumerator.NewInstrumented(backend, m, log)
	allocator := numerator.NewAllocator(store, &numerator.Options{Timeout: cfg.Numbering.Timeout})

	a := &App{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Store:     store,
		Allocator: allocator,
		Numbering: documents.NewService(allocator, catalog),
		backend:   backend,
	}

	if cfg.Auth.JWTSecret != "" {
		jwtCfg := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
		if cfg.Auth.Issuer != "" {
			jwtCfg.Issuer = cfg.Auth.Issuer
		}
		if cfg.Auth.TokenTTL > 0 {
			jwtCfg.AccessTokenTTL = cfg.Auth.TokenTTL
		}
		a.JWT = auth.NewJWTService(jwtCfg)
	} else {
		log.Warn("auth.jwt_secret is empty: API authentication is disabled, tenant is taken from X-Tenant-ID")
	}

	return a, nil
}

// Close releases the counter store.
func (a *App) Close() error {
	return a.backend.Close()
}
