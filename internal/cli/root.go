// Package cli implements numctl, the operator tool for document numbering.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"stockbook/internal/app"
	"stockbook/internal/core/tenant"
	"stockbook/internal/infrastructure/config"
	"stockbook/pkg/logger"
)

// options are the global flags.
type options struct {
	configPath string
	driver     string
	dsn        string
	tenantID   string
	jsonOutput bool
	verbose    bool
}

// NewRootCmd builds the numctl command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "numctl",
		Short: "numctl - document numbering operations",
		Long: `numctl allocates and inspects document numbers directly against the
counter store, and migrates numbering from earlier schemes.

Examples:
  numctl next invoice --tenant acme
  numctl counters invoice --tenant acme --json
  numctl import refund --tenant acme --number RF-2024-0193
  numctl migrate --driver postgres --dsn postgres://localhost/stockbook`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./config.yaml if present)")
	pf.StringVar(&opts.driver, "driver", "", "storage driver: postgres, sqlite, redis, memory")
	pf.StringVar(&opts.dsn, "dsn", "", "postgres DSN, sqlite path or redis address for the selected driver")
	pf.StringVarP(&opts.tenantID, "tenant", "t", "", "tenant the counters belong to")
	pf.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(nextCmd(opts))
	rootCmd.AddCommand(countersCmd(opts))
	rootCmd.AddCommand(advanceCmd(opts))
	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))

	return rootCmd
}

// loadConfig reads configuration, applies flag overrides and validates the result.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Read(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.dsn != "" {
		switch cfg.Storage.Driver {
		case config.DriverPostgres:
			cfg.Storage.Postgres.DSN = o.dsn
		case config.DriverSQLite:
			cfg.Storage.SQLite.Path = o.dsn
		case config.DriverRedis:
			cfg.Storage.Redis.Addr = o.dsn
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) logger() *logger.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logger.Default()
	}
	return log
}

// withApp opens the configured store, runs fn and closes the store.
func (o *options) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	log := o.logger()
	defer log.Sync()

	ctx := logger.WithLogger(cmd.Context(), log)
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if o.tenantID != "" {
		ctx = tenant.WithTenant(ctx, &tenant.Tenant{ID: o.tenantID, Source: tenant.SourceStatic})
	}
	return fn(ctx, a)
}

// print writes v as JSON with --json, else the text line.
func (o *options) print(w io.Writer, v any, text string) error {
	if o.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func requireTenant(o *options) error {
	if o.tenantID == "" {
		return fmt.Errorf("--tenant is required")
	}
	return nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
