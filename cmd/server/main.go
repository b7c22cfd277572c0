// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/store"
	"github.com/tomtom215/assesslink/internal/supervisor"
)

type options struct {
	configPath    string
	verifyIndexes bool
	repairIndexes bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("assesslink", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default: $CONFIG_PATH or ./config.yaml)")
	flagSet.BoolVar(&opts.verifyIndexes, "verify-indexes", false, "report secondary index drift and exit")
	flagSet.BoolVar(&opts.repairIndexes, "repair-indexes", false, "rebuild secondary indexes from primary records and exit")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.verifyIndexes && opts.repairIndexes {
		return opts, errors.New("--verify-indexes and --repair-indexes are mutually exclusive")
	}
	return opts, nil
}

func run(opts options) error {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("storage", cfg.Storage.Backend).
		Str("addr", cfg.Server.Addr()).
		Bool("payment_enabled", cfg.Payment.Enabled).
		Msg("Starting Assesslink")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*). Set explicit origins in production.")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}

	db, err := database.Open(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.verifyIndexes || opts.repairIndexes {
		return checkIndexes(ctx, db, opts.repairIndexes, os.Stdout)
	}

	a, err := newApp(cfg, db)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.bootstrap(ctx); err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	a.supervise(tree)

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	stop()

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Assesslink stopped")
	return nil
}

// checkIndexes verifies (or repairs) every collection's secondary indexes
// and prints the per-collection report as JSON. Verification with drift
// returns an error so scripts see a non-zero exit.
func checkIndexes(ctx context.Context, db *database.DB, repair bool, out io.Writer) error {
	var (
		reports map[string]store.IndexReport
		err     error
	)
	if repair {
		reports, err = db.RepairIndexes(ctx)
	} else {
		reports, err = db.VerifyIndexes(ctx)
	}
	if err != nil {
		return fmt.Errorf("index check failed: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return err
	}

	if !repair {
		for name, r := range reports {
			if !r.Clean() {
				return fmt.Errorf("collection %s has index drift", name)
			}
		}
	}
	return nil
}
