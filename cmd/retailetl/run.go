package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"retailetl/internal/config"
	"retailetl/internal/datasource"
	"retailetl/internal/logging"
	"retailetl/internal/metrics"
	"retailetl/internal/metrics/datadog"
	"retailetl/internal/metrics/prompush"
	"retailetl/internal/pipeline"
	"retailetl/internal/storage"
)

const defaultPushgatewayURL = "http://localhost:9091"

type runFlags struct {
	dryRun         bool
	metricsBackend string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(root.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				p.Runtime.DryRun = flags.dryRun
			}
			if flags.metricsBackend != "" {
				p.Metrics.Backend = flags.metricsBackend
			}
			if err := lint(p, cmd.ErrOrStderr()); err != nil {
				return err
			}

			log, err := logging.New(p.Log.Mode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			flush, err := setupMetrics(p, log)
			if err != nil {
				log.Warn("metrics disabled", "backend", p.Metrics.Backend, "error", err)
			}
			defer flush()

			return runPipeline(cmd.Context(), p, log)
		},
	}
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "run every stage but skip the warehouse load")
	cmd.Flags().StringVar(&flags.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides metrics.backend)")
	return cmd
}

// setupMetrics installs the configured metrics backend and returns a function
// that flushes it. The returned function is never nil.
func setupMetrics(p config.Pipeline, log *logging.Logger) (func(), error) {
	nop := func() {}
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "", "none":
		return nop, nil
	case "pushgateway":
		url := p.Metrics.PushgatewayURL
		if url == "" {
			url = os.Getenv("PUSHGATEWAY_URL")
		}
		if url == "" {
			url = defaultPushgatewayURL
		}
		b, err = prompush.NewBackend(p.Job, url)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + p.Job},
		})
	default:
		return nop, fmt.Errorf("unknown metrics backend %q", p.Metrics.Backend)
	}
	if err != nil {
		return nop, err
	}
	metrics.SetBackend(b)
	log.Info("metrics enabled", "backend", p.Metrics.Backend)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "error", err)
		}
	}, nil
}

// runPipeline extracts, transforms and, unless dry_run is set, loads. Outputs
// that were produced are loaded even when other branches failed; the returned
// error joins both phases.
func runPipeline(ctx context.Context, p config.Pipeline, log *logging.Logger) error {
	start := time.Now()

	ext, err := datasource.New(p, log)
	if err != nil {
		return err
	}
	raw, err := ext.Extract(ctx)
	metrics.RecordStage(p.Job, "extract", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	out, runErr := pipeline.New(p, log).Run(ctx, raw)

	if p.Runtime.DryRun {
		log.Info("dry run: skipping warehouse load", "outputs", len(out))
		return runErr
	}
	loadErr := load(ctx, p, log, out)
	if err := errors.Join(runErr, loadErr); err != nil {
		return err
	}
	log.Info("run complete", "outputs", len(out), "elapsed", time.Since(start).Truncate(time.Millisecond))
	return nil
}

func load(ctx context.Context, p config.Pipeline, log *logging.Logger, out pipeline.Outputs) error {
	if len(out) == 0 {
		return nil
	}
	dialect, err := storage.DialectFor(p.Warehouse.Kind)
	if err != nil {
		return err
	}
	repo, err := storage.New(ctx, storage.Config{Kind: p.Warehouse.Kind, DSN: p.Warehouse.DSN})
	if err != nil {
		return fmt.Errorf("open warehouse: %w", err)
	}
	defer repo.Close()

	targets := make(map[string]storage.Target, len(config.TargetKeys))
	for _, key := range config.TargetKeys {
		db, schema, table, ok := p.Coordinate(key)
		if !ok {
			continue
		}
		targets[key] = storage.Target{Database: db, Schema: schema, Table: table, PrimaryKey: pipeline.PrimaryKeys[key]}
	}

	l := &storage.Loader{
		Repo:      repo,
		Dialect:   dialect,
		BatchSize: p.Runtime.BatchSize,
		Workers:   p.Runtime.Workers,
		Job:       p.Job,
		Log:       log,
	}
	return l.LoadAll(ctx, targets, out)
}
