package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-etl/internal/blob"
	"github.com/sells-group/listing-etl/internal/config"
	"github.com/sells-group/listing-etl/internal/enrich"
	"github.com/sells-group/listing-etl/internal/pipeline"
	"github.com/sells-group/listing-etl/internal/resilience"
	"github.com/sells-group/listing-etl/internal/state"
	anthropicpkg "github.com/sells-group/listing-etl/pkg/anthropic"
)

// pipelineEnv holds the initialized store, tracker, and pipeline needed by
// the extract/runs/serve commands.
type pipelineEnv struct {
	Store    blob.Store
	Tracker  state.Tracker
	Pipeline *pipeline.Pipeline
	Variant  config.Variant
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Tracker != nil {
		_ = pe.Tracker.Close()
	}
}

// initStore opens the blob store named by config.
func initStore() (blob.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return blob.NewFSStore(cfg.Store.Root)
}

// initTracker opens the state tracker backend named by config.
func initTracker(ctx context.Context, store blob.Store) (state.Tracker, error) {
	switch cfg.State.Driver {
	case "", "blob":
		return state.NewBlobTracker(store, cfg.Store.Prefix), nil
	case "sqlite":
		return state.NewSQLite(cfg.State.SQLitePath)
	case "postgres":
		return state.NewPostgres(ctx, cfg.State.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown state driver %q", cfg.State.Driver)
	}
}

// initPipeline sets up the store, tracker, and (for enriching variants) the
// Anthropic client, then builds the Pipeline. Callers should defer
// env.Close().
func initPipeline(ctx context.Context, variantName string) (*pipelineEnv, error) {
	store, err := initStore()
	if err != nil {
		return nil, err
	}

	tracker, err := initTracker(ctx, store)
	if err != nil {
		return nil, err
	}

	variants, err := config.LoadVariants(cfg.Extract.VariantsFile)
	if err != nil {
		_ = tracker.Close()
		return nil, err
	}
	if variantName == "" {
		variantName = cfg.Extract.Variant
	}
	variant, err := config.ResolveVariant(variants, variantName)
	if err != nil {
		_ = tracker.Close()
		return nil, err
	}

	var enricher enrich.Enricher
	if variant.Enrich {
		if cfg.Anthropic.Key == "" {
			_ = tracker.Close()
			return nil, eris.Errorf("variant %q enriches but anthropic.key is not set", variant.Name)
		}
		retry := resilience.FromConfig(
			cfg.Retry.MaxAttempts,
			cfg.Retry.InitialBackoffMs,
			cfg.Retry.MaxBackoffMs,
			cfg.Retry.DeadlineSecs,
			cfg.Retry.Multiplier,
		)
		enricher = enrich.NewClaude(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic, retry)
	}

	return &pipelineEnv{
		Store:    store,
		Tracker:  tracker,
		Pipeline: pipeline.New(cfg, store, tracker, enricher, variant),
		Variant:  variant,
	}, nil
}
