package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/extract"
	"github.com/sells-group/lease-cli/internal/pattern"
	"github.com/sells-group/lease-cli/internal/pipeline"
	"github.com/sells-group/lease-cli/internal/reconcile"
	"github.com/sells-group/lease-cli/internal/segment"
	"github.com/sells-group/lease-cli/internal/store"
	anthropicpkg "github.com/sells-group/lease-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized store and pipeline needed by the
// process/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPipeline sets up the store, the extraction strategy, and the pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	var strategy extract.Strategy
	if cfg.Extract.DomainEnabled && cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		strategy = extract.NewAnthropicStrategy(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens), cfg.Anthropic.MaxRetries)
		zap.L().Info("domain extraction enabled", zap.String("model", cfg.Anthropic.Model))
	} else {
		zap.L().Info("domain extraction disabled, running pattern-only")
	}

	p := pipeline.New(
		cfg,
		st,
		segment.New(segment.Config{
			MinSegmentChars: cfg.Segment.MinSegmentChars,
			MergeAdjacent:   cfg.Segment.MergeAdjacent,
			MergePageWindow: cfg.Segment.MergePageWindow,
		}),
		pattern.New(),
		extract.New(strategy, cfg.Extract.RequestsPerSecond),
		reconcile.New(),
	)

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
