// Package pipeline orchestrates one extraction run: discover the run,
// list its source items, and convert each to a validated structured record,
// tracking completed keys so a re-invocation never repeats finished work.
package pipeline

import (
	"context"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/listing-etl/internal/blob"
	"github.com/sells-group/listing-etl/internal/config"
	"github.com/sells-group/listing-etl/internal/enrich"
	"github.com/sells-group/listing-etl/internal/extract"
	"github.com/sells-group/listing-etl/internal/model"
	"github.com/sells-group/listing-etl/internal/resilience"
	"github.com/sells-group/listing-etl/internal/state"
	"github.com/sells-group/listing-etl/internal/validate"
)

// Pipeline converts the raw text items of a run into validated records.
type Pipeline struct {
	cfg      *config.Config
	store    blob.Store
	tracker  state.Tracker
	enricher enrich.Enricher
	variant  config.Variant
	retry    resilience.RetryConfig
}

// New creates a Pipeline with all dependencies. The enricher may be nil when
// the variant does not enrich.
func New(
	cfg *config.Config,
	store blob.Store,
	tracker state.Tracker,
	enricher enrich.Enricher,
	variant config.Variant,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		tracker:  tracker,
		enricher: enricher,
		variant:  variant,
		retry: resilience.FromConfig(
			cfg.Retry.MaxAttempts,
			cfg.Retry.InitialBackoffMs,
			cfg.Retry.MaxBackoffMs,
			cfg.Retry.DeadlineSecs,
			cfg.Retry.Multiplier,
		),
	}
}

// Options selects what a single invocation processes.
type Options struct {
	// RunID names the batch; empty means the newest run under the prefix.
	RunID string
	// MaxItems caps the candidate set; 0 means unlimited.
	MaxItems int
	// Overwrite reprocesses items already in state and rewrites existing
	// destinations.
	Overwrite bool
}

// Run executes one invocation. Per-item failures are counted and logged but
// never abort the run; an error return means the run itself could not start.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*model.RunSummary, error) {
	runID := opts.RunID
	if runID == "" {
		newest, err := NewestRunID(ctx, p.store, p.cfg.Store.Prefix)
		if err != nil {
			return nil, err
		}
		runID = newest
	}

	log := zap.L().With(
		zap.String("run_id", runID),
		zap.String("variant", p.variant.Name),
		zap.String("invocation_id", uuid.NewString()),
	)

	processed, err := p.tracker.Load(ctx, runID)
	if err != nil {
		return nil, err
	}

	candidates, err := listCandidates(ctx, p.store, p.cfg.Store.Prefix, runID)
	if err != nil {
		return nil, err
	}

	if !opts.Overwrite {
		remaining := candidates[:0]
		for _, key := range candidates {
			if _, done := processed[key]; !done {
				remaining = append(remaining, key)
			}
		}
		candidates = remaining
	}
	if opts.MaxItems > 0 && len(candidates) > opts.MaxItems {
		candidates = candidates[:opts.MaxItems]
	}

	log.Info("pipeline: starting run", zap.Int("candidates", len(candidates)))

	summary := &model.RunSummary{
		OK:      true,
		RunID:   runID,
		Variant: p.variant.Name,
	}
	out := newSink(p.variant)
	src := itemSource{runID: runID, scrapedAt: model.RunIDTimestamp(runID)}

	// Items are processed one at a time: volumes are modest, the dominant
	// cost is the enrichment call which is rate-limited anyway, and a serial
	// loop keeps the counter and state semantics trivially correct.
	for _, key := range candidates {
		summary.Processed++
		src.sourceTxt = key

		outcome, err := p.processItem(ctx, log, out, src, key, opts.Overwrite)
		switch {
		case err != nil:
			// The key stays out of state so the next invocation retries it.
			summary.Errors++
			log.Error("pipeline: item failed", zap.String("key", key), zap.Error(err))
		case outcome == itemSkipped:
			summary.Skipped++
			processed[key] = struct{}{}
		default:
			summary.Written++
			processed[key] = struct{}{}
		}

		if ctx.Err() != nil {
			break
		}
	}

	// State persistence is best-effort: a failure here means at worst that
	// finished items are reprocessed next time, and the rewrite is safe.
	if err := p.tracker.Save(ctx, runID, processed); err != nil {
		log.Warn("pipeline: state save failed", zap.Error(err))
	}

	log.Info("pipeline: run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("written", summary.Written),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

type itemOutcome int

const (
	itemWritten itemOutcome = iota
	itemSkipped
)

func (p *Pipeline) processItem(ctx context.Context, log *zap.Logger, out sink, src itemSource, key string, overwrite bool) (itemOutcome, error) {
	raw, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) ([]byte, error) {
		return p.store.Read(ctx, key)
	})
	if err != nil {
		return 0, err
	}
	text := blob.DecodeText(raw)

	fields := extract.Parse(text)

	if p.variant.Enrich && p.enricher != nil {
		enriched, err := p.enricher.Enrich(ctx, enrich.Request{
			Text:   text,
			URL:    fields.StringField("url"),
			PostID: fields.StringField("post_id"),
		})
		if err != nil {
			// Degrade to the deterministic fields alone.
			log.Warn("pipeline: enrichment failed", zap.String("key", key), zap.Error(err))
			enriched = model.FieldMap{}
		}
		fields = enrich.Merge(fields, enriched)
	}

	p.applyFallbacks(fields, text)

	postID := fields.StringField("post_id")
	if postID == "" {
		// Only the filename participates in the key search: the run segment
		// of a full key is itself a digit run and would always match.
		postID = extract.ResolvePostID(path.Base(key), fields.StringField("url"), fields.StringField("body"))
	}
	if postID == "" {
		// Without an identifier there is no destination; retrying will not
		// help, so the item counts as deliberately bypassed.
		log.Warn("pipeline: no resolvable post_id", zap.String("key", key))
		return itemSkipped, nil
	}
	fields["post_id"] = postID

	rec, err := validate.Record(fields)
	if err != nil {
		return 0, err
	}

	dest := out.destKey(p.cfg.Store.Prefix, src.runID, postID)
	if !overwrite {
		exists, err := p.store.Exists(ctx, dest)
		if err != nil {
			return 0, err
		}
		if exists {
			return itemSkipped, nil
		}
	}

	if err := out.write(ctx, p.store, dest, rec, src); err != nil {
		return 0, err
	}
	return itemWritten, nil
}

// applyFallbacks fills price and mileage from the loose-text heuristics when
// neither the line scan nor enrichment produced them.
func (p *Pipeline) applyFallbacks(fields model.FieldMap, text string) {
	if _, ok := fields.IntField("price"); !ok {
		if price := extract.PriceFallback(fields.StringField("title"), fields.StringField("body")); price != nil {
			fields["price"] = *price
		}
	}
	if _, ok := fields.IntField("mileage"); !ok {
		if miles := extract.MileageFallback(text); miles != nil {
			fields["mileage"] = *miles
		}
	}
}
