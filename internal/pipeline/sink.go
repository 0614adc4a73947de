package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-etl/internal/blob"
	"github.com/sells-group/listing-etl/internal/config"
	"github.com/sells-group/listing-etl/internal/model"
)

// sink writes one validated record to its destination key and reports the
// key so the caller can check existence before writing.
type sink interface {
	destKey(prefix, runID, postID string) string
	write(ctx context.Context, store blob.Store, key string, rec *model.ListingRecord, src itemSource) error
}

// itemSource carries provenance for sinks that record it.
type itemSource struct {
	runID     string
	sourceTxt string
	scrapedAt time.Time
}

// newSink maps a variant profile to its output shape.
func newSink(v config.Variant) sink {
	if v.Sink == "jsonl" {
		return jsonlSink{subdir: v.OutputSubdir, provenance: v.Provenance}
	}
	return jsonSink{subdir: v.OutputSubdir}
}

// jsonSink writes one indented JSON document per record.
type jsonSink struct {
	subdir string
}

func (s jsonSink) destKey(prefix, runID, postID string) string {
	return prefix + "/" + runID + "/" + s.subdir + "/" + postID + ".json"
}

func (s jsonSink) write(ctx context.Context, store blob.Store, key string, rec *model.ListingRecord, _ itemSource) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return eris.Wrap(err, "sink: marshal record")
	}
	if err := store.Write(ctx, key, data, "application/json"); err != nil {
		return eris.Wrapf(err, "sink: write %s", key)
	}
	return nil
}

// jsonlSink writes exactly one JSON object on a single newline-terminated
// line, with provenance fields for downstream training jobs.
type jsonlSink struct {
	subdir     string
	provenance bool
}

func (s jsonlSink) destKey(prefix, runID, postID string) string {
	return prefix + "/" + runID + "/" + s.subdir + "/" + postID + ".jsonl"
}

func (s jsonlSink) write(ctx context.Context, store blob.Store, key string, rec *model.ListingRecord, src itemSource) error {
	var payload any = rec
	if s.provenance {
		payload = &model.LineRecord{
			ListingRecord: *rec,
			RunID:         src.runID,
			SourceTxt:     src.sourceTxt,
			ScrapedAt:     src.scrapedAt.Format(time.RFC3339),
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "sink: marshal record")
	}
	data = append(data, '\n')
	if err := store.Write(ctx, key, data, "application/x-ndjson"); err != nil {
		return eris.Wrapf(err, "sink: write %s", key)
	}
	return nil
}
