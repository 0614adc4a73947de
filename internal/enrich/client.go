// Package enrich asks the generative extraction service to fill fields the
// deterministic pass could not resolve. Failures here never abort an item:
// the orchestrator degrades to the deterministic fields alone.
package enrich

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/listing-etl/internal/config"
	"github.com/sells-group/listing-etl/internal/model"
	"github.com/sells-group/listing-etl/internal/resilience"
	"github.com/sells-group/listing-etl/pkg/anthropic"
)

// Request carries the raw text and the identifiers already resolved
// deterministically.
type Request struct {
	Text   string
	URL    string
	PostID string
}

// Enricher produces a model-derived field mapping for one listing.
type Enricher interface {
	Enrich(ctx context.Context, req Request) (model.FieldMap, error)
}

// Claude implements Enricher against the Anthropic API, with a rate limit,
// transient-error retry, and a circuit breaker so a down service stops being
// asked for the rest of the backoff window.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	breaker   *resilience.CircuitBreaker
}

// NewClaude builds the enrichment client from config.
func NewClaude(client anthropic.Client, cfg config.AnthropicConfig, retry resilience.RetryConfig) *Claude {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1.0
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Claude{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		retry:     retry,
		breaker:   resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
}

// Enrich sends one listing through the structured-extraction prompt and
// parses the JSON reply into a field mapping.
func (c *Claude) Enrich(ctx context.Context, req Request) (model.FieldMap, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "enrich: rate limit wait")
	}

	resp, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return c.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     c.model,
				MaxTokens: c.maxTokens,
				System:    systemPrompt,
				Messages: []anthropic.Message{
					{Role: "user", Content: buildUserPrompt(req)},
				},
			})
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: create message")
	}

	resp.Usage.LogCost(c.model, "enrich")

	fm, err := ParseResponse(resp.Text())
	if err != nil {
		zap.L().Warn("enrich: unparseable response",
			zap.String("post_id", req.PostID),
			zap.Error(err),
		)
		return nil, err
	}
	return fm, nil
}

// ParseResponse strips markdown fences and decodes the model's JSON object
// into a field mapping. Nulls are dropped so the merge only sees fields the
// model actually resolved.
func ParseResponse(text string) (model.FieldMap, error) {
	cleaned := cleanJSON(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "enrich: parse response JSON")
	}

	fm := make(model.FieldMap, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		fm[k] = v
	}

	// attrs_json must be an object; a string here is the drift this
	// pipeline exists to stop.
	if attrs, present := fm["attrs_json"]; present {
		if _, ok := attrs.(map[string]any); !ok {
			delete(fm, "attrs_json")
		}
	}

	return fm, nil
}
