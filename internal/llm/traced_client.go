package llm

import (
	"context"
	"time"

	"giga/internal/cost"
	"giga/internal/logger"
)

// TracedGenerator wraps a Generator and logs every model call with its
// latency and estimated token usage
type TracedGenerator struct {
	gen    Generator
	ledger *cost.Ledger
	now    func() time.Time
}

// NewTracedGenerator creates a new traced generator
func NewTracedGenerator(gen Generator) *TracedGenerator {
	return &TracedGenerator{gen: gen, ledger: &cost.Ledger{}, now: time.Now}
}

// Usage returns the estimated usage of all calls made so far
func (tg *TracedGenerator) Usage() cost.CallEstimate {
	return tg.ledger.Total()
}

// Calls returns the number of model calls made so far
func (tg *TracedGenerator) Calls() int {
	return tg.ledger.Calls()
}

// GenerateContent generates content with tracing
func (tg *TracedGenerator) GenerateContent(ctx context.Context, prompt string, cfg RequestConfig) (string, error) {
	start := tg.now()
	result, err := tg.gen.GenerateContent(ctx, prompt, cfg)
	latencyMs := tg.now().Sub(start).Milliseconds()

	cfg = cfg.withDefaults()
	if err != nil {
		logger.Error("Model call failed", err,
			"model", cfg.ModelID,
			"response_type", cfg.ResponseType.String(),
			"grounding", cfg.EnableGrounding,
			"latency_ms", latencyMs,
		)
		return result, err
	}

	call := cost.EstimateCall(cfg.ModelID, prompt, result)
	total := tg.ledger.Add(call)
	logger.Debug("Model call",
		"model", cfg.ModelID,
		"response_type", cfg.ResponseType.String(),
		"grounding", cfg.EnableGrounding,
		"latency_ms", latencyMs,
		"input_tokens", call.InputTokens,
		"output_tokens", call.OutputTokens,
		"cost_usd", call.Cost,
		"total_cost_usd", total.Cost,
	)
	return result, nil
}
