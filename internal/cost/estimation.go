package cost

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"
)

// GeminiPricing represents the pricing of one Gemini model
type GeminiPricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
}

// DefaultModel is used for models missing from PricingTable
const DefaultModel = "gemini-2.5-pro"

// PricingTable contains Gemini 2.5 list prices for prompts up to 200k tokens
var PricingTable = map[string]GeminiPricing{
	"gemini-2.5-pro": {
		Model:                 "gemini-2.5-pro",
		InputCostPer1MTokens:  1.25,
		OutputCostPer1MTokens: 10.00,
	},
	"gemini-2.5-flash": {
		Model:                 "gemini-2.5-flash",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
	},
	"gemini-2.5-flash-lite": {
		Model:                 "gemini-2.5-flash-lite",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
	},
}

// Pricing returns the pricing of model. Versioned names such as
// "gemini-2.5-flash-001" use the longest matching family; unknown models
// fall back to DefaultModel with known set to false.
func Pricing(model string) (pricing GeminiPricing, known bool) {
	if p, ok := PricingTable[model]; ok {
		return p, true
	}
	best := ""
	for name := range PricingTable {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return PricingTable[best], true
	}
	return PricingTable[DefaultModel], false
}

// EstimateTokenCount provides a rough estimation of token count for text
// This is a simplified approximation: typically 1 token ≈ 4 characters
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")

	charCount := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(charCount) / 3.5))
}

// CallEstimate is the estimated size and price of one model call
type CallEstimate struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost_usd"`
}

// EstimateCall estimates the cost of a call from its prompt and answer
func EstimateCall(model, prompt, completion string) CallEstimate {
	pricing, _ := Pricing(model)
	input := EstimateTokenCount(prompt)
	output := EstimateTokenCount(completion)
	return CallEstimate{
		Model:        model,
		InputTokens:  input,
		OutputTokens: output,
		Cost: float64(input)*pricing.InputCostPer1MTokens/1000000 +
			float64(output)*pricing.OutputCostPer1MTokens/1000000,
	}
}

// Ledger accumulates call estimates. It is safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	calls int
	total CallEstimate
}

// Add records one call and returns the running totals
func (l *Ledger) Add(e CallEstimate) CallEstimate {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.total.Model = e.Model
	l.total.InputTokens += e.InputTokens
	l.total.OutputTokens += e.OutputTokens
	l.total.Cost += e.Cost
	return l.total
}

// Calls returns the number of recorded calls
func (l *Ledger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// Total returns the running totals
func (l *Ledger) Total() CallEstimate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// String formats the totals for logs
func (e CallEstimate) String() string {
	return fmt.Sprintf("%d input + %d output tokens (~$%.6f)", e.InputTokens, e.OutputTokens, e.Cost)
}
