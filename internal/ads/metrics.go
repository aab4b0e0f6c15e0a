package ads

import (
	"context"
	"fmt"

	"giga/internal/core"
	"giga/internal/logger"
)

type historicalMetricsBody struct {
	Keywords                 []string                 `json:"keywords"`
	GeoTargetConstants       []string                 `json:"geoTargetConstants,omitempty"`
	KeywordPlanNetwork       string                   `json:"keywordPlanNetwork"`
	HistoricalMetricsOptions historicalMetricsOptions `json:"historicalMetricsOptions"`
}

// GenerateKeywordHistoricalMetrics looks up search volume histories for
// known keywords, in batches of MaxKeywordsPerRequest with the fixed delay
// before each request.
func (c *Client) GenerateKeywordHistoricalMetrics(ctx context.Context, keywords []string, geoID string) ([]core.KeywordIdea, error) {
	customerID := c.CustomerID()
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}

	service := fmt.Sprintf("customers/%s:generateKeywordHistoricalMetrics", customerID)
	batches := chunk(keywords, MaxKeywordsPerRequest)
	var out []core.KeywordIdea

	for i, batch := range batches {
		logger.Info("Getting historical metrics", "batch", i+1, "batches", len(batches))
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		body := historicalMetricsBody{
			Keywords:                 batch,
			KeywordPlanNetwork:       keywordPlanNetwork,
			HistoricalMetricsOptions: historicalOptions(c.now(), LookbackYears),
		}
		if geoID != "" {
			body.GeoTargetConstants = geoTargets(geoID)
		}
		var resp keywordsResponse
		if err := c.post(ctx, service, body, &resp); err != nil {
			return nil, fmt.Errorf("historical metrics batch %d: %w", i+1, err)
		}
		for _, r := range resp.Results {
			out = append(out, r.toIdea())
		}
	}
	return out, nil
}
