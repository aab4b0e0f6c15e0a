package ads

import (
	"context"
	"fmt"

	"giga/internal/core"
	"giga/internal/logger"
)

const (
	// MaxSeedKeywordsPerRequest is the seed limit of generateKeywordIdeas.
	MaxSeedKeywordsPerRequest = 20
	// MaxKeywordsPerRequest caps page sizes and historical metric batches.
	MaxKeywordsPerRequest = 10000
	// LookbackYears is the default history length requested.
	LookbackYears = 2

	keywordPlanNetwork = "GOOGLE_SEARCH"
)

// IdeasRequest describes a keyword idea generation run.
type IdeasRequest struct {
	SeedKeywords []string
	// GeoID and LanguageID are criterion IDs; empty means untargeted.
	GeoID      string
	LanguageID string
	// MaxIdeas bounds the ideas collected per seed batch. Zero means
	// MaxKeywordsPerRequest.
	MaxIdeas      int
	LookbackYears int
}

type keywordSeed struct {
	Keywords []string `json:"keywords"`
}

type generateIdeasBody struct {
	PageSize                 int                      `json:"pageSize,omitempty"`
	KeywordPlanNetwork       string                   `json:"keywordPlanNetwork"`
	GeoTargetConstants       []string                 `json:"geoTargetConstants"`
	Language                 string                   `json:"language,omitempty"`
	HistoricalMetricsOptions historicalMetricsOptions `json:"historicalMetricsOptions"`
	KeywordSeed              keywordSeed              `json:"keywordSeed"`
	PageToken                string                   `json:"pageToken,omitempty"`
}

// GenerateKeywordIdeas expands seed keywords into keyword ideas with their
// monthly search volumes. Seeds are sent in batches of
// MaxSeedKeywordsPerRequest; every page request is preceded by the fixed
// request delay. Results keep batch order, then API order.
func (c *Client) GenerateKeywordIdeas(ctx context.Context, req IdeasRequest) ([]core.KeywordIdea, error) {
	customerID := c.CustomerID()
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	maxIdeas := req.MaxIdeas
	if maxIdeas <= 0 {
		maxIdeas = MaxKeywordsPerRequest
	}
	lookback := req.LookbackYears
	if lookback <= 0 {
		lookback = LookbackYears
	}

	service := fmt.Sprintf("customers/%s:generateKeywordIdeas", customerID)
	batches := chunk(req.SeedKeywords, MaxSeedKeywordsPerRequest)
	var ideas []core.KeywordIdea

	for i, seeds := range batches {
		logger.Info("Getting keyword ideas", "batch", i+1, "batches", len(batches), "seeds", len(seeds))

		body := generateIdeasBody{
			PageSize:                 min(maxIdeas, MaxKeywordsPerRequest),
			KeywordPlanNetwork:       keywordPlanNetwork,
			GeoTargetConstants:       geoTargets(req.GeoID),
			HistoricalMetricsOptions: historicalOptions(c.now(), lookback),
			KeywordSeed:              keywordSeed{Keywords: seeds},
		}
		if req.LanguageID != "" {
			body.Language = "languageConstants/" + req.LanguageID
		}

		var batch []core.KeywordIdea
		for {
			if err := c.wait(ctx); err != nil {
				return nil, err
			}
			var resp keywordsResponse
			if err := c.post(ctx, service, body, &resp); err != nil {
				return nil, fmt.Errorf("keyword ideas batch %d: %w", i+1, err)
			}
			for _, r := range resp.Results {
				batch = append(batch, r.toIdea())
			}
			body.PageToken = resp.NextPageToken
			if body.PageToken == "" || len(batch) >= maxIdeas {
				break
			}
		}
		ideas = append(ideas, batch...)
	}

	logger.Info("Keyword ideas fetched", "ideas", len(ideas))
	return ideas, nil
}

func geoTargets(geoID string) []string {
	if geoID == "" {
		return []string{}
	}
	return []string{"geoTargetConstants/" + geoID}
}
