package pipeline

import (
	"context"

	"giga/internal/ads"
	"giga/internal/core"
	"giga/internal/llm"
)

// KeywordPlanner expands seed keywords into keyword ideas
type KeywordPlanner interface {
	// GenerateKeywordIdeas fetches ideas with their monthly search volumes
	GenerateKeywordIdeas(ctx context.Context, req ads.IdeasRequest) ([]core.KeywordIdea, error)

	// GenerateKeywordHistoricalMetrics looks up search volumes for known keywords
	GenerateKeywordHistoricalMetrics(ctx context.Context, keywords []string, geoID string) ([]core.KeywordIdea, error)
}

// CriteriaResolver turns country and language names into criterion IDs
type CriteriaResolver interface {
	GeoID(ctx context.Context, country string) (string, error)
	LanguageID(ctx context.Context, language string) (string, error)
}

// ModelGateway calls the generative model
type ModelGateway interface {
	// Text returns a plain text answer with code fences removed
	Text(ctx context.Context, prompt string, cfg llm.RequestConfig) (string, error)

	// JSON decodes a schema validated JSON answer into out
	JSON(ctx context.Context, prompt string, cfg llm.RequestConfig, out any) error
}

// ReportEngine reads Google Ads performance reports
type ReportEngine interface {
	// NewSearchTerms returns search terms new in the recent window
	NewSearchTerms(ctx context.Context, customerID string, recentDays, baselineDays int) ([]string, error)

	// TopPerformingAds returns the best responsive search ads with their keywords
	TopPerformingAds(ctx context.Context, customerID string, topN, lookbackDays int, metric string) ([]core.AdExample, error)
}
