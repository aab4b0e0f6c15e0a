package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"giga/internal/ads"
	"giga/internal/config"
	"giga/internal/core"
	"giga/internal/llm"
	"giga/internal/logger"
	"giga/internal/reporting"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	appConfig *config.Config
	adsOpts   []ads.Option
	adsClient *ads.Client
	generator llm.Generator
}

// NewBuilder creates a new pipeline builder for the application config
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{appConfig: cfg}
}

// WithAdsClient uses an existing Google Ads client
func (b *Builder) WithAdsClient(client *ads.Client) *Builder {
	b.adsClient = client
	return b
}

// WithAdsOptions adds options for the Google Ads client the builder creates
func (b *Builder) WithAdsOptions(opts ...ads.Option) *Builder {
	b.adsOpts = append(b.adsOpts, opts...)
	return b
}

// WithGenerator sets the model backend
func (b *Builder) WithGenerator(gen llm.Generator) *Builder {
	b.generator = gen
	return b
}

// Build constructs a fully configured Pipeline. Missing Google Ads or
// Gemini settings do not fail the build; operations that need the
// missing backend return the configuration error instead.
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	if b.appConfig == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	pipelineConfig, err := ConfigFrom(b.appConfig)
	if err != nil {
		return nil, err
	}

	var (
		planner  KeywordPlanner
		resolver CriteriaResolver
		reports  ReportEngine
	)
	client, err := b.buildAdsClient(ctx)
	switch {
	case err != nil && b.appConfig.RequireAds() != nil:
		logger.Debug("Google Ads disabled", "reason", err.Error())
		missing := unavailable{err}
		planner, resolver, reports = missing, missing, missing
	case err != nil:
		return nil, err
	default:
		planner, resolver = client, client
		reports = reporting.NewEngine(client,
			reporting.WithMetric(b.appConfig.Reporting.Metric, b.appConfig.Reporting.MetricThreshold),
			reporting.WithLimit(b.appConfig.Reporting.Limit),
		)
	}

	var (
		gen    llm.Generator
		traced *llm.TracedGenerator
	)
	switch {
	case b.generator != nil:
		traced = llm.NewTracedGenerator(b.generator)
		gen = traced
	case b.appConfig.RequireGemini() != nil:
		err := b.appConfig.RequireGemini()
		logger.Debug("Gemini disabled", "reason", err.Error())
		gen = unavailable{err}
	default:
		traced = llm.NewTracedGenerator(llm.NewVertexGenerator())
		gen = traced
	}

	p := NewPipeline(planner, resolver, llm.NewGateway(gen), reports, pipelineConfig)
	p.usage = traced
	return p, nil
}

func (b *Builder) buildAdsClient(ctx context.Context) (*ads.Client, error) {
	if b.adsClient != nil {
		return b.adsClient, nil
	}
	if err := b.appConfig.RequireAds(); err != nil {
		return nil, err
	}
	opts := []ads.Option{
		ads.WithHTTPClient(&http.Client{Timeout: b.appConfig.AdsTimeout()}),
		ads.WithRequestDelay(b.appConfig.AdsRequestDelay()),
	}
	if b.appConfig.Ads.Endpoint != "" {
		opts = append(opts, ads.WithEndpoint(b.appConfig.Ads.Endpoint))
	}
	client, err := ads.NewClient(ctx, b.appConfig, append(opts, b.adsOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Ads client: %w", err)
	}
	return client, nil
}

// unavailable stands in for a backend that is not configured.
type unavailable struct {
	err error
}

func (u unavailable) GenerateKeywordIdeas(ctx context.Context, req ads.IdeasRequest) ([]core.KeywordIdea, error) {
	return nil, u.err
}

func (u unavailable) GenerateKeywordHistoricalMetrics(ctx context.Context, keywords []string, geoID string) ([]core.KeywordIdea, error) {
	return nil, u.err
}

func (u unavailable) GeoID(ctx context.Context, country string) (string, error) {
	return "", u.err
}

func (u unavailable) LanguageID(ctx context.Context, language string) (string, error) {
	return "", u.err
}

func (u unavailable) NewSearchTerms(ctx context.Context, customerID string, recentDays, baselineDays int) ([]string, error) {
	return nil, u.err
}

func (u unavailable) TopPerformingAds(ctx context.Context, customerID string, topN, lookbackDays int, metric string) ([]core.AdExample, error) {
	return nil, u.err
}

func (u unavailable) GenerateContent(ctx context.Context, prompt string, cfg llm.RequestConfig) (string, error) {
	return "", u.err
}
