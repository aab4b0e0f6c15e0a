package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"giga/internal/ads"
	"giga/internal/clustering"
	"giga/internal/config"
	"giga/internal/core"
	"giga/internal/growth"
	"giga/internal/llm"
	"giga/internal/logger"
	"giga/internal/prompts"
	"giga/internal/render"

	"github.com/google/uuid"
)

const (
	// MaxSeedKeywords is the number of seed keywords a run accepts.
	MaxSeedKeywords = 20

	topAdsCount        = 5
	topAdsLookbackDays = 30
)

var (
	// ErrNoSeedKeywords is returned when a run has no usable seed keyword.
	ErrNoSeedKeywords = errors.New("at least one seed keyword is required")

	// ErrMissingCustomerID is returned by report operations without an account.
	ErrMissingCustomerID = errors.New("google ads customer ID is required")
)

// Pipeline runs the keyword research and generation workflows
type Pipeline struct {
	planner  KeywordPlanner
	resolver CriteriaResolver
	gateway  ModelGateway
	reports  ReportEngine
	usage    *llm.TracedGenerator

	config *Config
}

// LogUsage logs the model calls made so far with their estimated cost.
// Pipelines without a traced generator log nothing.
func (p *Pipeline) LogUsage() {
	if p.usage == nil || p.usage.Calls() == 0 {
		return
	}
	total := p.usage.Usage()
	logger.Info("Model usage",
		"calls", p.usage.Calls(),
		"input_tokens", total.InputTokens,
		"output_tokens", total.OutputTokens,
		"cost_usd", total.Cost,
	)
}

// Config holds pipeline configuration
type Config struct {
	// Targeting
	Country        string
	Language       string
	OutputLanguage string
	CustomerID     string

	// Idea selection
	MaxIdeas              int
	MinLatestSearchVolume int64
	MinGrowth             float64
	GrowthMetric          growth.Metric

	// Prompts
	ClusterPromptTemplate string
	TrendsPromptTemplate  string
	BrandName             string

	// Search term reports
	RecentDays   int
	BaselineDays int

	// Model is the base request config for every model call.
	Model llm.RequestConfig
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		OutputLanguage:        prompts.DefaultLanguage,
		MaxIdeas:              ads.MaxKeywordsPerRequest,
		MinLatestSearchVolume: 100,
		MinGrowth:             0.1,
		GrowthMetric:          growth.YoY,
		ClusterPromptTemplate: prompts.DefaultClusterTemplate,
		TrendsPromptTemplate:  prompts.DefaultTrendsTemplate,
		RecentDays:            7,
		BaselineDays:          30,
		Model:                 llm.RequestConfig{Temperature: 0.7, TopP: 0.9},
	}
}

// ConfigFrom maps application configuration onto a pipeline Config.
func ConfigFrom(cfg *config.Config) (*Config, error) {
	metric, err := growth.ParseMetric(cfg.Pipeline.GrowthMetric)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	c.Country = cfg.Pipeline.Country
	c.Language = cfg.Pipeline.Language
	if cfg.Pipeline.OutputLanguage != "" {
		c.OutputLanguage = cfg.Pipeline.OutputLanguage
	}
	c.CustomerID = cfg.CustomerID()
	c.MaxIdeas = cfg.Pipeline.MaxIdeas
	c.MinLatestSearchVolume = cfg.Pipeline.MinLatestSearchVolume
	c.MinGrowth = cfg.Pipeline.MinGrowth
	c.GrowthMetric = metric
	if cfg.Pipeline.ClusterPromptTemplate != "" {
		c.ClusterPromptTemplate = cfg.Pipeline.ClusterPromptTemplate
	}
	if cfg.Pipeline.TrendsPromptTemplate != "" {
		c.TrendsPromptTemplate = cfg.Pipeline.TrendsPromptTemplate
	}
	c.BrandName = cfg.Pipeline.BrandName
	c.RecentDays = cfg.Reporting.RecentDays
	c.BaselineDays = cfg.Reporting.BaselineDays
	c.Model = llm.FromConfig(cfg.Gemini)
	return c, nil
}

// NewPipeline creates a new pipeline with all dependencies
func NewPipeline(planner KeywordPlanner, resolver CriteriaResolver, gateway ModelGateway, reports ReportEngine, config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{
		planner:  planner,
		resolver: resolver,
		gateway:  gateway,
		reports:  reports,
		config:   config,
	}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *Config {
	return p.config
}

// ParseSeedKeywords splits a comma-separated list into trimmed keywords. At
// most MaxSeedKeywords are kept; the rest is returned as overflow.
func ParseSeedKeywords(input string) (seeds, overflow []string) {
	for _, part := range strings.Split(input, ",") {
		if keyword := strings.TrimSpace(part); keyword != "" {
			seeds = append(seeds, keyword)
		}
	}
	if len(seeds) > MaxSeedKeywords {
		return seeds[:MaxSeedKeywords], seeds[MaxSeedKeywords:]
	}
	return seeds, nil
}

// FilterIdeas keeps ideas whose latest monthly search volume is above
// minLatest.
func FilterIdeas(ideas []core.KeywordIdea, minLatest int64) []core.KeywordIdea {
	out := make([]core.KeywordIdea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.LatestSearches() > minLatest {
			out = append(out, idea)
		}
	}
	return out
}

// IdeasOptions configures an idea generation run. Empty fields use the
// pipeline configuration.
type IdeasOptions struct {
	Seeds    []string
	Country  string
	Language string
	MaxIdeas int
}

// IdeasResult is the output of an idea generation run
type IdeasResult struct {
	RunID    string             `json:"run_id"`
	Seeds    []string           `json:"seeds"`
	Ideas    []core.KeywordIdea `json:"ideas"`
	Fetched  int                `json:"fetched"`
	Duration time.Duration      `json:"duration"`
}

// Ideas fetches keyword ideas for the seeds and drops low volume ones.
func (p *Pipeline) Ideas(ctx context.Context, opts IdeasOptions) (*IdeasResult, error) {
	start := time.Now()
	seeds := nonEmpty(opts.Seeds)
	if len(seeds) == 0 {
		return nil, ErrNoSeedKeywords
	}
	if len(seeds) > MaxSeedKeywords {
		logger.Warn("Ignoring overflow seed keywords", "overflow", strings.Join(seeds[MaxSeedKeywords:], ", "))
		seeds = seeds[:MaxSeedKeywords]
	}

	country := firstNonEmpty(opts.Country, p.config.Country)
	geoID, err := p.resolver.GeoID(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve country %q: %w", country, err)
	}
	language := firstNonEmpty(opts.Language, p.config.Language)
	languageID, err := p.resolver.LanguageID(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve language %q: %w", language, err)
	}

	maxIdeas := opts.MaxIdeas
	if maxIdeas <= 0 {
		maxIdeas = p.config.MaxIdeas
	}
	ideas, err := p.planner.GenerateKeywordIdeas(ctx, ads.IdeasRequest{
		SeedKeywords: seeds,
		GeoID:        geoID,
		LanguageID:   languageID,
		MaxIdeas:     maxIdeas,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate keyword ideas: %w", err)
	}

	filtered := FilterIdeas(ideas, p.config.MinLatestSearchVolume)
	logger.Info("Keyword ideas ready", "fetched", len(ideas), "kept", len(filtered))
	return &IdeasResult{
		RunID:    uuid.NewString(),
		Seeds:    seeds,
		Ideas:    filtered,
		Fetched:  len(ideas),
		Duration: time.Since(start),
	}, nil
}

// InsightsOptions configures the trend insights step.
type InsightsOptions struct {
	Seeds    []string
	Ideas    []core.KeywordIdea
	Metric   growth.Metric
	Language string
}

// InsightsResult holds ranked ideas and the generated HTML report
type InsightsResult struct {
	RunID  string            `json:"run_id"`
	Metric growth.Metric     `json:"metric"`
	Ranked []core.IdeaGrowth `json:"ranked"`
	HTML   string            `json:"html"`
}

// Insights ranks ideas by growth and asks the model for a trend report.
func (p *Pipeline) Insights(ctx context.Context, opts InsightsOptions) (*InsightsResult, error) {
	metric := opts.Metric
	if metric == "" {
		metric = p.config.GrowthMetric
	}
	ranked := growth.Rank(opts.Ideas, metric, p.config.MinGrowth)
	logger.Info("Generating insights", "ideas", len(opts.Ideas), "growing", len(ranked), "metric", string(metric))

	prompt := prompts.Insights(ranked, opts.Seeds, metric.Label(), firstNonEmpty(opts.Language, p.config.OutputLanguage))
	html, err := p.gateway.Text(ctx, prompt, p.config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}
	checkReport("Insights", html)
	return &InsightsResult{RunID: uuid.NewString(), Metric: metric, Ranked: ranked, HTML: html}, nil
}

// Clusters groups ideas into topics with the model and reconciles the
// proposal against the ideas. Ideas without monthly search volumes get them
// from the historical metrics service first. An empty template uses the
// configured one.
func (p *Pipeline) Clusters(ctx context.Context, ideas []core.KeywordIdea, template string) (*clustering.Result, error) {
	ideas, err := p.fillSearchVolumes(ctx, ideas)
	if err != nil {
		return nil, err
	}
	universe := clustering.Universe(ideas)
	keywords := make([]string, 0, len(universe))
	for k := range universe {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	logger.Info("Clustering ideas", "keywords", len(keywords))

	prompt := prompts.Clustering(firstNonEmpty(template, p.config.ClusterPromptTemplate), keywords)
	var proposals []core.ClusterProposal
	if err := p.gateway.JSON(ctx, prompt, p.config.Model.WithJSON(ClusterSchema), &proposals); err != nil {
		return nil, fmt.Errorf("failed to cluster ideas: %w", err)
	}

	result := clustering.Reconcile(proposals, universe)
	return &result, nil
}

// KeywordIdeas turns bare keywords into ideas without search volumes.
func KeywordIdeas(keywords []string) []core.KeywordIdea {
	keywords = nonEmpty(keywords)
	ideas := make([]core.KeywordIdea, 0, len(keywords))
	for _, k := range keywords {
		ideas = append(ideas, core.KeywordIdea{Text: k})
	}
	return ideas
}

// fillSearchVolumes looks up histories for ideas that carry none. Keywords
// the service does not know keep an empty history.
func (p *Pipeline) fillSearchVolumes(ctx context.Context, ideas []core.KeywordIdea) ([]core.KeywordIdea, error) {
	var missing []string
	for _, idea := range ideas {
		if len(idea.MonthlySearchVolumes) == 0 {
			missing = append(missing, idea.Text)
		}
	}
	if len(missing) == 0 {
		return ideas, nil
	}

	geoID, err := p.resolver.GeoID(ctx, p.config.Country)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve country %q: %w", p.config.Country, err)
	}
	logger.Info("Looking up search volumes", "keywords", len(missing))
	metrics, err := p.planner.GenerateKeywordHistoricalMetrics(ctx, missing, geoID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up search volumes: %w", err)
	}

	found := make(map[string][]core.MonthlyVolume, len(metrics))
	for _, m := range metrics {
		found[core.FoldKey(m.Text)] = m.MonthlySearchVolumes
	}
	out := make([]core.KeywordIdea, len(ideas))
	for i, idea := range ideas {
		if len(idea.MonthlySearchVolumes) == 0 {
			idea.MonthlySearchVolumes = found[core.FoldKey(idea.Text)]
		}
		out[i] = idea
	}
	return out, nil
}

// CampaignOptions configures campaign generation.
type CampaignOptions struct {
	Insights   string
	Language   string
	BrandName  string
	AdExamples string
	StyleGuide string
}

// Campaigns turns an insights report into ready-to-use ad campaigns as HTML.
func (p *Pipeline) Campaigns(ctx context.Context, opts CampaignOptions) (string, error) {
	prompt := prompts.Campaigns(prompts.CampaignInput{
		BrandName:  firstNonEmpty(opts.BrandName, p.config.BrandName),
		AdExamples: opts.AdExamples,
		StyleGuide: opts.StyleGuide,
		Language:   firstNonEmpty(opts.Language, p.config.OutputLanguage),
		Insights:   opts.Insights,
	})
	html, err := p.gateway.Text(ctx, prompt, p.config.Model)
	if err != nil {
		return "", fmt.Errorf("failed to generate campaigns: %w", err)
	}
	checkReport("Campaigns", html)
	return html, nil
}

// checkReport logs the sections of an HTML report, or warns when the
// answer is not HTML.
func checkReport(name, html string) {
	if err := render.Validate(html); err != nil {
		logger.Warn(name+" response is not HTML", "error", err.Error())
		return
	}
	logger.Debug(name+" report ready", "sections", strings.Join(render.Headings(html), " | "))
}

// Trends asks the grounded model for trending keywords around seeds.
func (p *Pipeline) Trends(ctx context.Context, seeds []string, template string) ([]string, error) {
	seeds = nonEmpty(seeds)
	if len(seeds) == 0 {
		return nil, ErrNoSeedKeywords
	}
	prompt := prompts.TrendKeywords(firstNonEmpty(template, p.config.TrendsPromptTemplate), seeds)
	var keywords []string
	cfg := p.config.Model.WithJSON(StringListSchema).WithGrounding()
	if err := p.gateway.JSON(ctx, prompt, cfg, &keywords); err != nil {
		return nil, fmt.Errorf("failed to generate trend keywords: %w", err)
	}
	return keywords, nil
}

// NewTermsOptions configures the new search terms workflow.
type NewTermsOptions struct {
	CustomerID   string
	RecentDays   int
	BaselineDays *int
	Language     string
}

// NewTermsResult holds new search terms and the keywords derived from them
type NewTermsResult struct {
	RunID    string   `json:"run_id"`
	Terms    []string `json:"terms"`
	Keywords []string `json:"keywords"`
}

// NewSearchTermKeywords finds search terms that are new in the recent window
// and asks the model for broad match keywords covering them.
func (p *Pipeline) NewSearchTermKeywords(ctx context.Context, opts NewTermsOptions) (*NewTermsResult, error) {
	customerID := firstNonEmpty(config.NormalizeCustomerID(opts.CustomerID), p.config.CustomerID)
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	recentDays := opts.RecentDays
	if recentDays <= 0 {
		recentDays = p.config.RecentDays
	}
	baselineDays := p.config.BaselineDays
	if opts.BaselineDays != nil {
		baselineDays = *opts.BaselineDays
	}

	terms, err := p.reports.NewSearchTerms(ctx, customerID, recentDays, baselineDays)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch new search terms: %w", err)
	}
	result := &NewTermsResult{RunID: uuid.NewString(), Terms: terms, Keywords: []string{}}
	if len(terms) == 0 {
		logger.Info("No new search terms found", "recent_days", recentDays, "baseline_days", baselineDays)
		return result, nil
	}

	prompt := prompts.NewSearchTermKeywords(terms, firstNonEmpty(opts.Language, p.config.OutputLanguage))
	if err := p.gateway.JSON(ctx, prompt, p.config.Model.WithJSON(StringListSchema), &result.Keywords); err != nil {
		return nil, fmt.Errorf("failed to summarize new search terms: %w", err)
	}
	return result, nil
}

// SuggestAdsOptions configures ad suggestion.
type SuggestAdsOptions struct {
	CustomerID   string
	Keywords     []string
	TopN         int
	LookbackDays int
	Metric       string
}

// SuggestAds writes new responsive search ads for keywords in the style of
// the account's best performing ads.
func (p *Pipeline) SuggestAds(ctx context.Context, opts SuggestAdsOptions) ([]core.AdCopy, error) {
	keywords := nonEmpty(opts.Keywords)
	if len(keywords) == 0 {
		return nil, ErrNoSeedKeywords
	}
	customerID := firstNonEmpty(config.NormalizeCustomerID(opts.CustomerID), p.config.CustomerID)
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = topAdsCount
	}
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = topAdsLookbackDays
	}

	examples, err := p.reports.TopPerformingAds(ctx, customerID, topN, lookback, opts.Metric)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top performing ads: %w", err)
	}
	logger.Info("Writing ad suggestions", "examples", len(examples), "keywords", len(keywords))

	prompt := prompts.AdSuggestion(prompts.AdExamples(examples), keywords)
	var suggestions []core.AdCopy
	if err := p.gateway.JSON(ctx, prompt, p.config.Model.WithJSON(AdCopySchema), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to suggest ads: %w", err)
	}
	return suggestions, nil
}

// TopAdExamples renders the account's best ads as prompt examples for
// campaign generation.
func (p *Pipeline) TopAdExamples(ctx context.Context, customerID string) (string, error) {
	customerID = firstNonEmpty(config.NormalizeCustomerID(customerID), p.config.CustomerID)
	if customerID == "" {
		return "", ErrMissingCustomerID
	}
	examples, err := p.reports.TopPerformingAds(ctx, customerID, topAdsCount, topAdsLookbackDays, "")
	if err != nil {
		return "", fmt.Errorf("failed to fetch top performing ads: %w", err)
	}
	return prompts.AdExamples(examples), nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
