package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"giga/internal/ads"
	"giga/internal/core"
	"giga/internal/growth"
	"giga/internal/llm"
	"giga/internal/logger"
	"giga/internal/prompts"
)

type fakePlanner struct {
	ideas []core.KeywordIdea
	req   ads.IdeasRequest

	metrics     []core.KeywordIdea
	lookedUp    []string
	lookupGeoID string
	lookupCalls int
}

func (f *fakePlanner) GenerateKeywordIdeas(ctx context.Context, req ads.IdeasRequest) ([]core.KeywordIdea, error) {
	f.req = req
	return f.ideas, nil
}

func (f *fakePlanner) GenerateKeywordHistoricalMetrics(ctx context.Context, keywords []string, geoID string) ([]core.KeywordIdea, error) {
	f.lookupCalls++
	f.lookedUp = keywords
	f.lookupGeoID = geoID
	return f.metrics, nil
}

type fakeResolver struct{}

func (fakeResolver) GeoID(ctx context.Context, country string) (string, error) {
	if country == "Atlantis" {
		return "", ads.ErrCriterionNotFound
	}
	if country == "" {
		return "", nil
	}
	return "2276", nil
}

func (fakeResolver) LanguageID(ctx context.Context, language string) (string, error) {
	if language == "" {
		return "", nil
	}
	return "1001", nil
}

// fakeGateway answers with canned text or JSON and records prompts.
type fakeGateway struct {
	text    string
	json    string
	prompts []string
	configs []llm.RequestConfig
}

func (f *fakeGateway) Text(ctx context.Context, prompt string, cfg llm.RequestConfig) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, cfg)
	return f.text, nil
}

func (f *fakeGateway) JSON(ctx context.Context, prompt string, cfg llm.RequestConfig, out any) error {
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, cfg)
	return json.Unmarshal([]byte(f.json), out)
}

type fakeReports struct {
	terms      []string
	ads        []core.AdExample
	customerID string
	baseline   int
}

func (f *fakeReports) NewSearchTerms(ctx context.Context, customerID string, recentDays, baselineDays int) ([]string, error) {
	f.customerID = customerID
	f.baseline = baselineDays
	return f.terms, nil
}

func (f *fakeReports) TopPerformingAds(ctx context.Context, customerID string, topN, lookbackDays int, metric string) ([]core.AdExample, error) {
	f.customerID = customerID
	return f.ads, nil
}

func idea(text string, volumes ...int64) core.KeywordIdea {
	k := core.KeywordIdea{Text: text}
	for i, v := range volumes {
		k.MonthlySearchVolumes = append(k.MonthlySearchVolumes, core.MonthlyVolume{Year: 2024, Month: time.Month(i%12 + 1), Searches: v})
	}
	return k
}

func TestParseSeedKeywords(t *testing.T) {
	seeds, overflow := ParseSeedKeywords(" shoes, ,boots ,")
	if !reflect.DeepEqual(seeds, []string{"shoes", "boots"}) || overflow != nil {
		t.Errorf("seeds = %v overflow = %v", seeds, overflow)
	}

	parts := make([]string, 23)
	for i := range parts {
		parts[i] = fmt.Sprintf("k%d", i)
	}
	seeds, overflow = ParseSeedKeywords(strings.Join(parts, ","))
	if len(seeds) != MaxSeedKeywords {
		t.Errorf("expected %d seeds, got %d", MaxSeedKeywords, len(seeds))
	}
	if !reflect.DeepEqual(overflow, []string{"k20", "k21", "k22"}) {
		t.Errorf("overflow = %v", overflow)
	}
}

func TestFilterIdeas(t *testing.T) {
	ideas := []core.KeywordIdea{idea("low", 500, 100), idea("high", 10, 101), idea("empty")}
	got := FilterIdeas(ideas, 100)
	if len(got) != 1 || got[0].Text != "high" {
		t.Errorf("FilterIdeas() = %v", got)
	}
}

func TestIdeas(t *testing.T) {
	planner := &fakePlanner{ideas: []core.KeywordIdea{idea("a", 200), idea("b", 50)}}
	cfg := DefaultConfig()
	cfg.Country = "Germany"
	cfg.Language = "German"
	p := NewPipeline(planner, fakeResolver{}, &fakeGateway{}, &fakeReports{}, cfg)

	res, err := p.Ideas(context.Background(), IdeasOptions{Seeds: []string{" shoes ", ""}})
	if err != nil {
		t.Fatalf("Ideas() error = %v", err)
	}
	if planner.req.GeoID != "2276" || planner.req.LanguageID != "1001" {
		t.Errorf("request = %+v", planner.req)
	}
	if !reflect.DeepEqual(planner.req.SeedKeywords, []string{"shoes"}) {
		t.Errorf("seeds = %v", planner.req.SeedKeywords)
	}
	if res.Fetched != 2 || len(res.Ideas) != 1 || res.Ideas[0].Text != "a" {
		t.Errorf("result = %+v", res)
	}
	if res.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestIdeasErrors(t *testing.T) {
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, &fakeGateway{}, &fakeReports{}, nil)

	if _, err := p.Ideas(context.Background(), IdeasOptions{Seeds: []string{" "}}); !errors.Is(err, ErrNoSeedKeywords) {
		t.Errorf("expected ErrNoSeedKeywords, got %v", err)
	}
	_, err := p.Ideas(context.Background(), IdeasOptions{Seeds: []string{"x"}, Country: "Atlantis"})
	if !errors.Is(err, ads.ErrCriterionNotFound) {
		t.Errorf("expected ErrCriterionNotFound, got %v", err)
	}
}

func TestInsights(t *testing.T) {
	history := func(last int64) []int64 {
		h := make([]int64, 13)
		for i := range h {
			h[i] = 100
		}
		h[12] = last
		return h
	}
	ideas := []core.KeywordIdea{
		idea("flat", history(105)...),
		idea("double", history(200)...),
		idea("triple", history(300)...),
	}
	gw := &fakeGateway{text: "<h1>Insights</h1>"}
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, &fakeReports{}, nil)

	res, err := p.Insights(context.Background(), InsightsOptions{Seeds: []string{"pets"}, Ideas: ideas})
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	want := []core.IdeaGrowth{{Text: "triple", Growth: 2}, {Text: "double", Growth: 1}}
	if !reflect.DeepEqual(res.Ranked, want) {
		t.Errorf("ranked = %v, want %v", res.Ranked, want)
	}
	if res.HTML != "<h1>Insights</h1>" || res.Metric != growth.YoY {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(gw.prompts[0], `"triple, 200.0%"`) || strings.Contains(gw.prompts[0], `"flat, `) {
		t.Errorf("prompt data is wrong:\n%s", gw.prompts[0])
	}
}

func TestClusters(t *testing.T) {
	gw := &fakeGateway{json: `[{"topic":"footwear","keywords":["Shoes","boots","ghost"]}]`}
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, &fakeReports{}, nil)

	res, err := p.Clusters(context.Background(), []core.KeywordIdea{idea("shoes", 1, 2), idea("Boots", 3, 4)}, "Cluster:")
	if err != nil {
		t.Fatalf("Clusters() error = %v", err)
	}
	if len(res.Clusters) != 1 || !reflect.DeepEqual(res.Clusters[0].Keywords, []string{"shoes", "boots"}) {
		t.Errorf("clusters = %+v", res.Clusters)
	}
	if len(res.Hallucinations) != 1 || res.Hallucinations[0].Keyword != "ghost" {
		t.Errorf("hallucinations = %v", res.Hallucinations)
	}
	if !strings.HasPrefix(gw.prompts[0], "Cluster:\nboots\nshoes\n") {
		t.Errorf("prompt = %q", gw.prompts[0])
	}
	if gw.configs[0].ResponseType != llm.ResponseJSON || gw.configs[0].ResponseSchema != ClusterSchema {
		t.Error("clustering must request JSON with the cluster schema")
	}
}

func TestClustersLooksUpMissingVolumes(t *testing.T) {
	planner := &fakePlanner{metrics: []core.KeywordIdea{idea("Boots", 7, 9)}}
	gw := &fakeGateway{json: `[{"topic":"footwear","keywords":["shoes","boots","sandals"]}]`}
	cfg := DefaultConfig()
	cfg.Country = "Germany"
	p := NewPipeline(planner, fakeResolver{}, gw, &fakeReports{}, cfg)

	ideas := append([]core.KeywordIdea{idea("shoes", 1, 2)}, KeywordIdeas([]string{"boots", " ", "sandals"})...)
	res, err := p.Clusters(context.Background(), ideas, "")
	if err != nil {
		t.Fatalf("Clusters() error = %v", err)
	}
	if planner.lookupCalls != 1 || !reflect.DeepEqual(planner.lookedUp, []string{"boots", "sandals"}) {
		t.Errorf("looked up %v in %d calls", planner.lookedUp, planner.lookupCalls)
	}
	if planner.lookupGeoID != "2276" {
		t.Errorf("geo ID = %q, want 2276", planner.lookupGeoID)
	}
	c := res.Clusters[0]
	if !reflect.DeepEqual(c.Keywords, []string{"shoes", "boots", "sandals"}) {
		t.Errorf("keywords = %v", c.Keywords)
	}
	if !reflect.DeepEqual(c.SearchVolumeHistory, []float64{8, 11}) {
		t.Errorf("history = %v, want [8 11]", c.SearchVolumeHistory)
	}
}

func TestClustersSkipsLookupWhenVolumesKnown(t *testing.T) {
	planner := &fakePlanner{}
	gw := &fakeGateway{json: `[]`}
	p := NewPipeline(planner, fakeResolver{}, gw, &fakeReports{}, nil)

	if _, err := p.Clusters(context.Background(), []core.KeywordIdea{idea("shoes", 1, 2)}, ""); err != nil {
		t.Fatalf("Clusters() error = %v", err)
	}
	if planner.lookupCalls != 0 {
		t.Errorf("unexpected lookup of %v", planner.lookedUp)
	}
}

func TestTrendsUsesGrounding(t *testing.T) {
	gw := &fakeGateway{json: `["matcha latte","cold brew"]`}
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, &fakeReports{}, nil)

	got, err := p.Trends(context.Background(), []string{"tea", "coffee"}, "")
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("trends = %v", got)
	}
	if cfg := gw.configs[0]; !cfg.EnableGrounding || cfg.ResponseSchema != StringListSchema {
		t.Errorf("config = %+v", cfg)
	}
	if !strings.HasPrefix(gw.prompts[0], prompts.DefaultTrendsTemplate) {
		t.Error("expected the default trends template")
	}
}

func TestNewSearchTermKeywords(t *testing.T) {
	reports := &fakeReports{terms: []string{"red shoes", "blue shoes"}}
	gw := &fakeGateway{json: `["shoes"]`}
	cfg := DefaultConfig()
	cfg.CustomerID = "1234567890"
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, reports, cfg)

	zero := 0
	res, err := p.NewSearchTermKeywords(context.Background(), NewTermsOptions{BaselineDays: &zero})
	if err != nil {
		t.Fatalf("NewSearchTermKeywords() error = %v", err)
	}
	if reports.customerID != "1234567890" || reports.baseline != 0 {
		t.Errorf("reports called with %q / %d", reports.customerID, reports.baseline)
	}
	if !reflect.DeepEqual(res.Keywords, []string{"shoes"}) || len(res.Terms) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestNewSearchTermKeywordsWithoutTerms(t *testing.T) {
	gw := &fakeGateway{}
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, &fakeReports{}, nil)

	res, err := p.NewSearchTermKeywords(context.Background(), NewTermsOptions{CustomerID: "123-456-7890"})
	if err != nil {
		t.Fatalf("NewSearchTermKeywords() error = %v", err)
	}
	if len(res.Keywords) != 0 || len(gw.prompts) != 0 {
		t.Error("no model call expected without new terms")
	}

	if _, err := p.NewSearchTermKeywords(context.Background(), NewTermsOptions{}); !errors.Is(err, ErrMissingCustomerID) {
		t.Errorf("expected ErrMissingCustomerID, got %v", err)
	}
}

func TestSuggestAds(t *testing.T) {
	reports := &fakeReports{ads: []core.AdExample{{Headlines: []string{"Old"}, Descriptions: []string{"Desc"}, Keywords: []string{"shoes"}}}}
	gw := &fakeGateway{json: `[{"headlines":["New"],"descriptions":["Fresh"]}]`}
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, reports, nil)

	got, err := p.SuggestAds(context.Background(), SuggestAdsOptions{CustomerID: "1", Keywords: []string{"boots"}})
	if err != nil {
		t.Fatalf("SuggestAds() error = %v", err)
	}
	if len(got) != 1 || got[0].Headlines[0] != "New" {
		t.Errorf("suggestions = %+v", got)
	}
	if !strings.Contains(gw.prompts[0], `"Old"`) || !strings.Contains(gw.prompts[0], "[boots]") {
		t.Errorf("prompt = %s", gw.prompts[0])
	}
}

func TestCampaigns(t *testing.T) {
	gw := &fakeGateway{text: "<h1>Campaigns</h1>"}
	cfg := DefaultConfig()
	cfg.BrandName = "Acme"
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, &fakeReports{}, cfg)

	html, err := p.Campaigns(context.Background(), CampaignOptions{Insights: "<h1>Insights</h1>", Language: "Spanish"})
	if err != nil {
		t.Fatalf("Campaigns() error = %v", err)
	}
	if html != "<h1>Campaigns</h1>" {
		t.Errorf("html = %q", html)
	}
	if !strings.Contains(gw.prompts[0], "Acme") || !strings.Contains(gw.prompts[0], "Spanish") {
		t.Errorf("prompt = %s", gw.prompts[0])
	}
}

func TestCampaignsLogsReportSections(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, "debug")
	defer logger.Configure("info", "console")

	gw := &fakeGateway{text: "<h1>Campaigns</h1><h2>Espresso</h2><p>ads</p>"}
	p := NewPipeline(&fakePlanner{}, fakeResolver{}, gw, &fakeReports{}, nil)
	if _, err := p.Campaigns(context.Background(), CampaignOptions{Insights: "<p>x</p>"}); err != nil {
		t.Fatalf("Campaigns() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"sections":"Campaigns | Espresso"`) {
		t.Errorf("log = %s", buf.String())
	}
}
