package pipeline

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"giga/internal/ads"
	"giga/internal/config"
	"giga/internal/llm"
	"giga/internal/logger"

	"golang.org/x/oauth2"
)

type cannedGenerator struct {
	answer string
}

func (g cannedGenerator) GenerateContent(ctx context.Context, prompt string, cfg llm.RequestConfig) (string, error) {
	return g.answer, nil
}

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := NewBuilder(nil).Build(context.Background()); err == nil {
		t.Error("expected an error without configuration")
	}
}

func TestBuildRejectsUnknownMetric(t *testing.T) {
	cfg := &config.Config{Pipeline: config.Pipeline{GrowthMetric: "velocity"}}
	if _, err := NewBuilder(cfg).Build(context.Background()); err == nil {
		t.Error("expected an unknown metric error")
	}
}

func TestBuildWithoutAds(t *testing.T) {
	cfg := &config.Config{Pipeline: config.Pipeline{GrowthMetric: "yoy"}}
	p, err := NewBuilder(cfg).WithGenerator(cannedGenerator{answer: `["cold brew"]`}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = p.Ideas(context.Background(), IdeasOptions{Seeds: []string{"coffee"}})
	if err == nil || !strings.Contains(err.Error(), "google ads is not configured") {
		t.Errorf("Ideas() error = %v", err)
	}

	got, err := p.Trends(context.Background(), []string{"coffee"}, "")
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"cold brew"}) {
		t.Errorf("Trends() = %v", got)
	}
}

func TestBuildWithoutGemini(t *testing.T) {
	cfg := &config.Config{Pipeline: config.Pipeline{GrowthMetric: "yoy"}}
	client, err := ads.NewClient(context.Background(),
		config.Static{Token: "dev-token", Customer: "1234567890"},
		ads.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	p, err := NewBuilder(cfg).WithAdsClient(client).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = p.Campaigns(context.Background(), CampaignOptions{Insights: "<p>x</p>"})
	if err == nil || !strings.Contains(err.Error(), "gemini is not configured") {
		t.Errorf("Campaigns() error = %v", err)
	}
	if errors.Is(err, llm.ErrEmptyResponse) {
		t.Error("configuration errors must not look like empty answers")
	}
}

func TestLogUsage(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, "info")
	defer logger.Configure("info", "console")

	cfg := &config.Config{Pipeline: config.Pipeline{GrowthMetric: "yoy"}}
	p, err := NewBuilder(cfg).WithGenerator(cannedGenerator{answer: "<h1>Campaigns</h1>"}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	p.LogUsage()
	if strings.Contains(buf.String(), "Model usage") {
		t.Fatal("usage logged before any model call")
	}

	if _, err := p.Campaigns(context.Background(), CampaignOptions{Insights: "<p>x</p>"}); err != nil {
		t.Fatalf("Campaigns() error = %v", err)
	}
	p.LogUsage()
	out := buf.String()
	if !strings.Contains(out, `"message":"Model usage"`) || !strings.Contains(out, `"calls":1`) {
		t.Errorf("usage log = %s", out)
	}
}
