package prompts

import (
	"strings"
	"testing"

	"giga/internal/core"
)

func TestInsights(t *testing.T) {
	ideas := []core.IdeaGrowth{
		{Text: "dog pool", Growth: 122.423},
		{Text: "pet health", Growth: 0.25},
	}
	prompt := Insights(ideas, []string{"pets", "dogs"}, "MoM", "German")

	for _, want := range []string{
		"[pets, dogs]",
		"MoM search growth",
		"Output in German.",
		"<EXAMPLE>",
		`"dog pool, 12242.3%"`,
		`"pet health, 25.0%"`,
		"<DATA>",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "</DATA>") {
		t.Error("prompt should end with the data section")
	}
	if Insights(ideas, nil, "", "") != Insights(ideas, nil, DefaultMetricLabel, DefaultLanguage) {
		t.Error("empty label and language should use defaults")
	}
}

func TestGrowthLine(t *testing.T) {
	tests := []struct {
		growth float64
		want   string
	}{
		{0.5, "x, 50.0%"},
		{-0.1234, "x, -12.3%"},
		{0, "x, 0.0%"},
	}
	for _, tt := range tests {
		if got := GrowthLine(core.IdeaGrowth{Text: "x", Growth: tt.growth}); got != tt.want {
			t.Errorf("GrowthLine(%v) = %q, want %q", tt.growth, got, tt.want)
		}
	}
}

func TestClustering(t *testing.T) {
	prompt := Clustering("Group these keywords:", []string{"a", "b"})
	if !strings.HasPrefix(prompt, "Group these keywords:\na\nb\n") {
		t.Errorf("unexpected prompt start %q", prompt)
	}
	if !strings.HasSuffix(prompt, ClusteringOutputFormat) {
		t.Error("output format instructions missing")
	}
}

func TestCampaigns(t *testing.T) {
	prompt := Campaigns(CampaignInput{
		BrandName: "Acme",
		Language:  "French",
		Insights:  "<h1>Insights</h1>",
	})
	for _, want := range []string{"working for Acme", "Create the campaigns in French.", DefaultStyleGuide, "<h1>Insights</h1>"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "ad examples") {
		t.Error("ad examples section should be omitted when empty")
	}

	withExamples := Campaigns(CampaignInput{AdExamples: "EXAMPLE ADS", StyleGuide: "custom guide"})
	if !strings.Contains(withExamples, "EXAMPLE ADS") || !strings.Contains(withExamples, "custom guide") {
		t.Error("custom examples and style guide should be included")
	}
	if strings.Contains(withExamples, DefaultStyleGuide) {
		t.Error("default style guide should be replaced")
	}
}

func TestAdSuggestion(t *testing.T) {
	examples := AdExamples([]core.AdExample{{
		Headlines:    []string{"Buy Shoes"},
		Descriptions: []string{"Great shoes"},
		Keywords:     []string{"shoes", "sneakers"},
	}})
	if !strings.Contains(examples, "[shoes, sneakers]") || !strings.Contains(examples, `"Buy Shoes"`) {
		t.Errorf("examples missing ad content:\n%s", examples)
	}

	prompt := AdSuggestion(examples, []string{"boots"})
	if !strings.HasPrefix(prompt, examples) {
		t.Error("suggestion prompt should start with the examples")
	}
	if !strings.Contains(prompt, "[boots]") || !strings.HasSuffix(strings.TrimSpace(prompt), "*Model:*") {
		t.Errorf("unexpected suggestion prompt:\n%s", prompt)
	}
}

func TestNewSearchTermKeywords(t *testing.T) {
	prompt := NewSearchTermKeywords([]string{"red shoes", "blue shoes"}, "")
	if !strings.Contains(prompt, "red shoes, blue shoes") || !strings.Contains(prompt, "Use English") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
}

func TestTrendKeywords(t *testing.T) {
	prompt := TrendKeywords("What is trending?", []string{"tea", "coffee"})
	if !strings.HasPrefix(prompt, "What is trending?\n\nKeywords:\ntea\ncoffee") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "IMPORTANT:") {
		t.Error("rules missing")
	}
}

func TestGroundedJSONSuffix(t *testing.T) {
	if s := GroundedJSONSuffix(""); strings.Contains(s, "schema") {
		t.Error("schema line should be omitted without a schema")
	}
	if s := GroundedJSONSuffix(`{"type":"array"}`); !strings.Contains(s, `{"type":"array"}`) {
		t.Error("schema should be embedded")
	}
	if ExtractJSON("abc") != "Extract valid JSON from this text response:\n\nabc" {
		t.Errorf("unexpected extraction prompt %q", ExtractJSON("abc"))
	}
}
