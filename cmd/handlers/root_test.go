package handlers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"giga/internal/pipeline"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, path := range [][]string{
		{"ideas"}, {"insights"}, {"clusters"}, {"campaigns"},
		{"trends"}, {"new-terms"}, {"ads", "suggest"}, {"serve"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found: %v", path, err)
		}
	}
}

func TestParseSeeds(t *testing.T) {
	if _, err := parseSeeds(" , "); !errors.Is(err, pipeline.ErrNoSeedKeywords) {
		t.Errorf("expected ErrNoSeedKeywords, got %v", err)
	}
	seeds, err := parseSeeds("a, b")
	if err != nil || len(seeds) != 2 {
		t.Errorf("parseSeeds() = %v, %v", seeds, err)
	}
}

func TestLoadIdeas(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"result object", `{"run_id":"r","ideas":[{"text":"shoes","monthly_search_volumes":[{"year":2024,"month":1,"searches":10}]}]}`},
		{"bare array", ` [{"text":"shoes","monthly_search_volumes":[{"year":2024,"month":1,"searches":10}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			ideas, err := loadIdeas(path)
			if err != nil {
				t.Fatalf("loadIdeas() error = %v", err)
			}
			if len(ideas) != 1 || ideas[0].Text != "shoes" || ideas[0].LatestSearches() != 10 {
				t.Errorf("ideas = %+v", ideas)
			}
		})
	}

	if _, err := loadIdeas(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteJSONKeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]string{"html": "<h1>x</h1>"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<h1>x</h1>") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestClusterIdeasFromKeywords(t *testing.T) {
	ideas, err := clusterIdeas(context.Background(), nil, &clustersFlags{keywords: "espresso, ,milk frother"})
	if err != nil {
		t.Fatalf("clusterIdeas() error = %v", err)
	}
	if len(ideas) != 2 || ideas[0].Text != "espresso" || ideas[1].Text != "milk frother" {
		t.Errorf("ideas = %+v", ideas)
	}
	if _, err := clusterIdeas(context.Background(), nil, &clustersFlags{keywords: " , "}); err == nil {
		t.Error("expected an error for empty --keywords")
	}
}
