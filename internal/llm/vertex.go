package llm

import (
	"context"
	"fmt"
	"sync"

	"giga/internal/logger"

	"google.golang.org/genai"
)

// Generator performs exactly one model call per GenerateContent.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, cfg RequestConfig) (string, error)
}

// VertexGenerator calls Gemini through Vertex AI. Clients are created lazily
// per project and location.
type VertexGenerator struct {
	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewVertexGenerator creates a Vertex AI backed generator.
func NewVertexGenerator() *VertexGenerator {
	return &VertexGenerator{clients: make(map[string]*genai.Client)}
}

func (v *VertexGenerator) client(ctx context.Context, project, location string) (*genai.Client, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := project + "/" + location
	if c, ok := v.clients[key]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	v.clients[key] = c
	return c, nil
}

// GenerateContent sends prompt to the configured model.
func (v *VertexGenerator) GenerateContent(ctx context.Context, prompt string, cfg RequestConfig) (string, error) {
	cfg = cfg.withDefaults()
	if cfg.ProjectID == "" {
		return "", ErrMissingProject
	}
	client, err := v.client(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	logger.Debug("Calling Gemini", "model", cfg.ModelID, "response_type", cfg.ResponseType.String(), "grounding", cfg.EnableGrounding)
	resp, err := client.Models.GenerateContent(ctx, cfg.ModelID, contents, contentConfig(cfg))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHateSpeech,
	genai.HarmCategoryDangerousContent,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryHarassment,
}

// contentConfig maps a RequestConfig onto the genai request options.
func contentConfig(cfg RequestConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(cfg.ThinkingBudget)},
	}
	if cfg.Temperature > 0 {
		gc.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.TopP > 0 {
		gc.TopP = genai.Ptr(cfg.TopP)
	}
	if cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = cfg.MaxOutputTokens
	}
	if cfg.ResponseType == ResponseJSON {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = cfg.ResponseSchema
	} else {
		gc.ResponseMIMEType = "text/plain"
	}
	if cfg.EnableGrounding {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	for _, category := range safetyCategories {
		gc.SafetySettings = append(gc.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
		})
	}
	return gc
}
