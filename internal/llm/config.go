package llm

import (
	"giga/internal/config"

	"google.golang.org/genai"
)

const (
	// DefaultLocation is the Vertex AI region used when none is configured.
	DefaultLocation = "us-central1"
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-pro"
	// DefaultThinkingBudget is the thinking token budget per request.
	DefaultThinkingBudget = int32(1024)
)

// ResponseType selects how the model answer is returned.
type ResponseType int

const (
	// ResponseText returns the answer as free text.
	ResponseText ResponseType = iota
	// ResponseJSON parses the answer as JSON, validated against
	// ResponseSchema when one is set.
	ResponseJSON
)

func (t ResponseType) String() string {
	if t == ResponseJSON {
		return "json"
	}
	return "text"
}

// RequestConfig configures a single model invocation. ModelID and ProjectID
// are required; zero values of the remaining fields fall back to defaults.
type RequestConfig struct {
	ModelID         string
	ProjectID       string
	Location        string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	ResponseType    ResponseType
	ResponseSchema  *genai.Schema
	EnableGrounding bool
	ThinkingBudget  int32
}

// FromConfig builds a text request config from the gemini settings.
func FromConfig(g config.Gemini) RequestConfig {
	return RequestConfig{
		ModelID:         g.Model,
		ProjectID:       g.ProjectID,
		Location:        g.Location,
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		MaxOutputTokens: g.MaxOutputTokens,
		ThinkingBudget:  g.ThinkingBudget,
	}
}

// WithJSON returns a copy of c requesting JSON output matching schema.
func (c RequestConfig) WithJSON(schema *genai.Schema) RequestConfig {
	c.ResponseType = ResponseJSON
	c.ResponseSchema = schema
	return c
}

// WithGrounding returns a copy of c with Google Search grounding enabled.
func (c RequestConfig) WithGrounding() RequestConfig {
	c.EnableGrounding = true
	return c
}

func (c RequestConfig) withDefaults() RequestConfig {
	if c.ModelID == "" {
		c.ModelID = DefaultModel
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.ThinkingBudget == 0 {
		c.ThinkingBudget = DefaultThinkingBudget
	}
	return c
}
