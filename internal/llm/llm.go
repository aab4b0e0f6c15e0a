// Package llm is the single entry point for Gemini calls. It returns free
// text or schema validated JSON and works around the incompatibility of
// search grounding with JSON responses.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"giga/internal/logger"
	"giga/internal/prompts"
)

// maxRecoveryCalls bounds the "extract valid JSON" follow-ups per Generate.
const maxRecoveryCalls = 1

// Result is the outcome of one Generate call.
type Result struct {
	// Text is the final model answer with code fences removed.
	Text string
	// Value is the decoded JSON for ResponseJSON requests.
	Value any
	// Calls counts the model invocations made.
	Calls int
	// Recovered is set when the answer came from the JSON extraction call.
	Recovered bool
}

// Gateway invokes a Generator and post-processes its answers.
type Gateway struct {
	gen Generator
}

// NewGateway creates a gateway on top of gen.
func NewGateway(gen Generator) *Gateway {
	return &Gateway{gen: gen}
}

// Generate runs prompt with cfg.
//
// When JSON output and grounding are both requested the model is asked for
// plain text with raw JSON instructions appended to the prompt. If that
// answer does not parse, one ungrounded JSON mode call extracts the JSON
// from it and its answer is final.
func (g *Gateway) Generate(ctx context.Context, prompt string, cfg RequestConfig) (*Result, error) {
	cfg = cfg.withDefaults()
	if cfg.ResponseType != ResponseJSON {
		text, err := g.call(ctx, prompt, cfg)
		if err != nil {
			return nil, err
		}
		return &Result{Text: StripFences(text), Calls: 1}, nil
	}
	if !cfg.EnableGrounding {
		return g.generateJSON(ctx, prompt, cfg)
	}
	return g.generateGroundedJSON(ctx, prompt, cfg)
}

func (g *Gateway) generateJSON(ctx context.Context, prompt string, cfg RequestConfig) (*Result, error) {
	text, err := g.call(ctx, prompt, cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Text: StripFences(text), Calls: 1}
	if res.Value, err = parseJSON(res.Text); err != nil {
		logger.Error("Model response is not valid JSON", err, "model", cfg.ModelID, "text", text)
		return nil, &ParseError{Text: text, Err: err}
	}
	if err := validate(cfg.ResponseSchema, res.Value, res.Text); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *Gateway) generateGroundedJSON(ctx context.Context, prompt string, cfg RequestConfig) (*Result, error) {
	schemaJSON := ""
	if cfg.ResponseSchema != nil {
		var err error
		if schemaJSON, err = SchemaJSON(cfg.ResponseSchema); err != nil {
			return nil, err
		}
	}

	grounded := cfg
	grounded.ResponseType = ResponseText
	grounded.ResponseSchema = nil

	text, err := g.call(ctx, prompt+prompts.GroundedJSONSuffix(schemaJSON), grounded)
	if err != nil {
		return nil, err
	}
	res := &Result{Text: StripFences(text), Calls: 1}
	value, parseErr := parseJSON(res.Text)

	for attempt := 0; parseErr != nil && attempt < maxRecoveryCalls; attempt++ {
		logger.Warn("Grounded response is not valid JSON, extracting", "model", cfg.ModelID, "error", parseErr.Error())
		recovery := cfg
		recovery.EnableGrounding = false
		extracted, err := g.call(ctx, prompts.ExtractJSON(text), recovery)
		if err != nil {
			return nil, err
		}
		res.Calls++
		res.Recovered = true
		text = extracted
		res.Text = StripFences(extracted)
		value, parseErr = parseJSON(res.Text)
	}
	if parseErr != nil {
		logger.Error("Could not recover JSON from model response", parseErr, "model", cfg.ModelID, "text", text)
		return nil, &ParseError{Text: text, Err: parseErr}
	}

	res.Value = value
	if err := validate(cfg.ResponseSchema, value, res.Text); err != nil {
		return nil, err
	}
	return res, nil
}

// call makes exactly one model request.
func (g *Gateway) call(ctx context.Context, prompt string, cfg RequestConfig) (string, error) {
	text, err := g.gen.GenerateContent(ctx, prompt, cfg)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Text returns the plain text answer to prompt.
func (g *Gateway) Text(ctx context.Context, prompt string, cfg RequestConfig) (string, error) {
	cfg.ResponseType = ResponseText
	cfg.ResponseSchema = nil
	res, err := g.Generate(ctx, prompt, cfg)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// JSON decodes the JSON answer to prompt into out. cfg.ResponseSchema, when
// set, is enforced before decoding.
func (g *Gateway) JSON(ctx context.Context, prompt string, cfg RequestConfig, out any) error {
	cfg.ResponseType = ResponseJSON
	res, err := g.Generate(ctx, prompt, cfg)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(res.Text), out); err != nil {
		return &ParseError{Text: res.Text, Err: err}
	}
	return nil
}

var errNotJSON = errors.New("no JSON value found")

func parseJSON(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errNotJSON
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotJSON, err)
	}
	return v, nil
}

var fenced = regexp.MustCompile("(?s)^```[a-zA-Z]*[ \t]*\r?\n?(.*?)\r?\n?```$")

// StripFences removes a markdown code fence (```json, ```html or bare ```)
// wrapped around the whole text.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fenced.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
