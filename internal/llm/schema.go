package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// schemaDocument renders a genai schema as a JSON Schema document. genai
// uses upper-case OpenAPI type names and a nullable flag; JSON Schema wants
// lower-case types with "null" as an extra type.
func schemaDocument(s *genai.Schema) map[string]any {
	if s == nil {
		return nil
	}
	doc := map[string]any{}
	if s.Type != "" && s.Type != genai.TypeUnspecified {
		typ := strings.ToLower(string(s.Type))
		if s.Nullable != nil && *s.Nullable {
			doc["type"] = []string{typ, "null"}
		} else {
			doc["type"] = typ
		}
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		doc["enum"] = s.Enum
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = schemaDocument(p)
		}
		doc["properties"] = props
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	if s.Items != nil {
		doc["items"] = schemaDocument(s.Items)
	}
	if s.MinItems != nil {
		doc["minItems"] = *s.MinItems
	}
	if s.MaxItems != nil {
		doc["maxItems"] = *s.MaxItems
	}
	if s.Minimum != nil {
		doc["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		doc["maximum"] = *s.Maximum
	}
	if len(s.AnyOf) > 0 {
		anyOf := make([]any, len(s.AnyOf))
		for i, a := range s.AnyOf {
			anyOf[i] = schemaDocument(a)
		}
		doc["anyOf"] = anyOf
	}
	return doc
}

// SchemaJSON renders schema as indented JSON Schema text for prompts.
func SchemaJSON(schema *genai.Schema) (string, error) {
	b, err := json.MarshalIndent(schemaDocument(schema), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response schema: %w", err)
	}
	return string(b), nil
}

// resolveSchema converts a genai schema into a validator.
func resolveSchema(schema *genai.Schema) (*jsonschema.Resolved, error) {
	b, err := json.Marshal(schemaDocument(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to encode response schema: %w", err)
	}
	var js jsonschema.Schema
	if err := json.Unmarshal(b, &js); err != nil {
		return nil, fmt.Errorf("failed to convert response schema: %w", err)
	}
	resolved, err := js.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("invalid response schema: %w", err)
	}
	return resolved, nil
}

// validate checks a decoded JSON value against schema. A nil schema accepts
// everything.
func validate(schema *genai.Schema, value any, text string) error {
	if schema == nil {
		return nil
	}
	resolved, err := resolveSchema(schema)
	if err != nil {
		return err
	}
	if err := resolved.Validate(value); err != nil {
		return &ValidationError{Text: text, Err: err}
	}
	return nil
}
