package tutor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema that a response body must satisfy.
type Schema struct {
	Name       string
	Definition map[string]any
}

var chatResponseSchema = &Schema{
	Name: "chat-response",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"response"},
		"properties": map[string]any{
			"response": map[string]any{"type": "string"},
			"feedback": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"is_correct": map[string]any{"type": "boolean"},
					"correct_answers": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

var exerciseResponseSchema = &Schema{
	Name: "vocab-exercise-response",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"content", "type", "instructions", "target"},
		"properties": map[string]any{
			"content":      map[string]any{"type": "string"},
			"type":         map[string]any{"type": "string"},
			"instructions": map[string]any{"type": "string"},
			"target": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against schema. A nil schema accepts anything
// that is valid JSON. Failures are returned as *ProtocolError.
func validateBody(endpoint string, schema *Schema, raw []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ProtocolError{
			Endpoint: endpoint,
			Body:     json.RawMessage(raw),
			Err:      fmt.Errorf("invalid JSON: %w", err),
		}
	}
	if schema == nil {
		return nil
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return &ProtocolError{
			Endpoint: endpoint,
			Body:     json.RawMessage(raw),
			Err:      fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ProtocolError{
			Endpoint: endpoint,
			Body:     json.RawMessage(raw),
			Err:      fmt.Errorf("schema validation failed: %w", err),
		}
	}
	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so the compiler sees plain decoded values.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
