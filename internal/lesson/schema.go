package lesson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://mathdrill/lessons.json"

// fileSchema describes a lesson file.
var fileSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"lessons": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":      "string",
						"minLength": 1,
					},
					"tasknum": map[string]any{
						"type":    "integer",
						"minimum": 0,
					},
					"tasks": map[string]any{
						"type": "object",
						"additionalProperties": map[string]any{
							"type": "string",
						},
					},
				},
				"required": []any{"name", "tasks"},
			},
		},
	},
	"required": []any{"lessons"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON document, not Go literals.
		raw, err := json.Marshal(fileSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
