package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var resultSchemaMap = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []string{
		"overall_score", "skills_score", "experience_score", "education_score",
		"skills_found", "years_experience", "education_level",
		"detailed_analysis", "recommendations", "market_insights",
	},
	"properties": map[string]any{
		"overall_score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"skills_score":      map[string]any{"type": "integer", "minimum": 0, "maximum": 50},
		"experience_score":  map[string]any{"type": "integer", "minimum": 0, "maximum": 30},
		"education_score":   map[string]any{"type": "integer", "minimum": 0, "maximum": 20},
		"years_experience":  map[string]any{"type": "integer", "minimum": 0},
		"skills_found":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"recommendations":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"education_level":   map[string]any{"type": "string"},
		"detailed_analysis": map[string]any{"type": "string"},
		"market_insights":   map[string]any{"type": "string"},
	},
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func resultSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(resultSchemaMap)
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("cv_evaluation.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("cv_evaluation.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

func validateResult(data []byte) error {
	schema, err := resultSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
