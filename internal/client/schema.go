package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var uploadResponseSchema = map[string]any{
	"type":     "object",
	"required": []string{"message", "num_jobs"},
	"properties": map[string]any{
		"message":  map[string]any{"type": "string"},
		"num_jobs": map[string]any{"type": "number", "minimum": 0},
	},
}

var jobSchema = map[string]any{
	"type":     "object",
	"required": []string{"job_title", "company", "location", "sponsorship_details"},
	"properties": map[string]any{
		"job_title":           map[string]any{"type": "string"},
		"company":             map[string]any{"type": "string"},
		"location":            map[string]any{"type": "string"},
		"sponsorship_details": map[string]any{"type": "string"},
	},
}

var queryResponseSchema = map[string]any{
	"type":     "object",
	"required": []string{"summary", "relevant_jobs"},
	"properties": map[string]any{
		"summary": map[string]any{"type": "string"},
		"relevant_jobs": map[string]any{
			"type":  "array",
			"items": jobSchema,
		},
	},
}

var (
	uploadSchema = mustCompile("upload_response.json", uploadResponseSchema)
	querySchema  = mustCompile("query_response.json", queryResponseSchema)
)

func mustCompile(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// validateBody checks that data is JSON matching schema.
func validateBody(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal body: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("body does not match schema: %w", err)
	}
	return nil
}
