package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SelectionValidator validates panel selections before any request is made.
type SelectionValidator interface {
	Validate(schema SelectionSchema, selection map[string]any) error
}

// SelectionSchema names a JSON schema describing a panel form.
type SelectionSchema struct {
	Code   string
	Schema map[string]any
}

// ParameterSelectionSchema describes the cluster parameter form.
func ParameterSelectionSchema(k int, years []string) SelectionSchema {
	return SelectionSchema{
		Code: "rfm.panel.cluster_parameters",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"cluster", "year", "function"},
			"properties": map[string]any{
				"cluster":  map[string]any{"type": "string", "enum": toAny(Values(ClusterOptions(k)))},
				"year":     map[string]any{"type": "string", "enum": toAny(Values(YearOptions(years)))},
				"function": map[string]any{"type": "string", "enum": toAny(Values(AggregationOptions()))},
			},
		},
	}
}

// VisualizationSelectionSchema describes the cluster visualization form.
func VisualizationSelectionSchema() SelectionSchema {
	return SelectionSchema{
		Code: "rfm.panel.cluster_visualization",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"metric", "aggregation"},
			"properties": map[string]any{
				"metric":      map[string]any{"type": "string", "enum": toAny(Values(MetricOptions()))},
				"aggregation": map[string]any{"type": "string", "enum": toAny(Values(AggregationOptions()))},
			},
		},
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// JSONSchemaValidator compiles selection schemas and validates selections.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate returns a validation PanelError when selection violates schema.
func (v *JSONSchemaValidator) Validate(def SelectionSchema, selection map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if selection != nil {
		data, err := json.Marshal(selection)
		if err != nil {
			return fmt.Errorf("dashboard: marshal selection for %s: %w", def.Code, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize selection for %s: %w", def.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return &PanelError{
			Kind:    KindValidation,
			Message: "Unsupported selection.",
			Err:     fmt.Errorf("dashboard: selection for %s failed validation: %w", def.Code, err),
		}
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def SelectionSchema) (*jsonschema.Schema, error) {
	key := def.Code + ":" + configHash(def.Schema)
	v.mu.RLock()
	schema, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}
