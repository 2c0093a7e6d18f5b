package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/receiptlens/receiptlens/constants"
)

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// The API serves records in this shape; batch outputs are validated against it locally.
func BuildRecordJSONSchema() map[string]any {
	props := map[string]any{
		"title":    map[string]any{"type": "string", "minLength": 1},
		"date":     map[string]any{"type": "string", "pattern": `^(\d{2}/\d{2}/\d{4})?$`},
		"amount":   map[string]any{"type": "number", "minimum": 0.0},
		"currency": map[string]any{"type": "string", "enum": constants.CurrencyCodes()},
		"raw_text": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	}
	required := []string{"title", "date", "amount", "currency", "raw_text"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateRecordJSON validates "data" against the record schema.
func ValidateRecordJSON(data []byte) error {
	return validateAgainstSchema(BuildRecordJSONSchema(), data)
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
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
