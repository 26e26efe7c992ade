// Package validate decides whether a built liquidation record is fit to
// hand off: a structural schema check plus a field-by-field diff against
// an independent re-parse of the same source text. A record is accepted
// only when both report zero errors.
package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/austral-data/cosecha/types"
)

//go:embed schema.json
var schemaJSON []byte

const schemaName = "liquidacion.json"

// Schema is the compiled structural schema of the canonical record.
type Schema struct {
	compiled *jsonschema.Schema
}

// NewSchema compiles the embedded record schema.
func NewSchema() (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Check validates the record's structural shape: required fields, types,
// numeric ranges, and closed enumerations, independent of content.
func (s *Schema) Check(record types.Liquidation) []types.FieldError {
	data, err := json.Marshal(record)
	if err != nil {
		return []types.FieldError{{Section: "document", Field: "record", Error: err.Error()}}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []types.FieldError{{Section: "document", Field: "record", Error: err.Error()}}
	}

	err = s.compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return flatten(ve)
	}
	return []types.FieldError{{Section: "document", Field: "record", Error: err.Error()}}
}

// flatten walks the validation error tree and emits one entry per leaf
// cause, mapped onto section/field by its instance location.
func flatten(ve *jsonschema.ValidationError) []types.FieldError {
	if len(ve.Causes) == 0 {
		section, field := splitLocation(ve.InstanceLocation)
		return []types.FieldError{{Section: section, Field: field, Error: ve.Message}}
	}
	var out []types.FieldError
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}

func splitLocation(loc string) (section, field string) {
	parts := strings.Split(strings.TrimPrefix(loc, "/"), "/")
	switch {
	case loc == "":
		return "document", "record"
	case len(parts) == 1:
		return "document", parts[0]
	default:
		return parts[0], strings.Join(parts[1:], ".")
	}
}
