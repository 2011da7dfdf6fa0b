// Package contract validates raw product documents against the JSON Schema
// that upstream and downstream teams agreed on. The schema is embedded so
// the binary carries the exact contract version it was built with.
package contract

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed product_schema.json
var productSchemaJSON []byte

// ProductValidator checks raw product documents against the product schema.
type ProductValidator struct {
	schema *gojsonschema.Schema
}

// NewProductValidator compiles the embedded product schema.
func NewProductValidator() (*ProductValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(productSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile product schema: %w", err)
	}
	return &ProductValidator{schema: schema}, nil
}

// Validate checks one raw JSON document. A schema violation returns an
// error listing every failed expectation, not just the first one.
func (v *ProductValidator) Validate(doc []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
}

// SchemaJSON returns the raw contract document, used by the monitor to
// diff the agreed schema against the schema inferred from live data.
func SchemaJSON() []byte {
	return productSchemaJSON
}
