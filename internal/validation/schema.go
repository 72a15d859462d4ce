package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// defaultField names the failure when the schema error cannot be pinned to a
// single parameter.
const defaultField = "params"

var missingPropertyPattern = regexp.MustCompile(`missing propert(?:y|ies): '([^']+)'`)

// SchemaValidator validates tool parameters against compiled JSON schemas.
// Schemas are registered at startup; Validate is safe for concurrent use.
type SchemaValidator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// NewSchemaValidator creates an empty SchemaValidator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles schema and stores it under name. An empty or null schema
// is ignored.
func (v *SchemaValidator) Register(name string, schema []byte) error {
	if len(schema) == 0 || string(schema) == "null" {
		return nil
	}

	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("add schema resource for %q: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("compile schema for %q: %w", name, err)
	}

	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

// Has reports whether a schema is registered for name.
func (v *SchemaValidator) Has(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate checks params against the schema registered for name. Tools
// without a schema always pass.
func (v *SchemaValidator) Validate(name string, params map[string]any) error {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return nil
	}

	doc, err := normalize(params)
	if err != nil {
		return upgates.NewValidationError(fmt.Sprintf("parameters cannot be encoded: %v", err), defaultField)
	}

	if err := schema.Validate(doc); err != nil {
		return toValidationError(err)
	}
	return nil
}

// normalize converts params into the generic JSON representation the schema
// library expects.
func normalize(params map[string]any) (any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func toValidationError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return upgates.NewValidationError(err.Error(), defaultField)
	}

	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field := fieldFromLocation(leaf.InstanceLocation)
	if field == "" {
		if m := missingPropertyPattern.FindStringSubmatch(leaf.Message); m != nil {
			field = m[1]
		}
	}
	if field == "" {
		field = defaultField
	}

	return upgates.NewValidationError(fmt.Sprintf("Invalid parameters: %s", leaf.Message), field)
}

// fieldFromLocation returns the top-level property of a JSON pointer such as
// "/items/0/code".
func fieldFromLocation(location string) string {
	location = strings.TrimPrefix(location, "/")
	if location == "" {
		return ""
	}
	if i := strings.IndexByte(location, '/'); i >= 0 {
		location = location[:i]
	}
	return location
}
