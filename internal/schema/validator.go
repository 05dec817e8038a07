// Package schema checks loosely typed JSON documents, such as AI output,
// against a JSON schema before they are decoded.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// maxReported caps how many violations an error lists.
const maxReported = 3

// Validator compiles schemas once and caches them by their JSON encoding.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError lists the violations found in a document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed:\n- " + summarize(e.Violations)
}

// Validate checks doc against schemaData, which may be a map, a struct or
// a JSON string. A document that is not JSON at all fails with a plain
// error; a document that parses but does not conform fails with
// *ValidationError.
func (v *Validator) Validate(schemaData any, doc []byte) error {
	compiled, err := v.compile(schemaData)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &ValidationError{Violations: violations}
}

func (v *Validator) compile(schemaData any) (*gojsonschema.Schema, error) {
	var raw []byte
	if s, ok := schemaData.(string); ok {
		raw = []byte(s)
	} else {
		b, err := json.Marshal(schemaData)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	key := string(raw)

	if cached, ok := v.cache.Load(key); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, compiled)
	return compiled, nil
}

func summarize(errs []string) string {
	if len(errs) <= maxReported {
		return strings.Join(errs, "\n- ")
	}
	return strings.Join(errs[:maxReported], "\n- ") + fmt.Sprintf("\n... and %d more", len(errs)-maxReported)
}
