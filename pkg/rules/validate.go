// pkg/rules/validate.go
package rules

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema is the JSON Schema for the catalog document. Structural
// problems (missing fields, unknown operators, wrong shapes) surface here,
// at load time, instead of during a user's evaluation request.
const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "schemes"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "schemes": {
      "type": "array",
      "items": {"$ref": "#/definitions/scheme"}
    }
  },
  "definitions": {
    "scheme": {
      "type": "object",
      "required": ["scheme_id", "scheme_name", "eligibility"],
      "properties": {
        "scheme_id": {"type": "string", "minLength": 1},
        "scheme_name": {"type": "string", "minLength": 1},
        "eligibility": {
          "type": "object",
          "properties": {
            "all": {"type": "array", "items": {"$ref": "#/definitions/criterion"}},
            "any": {"type": "array", "items": {"$ref": "#/definitions/criterion"}},
            "disqualifiers": {"type": "array", "items": {"$ref": "#/definitions/criterion"}}
          },
          "additionalProperties": false
        },
        "required_inputs": {"type": "array", "items": {"type": "string"}},
        "required_documents": {"type": "array", "items": {"type": "string"}},
        "benefit_outline": {"type": "string"},
        "next_steps": {"type": "string"}
      }
    },
    "criterion": {
      "type": "object",
      "required": ["attribute", "op"],
      "properties": {
        "attribute": {"type": "string", "minLength": 1},
        "op": {
          "type": "string",
          "enum": ["==", "!=", ">", ">=", "<", "<=", "truthy", "falsy", "in", "not_in", "between"]
        },
        "value": {},
        "reason": {"type": "string"},
        "reason_if_fail": {"type": "string"}
      }
    }
  }
}`

// ValidateDocument checks raw catalog JSON against the schema. All
// violations are collected into a single error.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("catalog schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("invalid catalog document: %s", strings.Join(issues, "; "))
}

// Validate runs the schema-independent rule checks the engine requires
// (operator closure, operand shapes) on every scheme.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Schemes))
	for i, s := range c.Schemes {
		if _, dup := seen[s.SchemeID]; dup {
			return fmt.Errorf("schemes[%d]: duplicate scheme_id %q", i, s.SchemeID)
		}
		seen[s.SchemeID] = struct{}{}

		if err := s.Eligibility.Validate(); err != nil {
			return fmt.Errorf("scheme %q: %w", s.SchemeID, err)
		}
	}
	return nil
}
