package streams

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// customFieldTypes maps Zendesk custom field types to JSON schema types.
var customFieldTypes = map[string]string{
	"text":     "string",
	"textarea": "string",
	"date":     "string",
	"regexp":   "string",
	"dropdown": "string",
	"integer":  "integer",
	"decimal":  "number",
	"checkbox": "boolean",
}

// noAccessMessage is what the API answers when the account plan has no
// access to custom field definitions.
const noAccessMessage = "You do not have access to this page. Please contact the account owner of this help desk for further help."

// customFieldSchema converts one custom field definition into a schema
// fragment. Unknown field types are an error: silently emitting them
// untyped would corrupt the downstream contract.
func customFieldSchema(field map[string]any) (*domain.Schema, error) {
	fieldType, _ := field["type"].(string)
	jsonType, ok := customFieldTypes[fieldType]
	if !ok {
		title, _ := field["title"].(string)
		key, _ := field["key"].(string)
		return nil, fmt.Errorf("unsupported type for custom field %q (key %q): %q", title, key, fieldType)
	}

	schema := &domain.Schema{Type: domain.TypeList{jsonType, "null"}}
	if fieldType == "date" {
		schema.Format = "date-time"
	}
	if fieldType == "dropdown" {
		schema.Enum = dropdownValues(field)
	}
	return schema, nil
}

// dropdownValues collects the option values of a dropdown field.
func dropdownValues(field map[string]any) []string {
	options, _ := field["custom_field_options"].([]any)
	values := make([]string, 0, len(options))
	for _, option := range options {
		entry, ok := option.(map[string]any)
		if !ok {
			continue
		}
		if value, ok := entry["value"].(string); ok {
			values = append(values, value)
		}
	}
	return values
}

// customFieldProperties converts a list of field definitions into a
// properties map keyed by field key. Definitions without a key are
// skipped.
func customFieldProperties(fields []map[string]any) (map[string]*domain.Schema, error) {
	properties := make(map[string]*domain.Schema, len(fields))
	for _, field := range fields {
		key, _ := field["key"].(string)
		if key == "" {
			continue
		}
		schema, err := customFieldSchema(field)
		if err != nil {
			return nil, err
		}
		properties[key] = schema
	}
	return properties, nil
}

// isFieldAccessDenied reports whether the error is the specific
// no-access response some account tiers return for custom field
// listings. Other API errors still fail discovery.
func isFieldAccessDenied(err error) bool {
	var apiErr *zendesk.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.Message, noAccessMessage)
}

// enrichCustomFields replaces the sub-schema's properties with the
// account's custom field definitions. A no-access response logs a
// warning via the caller and leaves the base schema untouched.
func enrichCustomFields(schema *domain.Schema, property string, fields []map[string]any) error {
	target, ok := schema.Properties[property]
	if !ok || target == nil {
		return fmt.Errorf("schema has no %s property to enrich", property)
	}
	properties, err := customFieldProperties(fields)
	if err != nil {
		return err
	}
	target.Properties = properties
	return nil
}
