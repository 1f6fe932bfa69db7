package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TypeList is a JSON-schema type declaration. The wire form may be a
// single string or a list of strings; it always unmarshals to a list.
type TypeList []string

// UnmarshalJSON accepts both "string" and ["null", "string"] forms.
func (t *TypeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TypeList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parsing type list: %w", err)
	}
	*t = TypeList(list)
	return nil
}

// Contains returns true if the list includes the given type name.
func (t TypeList) Contains(name string) bool {
	for _, v := range t {
		if v == name {
			return true
		}
	}
	return false
}

// Schema is the JSON-schema subset used to describe stream records.
type Schema struct {
	// Type is the JSON type declaration, usually nullable ("null" first).
	Type TypeList `json:"type,omitempty"`

	// Properties maps field names to their schemas for object types.
	Properties map[string]*Schema `json:"properties,omitempty"`

	// Items is the element schema for array types.
	Items *Schema `json:"items,omitempty"`

	// Format annotates string types, e.g. "date-time".
	Format string `json:"format,omitempty"`

	// Enum restricts string values to a fixed set.
	Enum []string `json:"enum,omitempty"`
}

// NullableSchema returns a schema whose type is null or the given type.
func NullableSchema(typeName string) *Schema {
	return &Schema{Type: TypeList{"null", typeName}}
}

// IsDateTime returns true if the schema describes a date-time string.
func (s *Schema) IsDateTime() bool {
	return s != nil && s.Format == "date-time"
}

// PropertyNames returns the schema's property names in sorted order.
func (s *Schema) PropertyNames() []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
