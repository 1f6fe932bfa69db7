package emit

import (
	"strconv"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// Normaliser projects raw API payloads through a stream schema before
// emission. Declared fields are coerced to their schema type and
// date-time strings are rewritten to UTC with a trailing Z. Fields the
// schema does not declare pass through unchanged: the upstream API adds
// fields without notice and dropping them would lose data.
type Normaliser struct{}

// NewNormaliser creates a Normaliser.
func NewNormaliser() *Normaliser {
	return &Normaliser{}
}

// Normalise returns a normalised copy of data. The input map is never
// mutated.
func (n *Normaliser) Normalise(data map[string]any, schema *domain.Schema) map[string]any {
	if data == nil {
		return nil
	}
	if schema == nil || len(schema.Properties) == 0 {
		return cloneMap(data)
	}

	out := make(map[string]any, len(data))
	for key, value := range data {
		fieldSchema, declared := schema.Properties[key]
		if !declared {
			out[key] = value
			continue
		}
		out[key] = n.normaliseValue(value, fieldSchema)
	}
	return out
}

// normaliseValue coerces one value to its schema type. Values that
// cannot be coerced are returned unchanged; the downstream consumer is
// better placed to reject them than we are to guess.
func (n *Normaliser) normaliseValue(value any, schema *domain.Schema) any {
	if value == nil || schema == nil {
		return value
	}

	if schema.IsDateTime() {
		return normaliseDateTime(value)
	}

	switch {
	case schema.Type.Contains("object"):
		if nested, ok := value.(map[string]any); ok {
			return n.Normalise(nested, schema)
		}
	case schema.Type.Contains("array"):
		if items, ok := value.([]any); ok {
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = n.normaliseValue(item, schema.Items)
			}
			return out
		}
	case schema.Type.Contains("integer"):
		return normaliseInteger(value)
	case schema.Type.Contains("number"):
		return normaliseNumber(value)
	case schema.Type.Contains("boolean"):
		return normaliseBoolean(value)
	case schema.Type.Contains("string"):
		return normaliseString(value)
	}

	return value
}

// normaliseDateTime rewrites a parseable timestamp string to UTC with
// second precision and a trailing Z.
func normaliseDateTime(value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	t, err := domain.ParseBookmarkTime(s)
	if err != nil {
		return value
	}
	return t.Format(domain.BookmarkTimeFormat)
}

func normaliseInteger(value any) any {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
	case string:
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return value
}

func normaliseNumber(value any) any {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return value
}

func normaliseBoolean(value any) any {
	if s, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(s); err == nil {
			return parsed
		}
	}
	return value
}

func normaliseString(value any) any {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return value
}

func cloneMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out
}
