package utils

import "math"

// CleanNonFinite recursively replaces NaN and infinite float values in a
// decoded JSON-like structure with nil, so the result can always be
// re-encoded as JSON. Vector backends occasionally surface non-finite
// scores, which encoding/json refuses to marshal.
func CleanNonFinite(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = CleanNonFinite(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CleanNonFinite(item)
		}
		return out
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case *float64:
		if v == nil {
			return nil
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil
		}
		return *v
	default:
		return value
	}
}
