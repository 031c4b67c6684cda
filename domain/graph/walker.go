package graph

// maxDepth bounds the recursive walk so adversarially nested payloads
// cannot exhaust the stack. Values below the cutoff pass through untouched.
const maxDepth = 512

// SanitizeData walks an arbitrarily nested payload of maps, slices,
// strings and scalars and rewrites every relationship-type label in it.
//
// A string value stored under one of the DesignatorKeys is treated as a
// literal token and sanitized directly, without recursing into it. Any
// other string is only rewritten when the heuristic classifies it as a
// malformed relationship label. Non-string scalars and unrecognized types
// pass through unchanged.
//
// The input is never mutated; maps and slices are rebuilt, scalar leaves
// that needed no change may be shared with the input.
func (s *Sanitizer) SanitizeData(value any) any {
	return s.sanitizeValue(value, 0)
}

func (s *Sanitizer) sanitizeValue(value any, depth int) any {
	if depth > maxDepth {
		return value
	}

	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if str, ok := item.(string); ok && DesignatorKeys[key] {
				out[key] = s.SanitizeType(str)
				continue
			}
			out[key] = s.sanitizeValue(item, depth+1)
		}
		return out

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.sanitizeValue(item, depth+1)
		}
		return out

	case string:
		if s.looksLikeRelType(v) {
			return s.SanitizeType(v)
		}
		return v

	default:
		return value
	}
}
