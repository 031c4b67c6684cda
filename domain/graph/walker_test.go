package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDataDesignatorKeys(t *testing.T) {
	s := NewSanitizer(nil)

	tests := []struct {
		name  string
		input map[string]any
		want  map[string]any
	}{
		{
			name:  "relationship key",
			input: map[string]any{"relationship": "a:b:c"},
			want:  map[string]any{"relationship": "a_b_c"},
		},
		{
			name:  "relation key",
			input: map[string]any{"relation": "works at"},
			want:  map[string]any{"relation": "works_at"},
		},
		{
			name:  "rel_type key",
			input: map[string]any{"rel_type": "x:y"},
			want:  map[string]any{"rel_type": "x_y"},
		},
		{
			name:  "type key",
			input: map[string]any{"type": "a-b"},
			want:  map[string]any{"type": "a_b"},
		},
		{
			name:  "relationship_type key",
			input: map[string]any{"relationship_type": "lives:in:city"},
			want:  map[string]any{"relationship_type": "lives_in_city"},
		},
		{
			name:  "single colon under designator key still sanitized",
			input: map[string]any{"relationship": "a:b"},
			want:  map[string]any{"relationship": "a_b"},
		},
		{
			name:  "non-string designator value recursed, not tokenized",
			input: map[string]any{"type": map[string]any{"relationship": "a:b:c"}},
			want:  map[string]any{"type": map[string]any{"relationship": "a_b_c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.SanitizeData(tt.input))
		})
	}
}

func TestSanitizeDataHeuristic(t *testing.T) {
	s := NewSanitizer(nil)

	// Two or more colons trigger the rewrite even off a designator key.
	got := s.SanitizeData(map[string]any{"note": "x:y:z"})
	assert.Equal(t, map[string]any{"note": "x_y_z"}, got)

	// A single colon does not.
	got = s.SanitizeData(map[string]any{"note": "a:b"})
	assert.Equal(t, map[string]any{"note": "a:b"}, got)

	// Documented imprecision: colon-heavy strings that are not labels get
	// mangled too.
	got = s.SanitizeData("2024-01-02T10:20:30Z")
	assert.Equal(t, "2024_01_02T10_20_30Z", got)
}

func TestSanitizeDataCustomHeuristic(t *testing.T) {
	s := NewSanitizer(nil, WithHeuristic(func(v string) bool {
		return strings.Count(v, ":") > 0
	}))

	got := s.SanitizeData(map[string]any{"note": "a:b"})
	assert.Equal(t, map[string]any{"note": "a_b"}, got)
}

func TestSanitizeDataStructuralFidelity(t *testing.T) {
	s := NewSanitizer(nil)

	input := map[string]any{
		"entities": []any{
			map[string]any{
				"source":            "alice",
				"relationship_type": "lives:in:city",
				"target":            "berlin",
				"confidence":        0.92,
				"primary":           true,
				"rank":              3,
				"extra":             nil,
			},
		},
		"count": 1,
	}

	got, ok := s.SanitizeData(input).(map[string]any)
	require.True(t, ok)

	// Same key set, same sequence lengths, non-designator scalars intact.
	assert.Len(t, got, len(input))
	entities, ok := got["entities"].([]any)
	require.True(t, ok)
	require.Len(t, entities, 1)

	entity, ok := entities[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", entity["source"])
	assert.Equal(t, "lives_in_city", entity["relationship_type"])
	assert.Equal(t, "berlin", entity["target"])
	assert.Equal(t, 0.92, entity["confidence"])
	assert.Equal(t, true, entity["primary"])
	assert.Equal(t, 3, entity["rank"])
	assert.Nil(t, entity["extra"])
	assert.Equal(t, 1, got["count"])

	// Original input is untouched.
	orig := input["entities"].([]any)[0].(map[string]any)
	assert.Equal(t, "lives:in:city", orig["relationship_type"])
}

func TestSanitizeDataUnrecognizedTypes(t *testing.T) {
	s := NewSanitizer(nil)

	assert.Equal(t, 42, s.SanitizeData(42))
	assert.Equal(t, 3.14, s.SanitizeData(3.14))
	assert.Equal(t, false, s.SanitizeData(false))
	assert.Nil(t, s.SanitizeData(nil))

	type custom struct{ V string }
	c := custom{V: "a:b:c"}
	assert.Equal(t, c, s.SanitizeData(c))
}

func TestSanitizeDataDepthGuard(t *testing.T) {
	s := NewSanitizer(nil)

	// Build a payload nested beyond the traversal cutoff; the walk must
	// return without exhausting the stack.
	deep := any("a:b:c")
	for i := 0; i < maxDepth*4; i++ {
		deep = []any{deep}
	}

	assert.NotPanics(t, func() {
		s.SanitizeData(deep)
	})
}
