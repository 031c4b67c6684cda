package neo4jstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTriples(t *testing.T) {
	payload := map[string]any{
		"entities": []any{
			map[string]any{"source": "alice", "relationship": "WORKS_AT", "target": "acme"},
			map[string]any{"source": "", "relationship": "X", "target": "y"},
			map[string]any{"source": "bob", "relationship": "", "target": "y"},
			"not a map",
			map[string]any{"source": "bob", "relationship": "KNOWS", "target": "alice"},
		},
	}

	got := extractTriples(payload)
	assert.Equal(t, []triple{
		{source: "alice", relationship: "WORKS_AT", target: "acme"},
		{source: "bob", relationship: "KNOWS", target: "alice"},
	}, got)
}

func TestExtractTriplesUnexpectedShapes(t *testing.T) {
	assert.Empty(t, extractTriples(nil))
	assert.Empty(t, extractTriples("string"))
	assert.Empty(t, extractTriples(map[string]any{"entities": "not a list"}))
	assert.Empty(t, extractTriples(map[string]any{"other": []any{}}))
}
