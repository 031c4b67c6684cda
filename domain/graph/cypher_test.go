package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeCypher(t *testing.T) {
	s := NewSanitizer(nil)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "single malformed type",
			query: "MATCH (a)-[r:WORKS:AT]->(b) RETURN a",
			want:  "MATCH (a)-[r:WORKS_AT]->(b) RETURN a",
		},
		{
			name:  "valid type unchanged",
			query: "MATCH (a)-[r:valid_type]->(b) RETURN a",
			want:  "MATCH (a)-[r:valid_type]->(b) RETURN a",
		},
		{
			name:  "anonymous relationship",
			query: "MATCH (a)-[:LIVES:IN]->(b) RETURN b",
			want:  "MATCH (a)-[:LIVES_IN]->(b) RETURN b",
		},
		{
			name:  "multiple independent matches",
			query: "MATCH (a)-[r1:A:B]->(b)-[r2:C:D]->(c) RETURN c",
			want:  "MATCH (a)-[r1:A_B]->(b)-[r2:C_D]->(c) RETURN c",
		},
		{
			name:  "reverse direction not matched",
			query: "MATCH (a)<-[r:BAD:TYPE]-(b) RETURN a",
			want:  "MATCH (a)<-[r:BAD:TYPE]-(b) RETURN a",
		},
		{
			name:  "arrowless edge not matched",
			query: "MATCH (a)-[r:BAD:TYPE]-(b) RETURN a",
			want:  "MATCH (a)-[r:BAD:TYPE]-(b) RETURN a",
		},
		{
			name:  "no relationship clause",
			query: "MATCH (n:Person) RETURN n",
			want:  "MATCH (n:Person) RETURN n",
		},
		{
			name:  "parameters untouched",
			query: "MATCH (a {name: $name})-[r:KNOWS:OF]->(b) RETURN b",
			want:  "MATCH (a {name: $name})-[r:KNOWS_OF]->(b) RETURN b",
		},
		{
			name:  "empty query",
			query: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.SanitizeCypher(tt.query))
		})
	}
}

func TestSanitizeCypherIdempotent(t *testing.T) {
	s := NewSanitizer(nil)

	query := "MATCH (a)-[r:WORKS:AT]->(b)-[:A B]->(c) RETURN a"
	once := s.SanitizeCypher(query)
	assert.Equal(t, once, s.SanitizeCypher(once))
}
