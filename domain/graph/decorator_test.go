package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngestor struct {
	data    any
	filters map[string]any
}

func (f *fakeIngestor) Add(_ context.Context, data any, filters map[string]any) (any, error) {
	f.data = data
	f.filters = filters
	return "ok", nil
}

type fakeQuerier struct {
	cypher string
	params map[string]any
}

func (f *fakeQuerier) Query(_ context.Context, cypher string, params map[string]any) (any, error) {
	f.cypher = cypher
	f.params = params
	return "rows", nil
}

func TestSanitizingIngestorEndToEnd(t *testing.T) {
	next := &fakeIngestor{}
	ingestor := NewSanitizingIngestor(next, NewSanitizer(nil))

	payload := map[string]any{
		"entities": []any{
			map[string]any{"relationship_type": "lives:in:city"},
		},
	}
	filters := map[string]any{"user_id": "u1"}

	result, err := ingestor.Add(context.Background(), payload, filters)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	assert.Equal(t, map[string]any{
		"entities": []any{
			map[string]any{"relationship_type": "lives_in_city"},
		},
	}, next.data)

	// Filters pass through unmodified.
	assert.Equal(t, filters, next.filters)
}

func TestSanitizingQuerierRewritesStatement(t *testing.T) {
	next := &fakeQuerier{}
	querier := NewSanitizingQuerier(next, NewSanitizer(nil))

	params := map[string]any{"name": "alice"}
	result, err := querier.Query(context.Background(), "MATCH (a)-[r:WORKS:AT]->(b) RETURN a", params)
	require.NoError(t, err)
	assert.Equal(t, "rows", result)

	assert.Equal(t, "MATCH (a)-[r:WORKS_AT]->(b) RETURN a", next.cypher)
	assert.Equal(t, params, next.params)
}

func TestInstallWrapsBothTargets(t *testing.T) {
	ingestor := &fakeIngestor{}
	querier := &fakeQuerier{}

	wrappedIngestor, wrappedQuerier := Install(ingestor, querier, NewSanitizer(nil), nil)

	assert.IsType(t, &SanitizingIngestor{}, wrappedIngestor)
	assert.IsType(t, &SanitizingQuerier{}, wrappedQuerier)
}

func TestInstallGracefulWhenIngestorAbsent(t *testing.T) {
	querier := &fakeQuerier{}

	var wrappedIngestor Ingestor
	var wrappedQuerier Querier
	assert.NotPanics(t, func() {
		wrappedIngestor, wrappedQuerier = Install(nil, querier, NewSanitizer(nil), nil)
	})

	// The absent target stays absent; the present one is still wrapped.
	assert.Nil(t, wrappedIngestor)
	assert.IsType(t, &SanitizingQuerier{}, wrappedQuerier)
}

func TestInstallGracefulWhenBothAbsent(t *testing.T) {
	assert.NotPanics(t, func() {
		ingestor, querier := Install(nil, nil, nil, nil)
		assert.Nil(t, ingestor)
		assert.Nil(t, querier)
	})
}

func TestInstallDoesNotDoubleWrap(t *testing.T) {
	ingestor := &fakeIngestor{}
	querier := &fakeQuerier{}
	s := NewSanitizer(nil)

	wrappedIngestor, wrappedQuerier := Install(ingestor, querier, s, nil)
	again, againQ := Install(wrappedIngestor, wrappedQuerier, s, nil)

	assert.Same(t, wrappedIngestor.(*SanitizingIngestor), again.(*SanitizingIngestor))
	assert.Same(t, wrappedQuerier.(*SanitizingQuerier), againQ.(*SanitizingQuerier))
}
