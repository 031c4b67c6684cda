package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanNonFinite(t *testing.T) {
	input := map[string]any{
		"score":  math.NaN(),
		"posInf": math.Inf(1),
		"negInf": math.Inf(-1),
		"ok":     0.5,
		"nested": []any{math.NaN(), 1.0, "text"},
		"label":  "unchanged",
		"count":  3,
	}

	got, ok := CleanNonFinite(input).(map[string]any)
	assert.True(t, ok)

	assert.Nil(t, got["score"])
	assert.Nil(t, got["posInf"])
	assert.Nil(t, got["negInf"])
	assert.Equal(t, 0.5, got["ok"])
	assert.Equal(t, []any{nil, 1.0, "text"}, got["nested"])
	assert.Equal(t, "unchanged", got["label"])
	assert.Equal(t, 3, got["count"])
}

func TestCleanNonFiniteScalars(t *testing.T) {
	assert.Nil(t, CleanNonFinite(math.NaN()))
	assert.Nil(t, CleanNonFinite(float32(math.Inf(1))))
	assert.Equal(t, 1.5, CleanNonFinite(1.5))
	assert.Equal(t, "s", CleanNonFinite("s"))
	assert.Nil(t, CleanNonFinite(nil))

	inf := math.Inf(-1)
	assert.Nil(t, CleanNonFinite(&inf))
	val := 2.0
	assert.Equal(t, 2.0, CleanNonFinite(&val))
}
