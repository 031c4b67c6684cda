package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeType(t *testing.T) {
	s := NewSanitizer(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "already valid", input: "WORKS_AT", want: "WORKS_AT"},
		{name: "single colon", input: "works:at", want: "works_at"},
		{name: "multiple colons", input: "a:b:c", want: "a_b_c"},
		{name: "forward slash", input: "lives/in", want: "lives_in"},
		{name: "backslash", input: `part\of`, want: "part_of"},
		{name: "space", input: "works at", want: "works_at"},
		{name: "hyphen", input: "co-founder", want: "co_founder"},
		{name: "mixed separators", input: "works: at/the-office", want: "works_at_the_office"},
		{name: "consecutive underscores collapse", input: "a__b____c", want: "a_b_c"},
		{name: "leading and trailing stripped", input: ":works:", want: "works"},
		{name: "separators only", input: ":-/ ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.SanitizeType(tt.input))
		})
	}
}

func TestSanitizeTypeIdempotent(t *testing.T) {
	s := NewSanitizer(nil)

	inputs := []string{
		"", "a:b:c", "works_at", "a__b", "_x_", "lives: in /the--city",
		"::::", "a b c d", `x\y/z`,
	}
	for _, in := range inputs {
		once := s.SanitizeType(in)
		assert.Equal(t, once, s.SanitizeType(once), "input %q", in)
	}
}

func TestSanitizeTypeInvariant(t *testing.T) {
	s := NewSanitizer(nil)

	inputs := []string{
		"a:b:c", "x/y", `a\b`, "a b", "a-b", "a__b", "_a_", ":a:", "ok",
		"邻 接:关 系", "a:-/\\ b",
	}
	for _, in := range inputs {
		got := s.SanitizeType(in)
		assert.NotContains(t, got, ":", "input %q", in)
		assert.NotContains(t, got, "/", "input %q", in)
		assert.NotContains(t, got, `\`, "input %q", in)
		assert.NotContains(t, got, " ", "input %q", in)
		assert.NotContains(t, got, "-", "input %q", in)
		assert.NotContains(t, got, "__", "input %q", in)
		if got != "" {
			assert.NotEqual(t, byte('_'), got[0], "input %q", in)
			assert.NotEqual(t, byte('_'), got[len(got)-1], "input %q", in)
		}
	}
}
