// Package graph makes externally generated graph labels compatible with
// Neo4j 5.x naming rules. Neo4j 5.x rejects relationship types containing
// colons, so labels produced by LLM extraction (e.g. "lives:in:city") must
// be rewritten before they reach the driver. The package provides a pure
// Sanitizer plus decorators that install the rewrite in front of a graph
// store at wiring time.
package graph

import (
	"strings"

	"go.uber.org/zap"
)

// DesignatorKeys are the mapping keys whose string values are known, by
// convention, to hold a literal relationship-type label.
var DesignatorKeys = map[string]bool{
	"relationship":      true,
	"relation":          true,
	"rel_type":          true,
	"type":              true,
	"relationship_type": true,
}

// tokenReplacer applies the character substitutions Neo4j 5.x requires.
var tokenReplacer = strings.NewReplacer(
	":", "_",
	"/", "_",
	`\`, "_",
	" ", "_",
	"-", "_",
)

// Sanitizer rewrites relationship-type tokens, graph payloads and Cypher
// statements. All methods are pure aside from debug logging and are safe
// for concurrent use.
type Sanitizer struct {
	logger *zap.Logger

	// looksLikeRelType classifies free-standing strings that were not
	// reached through a designator key. The default (more than one colon)
	// accepts false positives on unrelated colon-heavy strings such as
	// timestamps; see the package tests.
	looksLikeRelType func(string) bool
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithHeuristic replaces the predicate used to classify free-standing
// strings as malformed relationship labels.
func WithHeuristic(fn func(string) bool) Option {
	return func(s *Sanitizer) {
		s.looksLikeRelType = fn
	}
}

// NewSanitizer creates a sanitizer. A nil logger is replaced with a no-op
// logger so the zero configuration stays usable in tests.
func NewSanitizer(logger *zap.Logger, opts ...Option) *Sanitizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sanitizer{
		logger:           logger,
		looksLikeRelType: defaultHeuristic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultHeuristic(value string) bool {
	return strings.Count(value, ":") > 1
}

// SanitizeType rewrites a relationship-type token so it satisfies Neo4j
// 5.x naming rules: no colon, slash, backslash, space or hyphen, no
// consecutive underscores, no leading or trailing underscore. Empty input
// is returned unchanged. The operation is idempotent.
func (s *Sanitizer) SanitizeType(relType string) string {
	if relType == "" {
		return relType
	}

	sanitized := tokenReplacer.Replace(relType)

	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}

	sanitized = strings.Trim(sanitized, "_")

	if sanitized != relType {
		s.logger.Debug("sanitized relationship type",
			zap.String("from", relType),
			zap.String("to", sanitized),
		)
	}

	return sanitized
}
