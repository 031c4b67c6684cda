package graph

import "regexp"

// relTypePattern matches a forward-directed relationship clause with a
// single bracketed type annotation: -[var:TOKEN]-> with an optional
// variable binding. Reverse-direction edges (<-[...]-), arrowless edges
// and multi-type annotations (a|b) are deliberately not matched; they
// pass through unsanitized.
var relTypePattern = regexp.MustCompile(`-\[([A-Za-z_][A-Za-z0-9_]*)?:([^\]]+)\]->`)

// SanitizeCypher rewrites every relationship-type token embedded in
// forward-directed relationship clauses of a Cypher statement. Matches
// are processed left to right and independently of each other; all
// surrounding query syntax, variable bindings and parameters are left
// unchanged. A statement with no matches is returned as-is.
func (s *Sanitizer) SanitizeCypher(query string) string {
	sanitized := relTypePattern.ReplaceAllStringFunc(query, func(clause string) string {
		parts := relTypePattern.FindStringSubmatch(clause)
		variable, relType := parts[1], parts[2]

		clean := s.SanitizeType(relType)
		if clean == relType {
			return clause
		}
		return "-[" + variable + ":" + clean + "]->"
	})

	if sanitized != query {
		s.logger.Debug("sanitized cypher query")
	}

	return sanitized
}
