package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Ingestor is the graph data-ingestion entry point: it accepts a graph
// payload (entities and relationships extracted from conversation) plus a
// filter mapping and persists it.
type Ingestor interface {
	Add(ctx context.Context, data any, filters map[string]any) (any, error)
}

// Querier is the raw query-execution entry point of the graph database
// client.
type Querier interface {
	Query(ctx context.Context, cypher string, params map[string]any) (any, error)
}

// SanitizingIngestor decorates an Ingestor, rewriting relationship-type
// labels in the payload before delegating. Filters are passed through
// unmodified.
type SanitizingIngestor struct {
	next      Ingestor
	sanitizer *Sanitizer
}

// NewSanitizingIngestor wraps the given ingestor.
func NewSanitizingIngestor(next Ingestor, sanitizer *Sanitizer) *SanitizingIngestor {
	return &SanitizingIngestor{next: next, sanitizer: sanitizer}
}

// Add sanitizes the payload and delegates to the wrapped ingestor.
func (d *SanitizingIngestor) Add(ctx context.Context, data any, filters map[string]any) (any, error) {
	return d.next.Add(ctx, d.sanitizer.SanitizeData(data), filters)
}

// SanitizingQuerier decorates a Querier, rewriting relationship-type
// tokens embedded in the Cypher statement before delegating. Parameters
// are passed through unmodified.
type SanitizingQuerier struct {
	next      Querier
	sanitizer *Sanitizer
}

// NewSanitizingQuerier wraps the given querier.
func NewSanitizingQuerier(next Querier, sanitizer *Sanitizer) *SanitizingQuerier {
	return &SanitizingQuerier{next: next, sanitizer: sanitizer}
}

// Query sanitizes the statement and delegates to the wrapped querier.
func (d *SanitizingQuerier) Query(ctx context.Context, cypher string, params map[string]any) (any, error) {
	return d.next.Query(ctx, d.sanitizer.SanitizeCypher(cypher), params)
}

// Install places sanitizing decorators in front of the two graph entry
// points. Each target is handled independently and best-effort: a nil
// target is skipped with a warning and returned as-is, an already wrapped
// target is not wrapped twice, and an unexpected failure while wrapping
// one target is logged without affecting the other. Install never fails;
// at worst a target stays unwrapped and graph writes go out unsanitized.
func Install(ingestor Ingestor, querier Querier, sanitizer *Sanitizer, logger *zap.Logger) (Ingestor, Querier) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sanitizer == nil {
		sanitizer = NewSanitizer(logger)
	}

	wrappedIngestor := ingestor
	if err := wrapTarget(func() {
		switch {
		case ingestor == nil:
			logger.Warn("graph ingestion entry point absent, sanitization not installed")
		case isWrappedIngestor(ingestor):
			logger.Warn("graph ingestion entry point already sanitized, skipping")
		default:
			wrappedIngestor = NewSanitizingIngestor(ingestor, sanitizer)
			logger.Info("installed relationship-type sanitization on graph ingestion")
		}
	}); err != nil {
		logger.Error("failed to install ingestion sanitization", zap.Error(err))
	}

	wrappedQuerier := querier
	if err := wrapTarget(func() {
		switch {
		case querier == nil:
			logger.Warn("graph query entry point absent, sanitization not installed")
		case isWrappedQuerier(querier):
			logger.Warn("graph query entry point already sanitized, skipping")
		default:
			wrappedQuerier = NewSanitizingQuerier(querier, sanitizer)
			logger.Info("installed relationship-type sanitization on graph queries")
		}
	}); err != nil {
		logger.Error("failed to install query sanitization", zap.Error(err))
	}

	return wrappedIngestor, wrappedQuerier
}

func isWrappedIngestor(ingestor Ingestor) bool {
	_, ok := ingestor.(*SanitizingIngestor)
	return ok
}

func isWrappedQuerier(querier Querier) bool {
	_, ok := querier.(*SanitizingQuerier)
	return ok
}

// wrapTarget confines panics raised while wrapping a single target so one
// failed sub-installation cannot abort the other or the caller.
func wrapTarget(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("install panicked: %v", r)
		}
	}()
	fn()
	return nil
}
