package ports

import (
	"context"
	"strings"

	"recall-backend/domain/core/entities"
	"recall-backend/domain/graph"
)

// Filters scope memory operations to an owner. At least one identifier
// must be set for scoped operations.
type Filters struct {
	UserID  string
	AgentID string
	RunID   string
}

// Any reports whether at least one identifier is present.
func (f Filters) Any() bool {
	return f.UserID != "" || f.AgentID != "" || f.RunID != ""
}

// AsMap renders the non-empty identifiers as a filter mapping, the shape
// the graph layer consumes.
func (f Filters) AsMap() map[string]any {
	m := make(map[string]any, 3)
	if f.UserID != "" {
		m["user_id"] = f.UserID
	}
	if f.AgentID != "" {
		m["agent_id"] = f.AgentID
	}
	if f.RunID != "" {
		m["run_id"] = f.RunID
	}
	return m
}

// GraphScope folds a filter mapping into the single stable property the
// graph store scopes its nodes by. Both the graph adapter and the
// components issuing raw graph queries rely on it producing the same
// value for the same identifiers.
func GraphScope(filters map[string]any) string {
	parts := make([]string, 0, len(filters))
	for _, key := range []string{"user_id", "agent_id", "run_id"} {
		if v, ok := filters[key].(string); ok && v != "" {
			parts = append(parts, key+"="+v)
		}
	}
	if len(parts) == 0 {
		return "global"
	}
	return strings.Join(parts, "|")
}

// VectorStore persists memories with their embeddings and answers
// similarity searches.
type VectorStore interface {
	Insert(ctx context.Context, memory *entities.Memory, embedding []float32) error
	Search(ctx context.Context, embedding []float32, f Filters, limit int, threshold *float64) ([]*entities.Memory, error)
	Get(ctx context.Context, id string) (*entities.Memory, error)
	List(ctx context.Context, f Filters) ([]*entities.Memory, error)
	Update(ctx context.Context, id, content string, embedding []float32) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, f Filters) error
	Reset(ctx context.Context) error
}

// GraphStore persists extracted entity/relationship triples. Its write
// and query entry points carry the call shapes the sanitizing decorators
// in domain/graph wrap.
type GraphStore interface {
	graph.Ingestor
	graph.Querier
	DeleteAll(ctx context.Context, filters map[string]any) error
	Reset(ctx context.Context) error
}

// HistoryStore records the change log of every memory.
type HistoryStore interface {
	Append(ctx context.Context, entry *entities.HistoryEntry) error
	ByMemoryID(ctx context.Context, memoryID string) ([]*entities.HistoryEntry, error)
	Reset(ctx context.Context) error
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// FactExtractor derives storable facts and graph triples from
// conversational messages.
type FactExtractor interface {
	ExtractFacts(ctx context.Context, messages []entities.Message, prompt string) ([]string, error)
	ExtractRelations(ctx context.Context, facts []string) ([]entities.Relation, error)
}
