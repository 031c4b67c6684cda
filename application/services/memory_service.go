package services

import (
	"context"
	"time"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	"recall-backend/domain/graph"
	apperrors "recall-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddRequest carries the input for storing new memories.
type AddRequest struct {
	Messages   []entities.Message
	Filters    ports.Filters
	Metadata   map[string]any
	MemoryType string
	Prompt     string
}

// AddResultItem describes one memory produced by an add operation.
type AddResultItem struct {
	ID     string `json:"id"`
	Memory string `json:"memory"`
	Event  string `json:"event"`
}

// AddResult is the response of an add operation.
type AddResult struct {
	Results   []AddResultItem     `json:"results"`
	Relations []entities.Relation `json:"relations,omitempty"`
}

// SearchRequest carries the input for a similarity search.
type SearchRequest struct {
	Query     string
	Filters   ports.Filters
	Threshold *float64
	Limit     int
}

// SearchResult bundles the vector matches with the caller's graph
// relations.
type SearchResult struct {
	Results   []*entities.Memory  `json:"results"`
	Relations []entities.Relation `json:"relations,omitempty"`
}

// MemoryService orchestrates memory storage: fact extraction, embedding,
// vector persistence, history logging and optional graph ingestion and
// search. The graph ingestor and querier it receives are expected to
// already be wrapped by the sanitizing decorators, so relationship types
// reaching the graph store satisfy Neo4j naming rules.
type MemoryService struct {
	vectors   ports.VectorStore
	history   ports.HistoryStore
	embedder  ports.Embedder
	extractor ports.FactExtractor
	ingestor  graph.Ingestor   // nil when the graph store is disabled
	querier   graph.Querier    // nil when the graph store is disabled
	graphs    ports.GraphStore // nil when the graph store is disabled
	logger    *zap.Logger
}

// NewMemoryService creates a new memory service. ingestor, querier and
// graphs may be nil when no graph store is configured; graph ingestion
// and graph search are then skipped.
func NewMemoryService(
	vectors ports.VectorStore,
	history ports.HistoryStore,
	embedder ports.Embedder,
	extractor ports.FactExtractor,
	ingestor graph.Ingestor,
	querier graph.Querier,
	graphs ports.GraphStore,
	logger *zap.Logger,
) *MemoryService {
	return &MemoryService{
		vectors:   vectors,
		history:   history,
		embedder:  embedder,
		extractor: extractor,
		ingestor:  ingestor,
		querier:   querier,
		graphs:    graphs,
		logger:    logger,
	}
}

// Add extracts facts from the given messages and stores each as a memory.
// When a graph store is wired, entity/relationship triples are extracted
// and ingested as well; graph failures are logged but do not fail the
// vector write.
func (s *MemoryService) Add(ctx context.Context, req AddRequest) (*AddResult, error) {
	if !req.Filters.Any() {
		return nil, apperrors.NewValidationError("at least one identifier (user_id, agent_id, run_id) is required")
	}
	if len(req.Messages) == 0 {
		return nil, apperrors.NewValidationError("at least one message is required")
	}

	facts, err := s.extractor.ExtractFacts(ctx, req.Messages, req.Prompt)
	if err != nil {
		return nil, apperrors.NewExternalError("llm", err)
	}

	result := &AddResult{Results: []AddResultItem{}}
	for _, fact := range facts {
		embedding, err := s.embedder.Embed(ctx, fact)
		if err != nil {
			return nil, apperrors.NewExternalError("embedder", err)
		}

		memory := &entities.Memory{
			ID:        uuid.New().String(),
			Content:   fact,
			UserID:    req.Filters.UserID,
			AgentID:   req.Filters.AgentID,
			RunID:     req.Filters.RunID,
			Metadata:  s.buildMetadata(req),
			CreatedAt: time.Now().UTC(),
		}

		if err := s.vectors.Insert(ctx, memory, embedding); err != nil {
			return nil, apperrors.NewDatabaseError("insert memory", err)
		}

		s.appendHistory(ctx, memory.ID, "", fact, entities.HistoryEventAdd)

		result.Results = append(result.Results, AddResultItem{
			ID:     memory.ID,
			Memory: fact,
			Event:  entities.HistoryEventAdd,
		})
	}

	if s.ingestor != nil && len(facts) > 0 {
		result.Relations = s.ingestGraph(ctx, facts, req.Filters)
	}

	return result, nil
}

// ingestGraph extracts triples from the stored facts and feeds them to
// the graph ingestion entry point. Graph ingestion is an enhancement: any
// failure is logged and swallowed so the memory write itself succeeds.
func (s *MemoryService) ingestGraph(ctx context.Context, facts []string, filters ports.Filters) []entities.Relation {
	relations, err := s.extractor.ExtractRelations(ctx, facts)
	if err != nil {
		s.logger.Warn("relation extraction failed, skipping graph ingestion", zap.Error(err))
		return nil
	}
	if len(relations) == 0 {
		return nil
	}

	items := make([]any, 0, len(relations))
	for _, rel := range relations {
		items = append(items, map[string]any{
			"source":       rel.Source,
			"relationship": rel.Relationship,
			"target":       rel.Target,
		})
	}
	payload := map[string]any{"entities": items}

	if _, err := s.ingestor.Add(ctx, payload, filters.AsMap()); err != nil {
		s.logger.Warn("graph ingestion failed", zap.Error(err))
		return nil
	}

	return relations
}

// Search embeds the query and runs a similarity search over the caller's
// memories. When a graph store is wired, the caller's stored relations
// are fetched alongside; graph failures are logged but do not fail the
// vector search.
func (s *MemoryService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	embedding, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, apperrors.NewExternalError("embedder", err)
	}

	memories, err := s.vectors.Search(ctx, embedding, req.Filters, limit, req.Threshold)
	if err != nil {
		return nil, apperrors.NewDatabaseError("search memories", err)
	}

	result := &SearchResult{Results: memories}
	if s.querier != nil {
		result.Relations = s.queryGraph(ctx, req.Filters)
	}
	return result, nil
}

// subgraphCypher fetches the caller's stored triples. Like every raw
// statement it reaches Neo4j through the sanitized query entry point.
const subgraphCypher = `
	MATCH (s:Entity {scope: $scope})-[r]->(t:Entity {scope: $scope})
	RETURN s.name AS source, type(r) AS relationship, t.name AS target
	LIMIT 100`

// queryGraph returns the caller's subgraph as relation triples. Graph
// search is an enhancement: any failure is logged and swallowed.
func (s *MemoryService) queryGraph(ctx context.Context, f ports.Filters) []entities.Relation {
	records, err := s.querier.Query(ctx, subgraphCypher, map[string]any{
		"scope": ports.GraphScope(f.AsMap()),
	})
	if err != nil {
		s.logger.Warn("graph search failed, returning vector results only", zap.Error(err))
		return nil
	}

	rows, ok := records.([]map[string]any)
	if !ok {
		return nil
	}
	relations := make([]entities.Relation, 0, len(rows))
	for _, row := range rows {
		source, _ := row["source"].(string)
		rel, _ := row["relationship"].(string)
		target, _ := row["target"].(string)
		if source == "" || rel == "" || target == "" {
			continue
		}
		relations = append(relations, entities.Relation{
			Source:       source,
			Relationship: rel,
			Target:       target,
		})
	}
	if len(relations) == 0 {
		return nil
	}
	return relations
}

// Get retrieves a single memory by ID.
func (s *MemoryService) Get(ctx context.Context, id string) (*entities.Memory, error) {
	memory, err := s.vectors.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "get memory")
	}
	return memory, nil
}

// GetAll lists all memories matching the given identifiers.
func (s *MemoryService) GetAll(ctx context.Context, f ports.Filters) ([]*entities.Memory, error) {
	if !f.Any() {
		return nil, apperrors.NewValidationError("at least one identifier is required")
	}
	memories, err := s.vectors.List(ctx, f)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list memories", err)
	}
	return memories, nil
}

// Update replaces the content of an existing memory and records the
// change in the history log.
func (s *MemoryService) Update(ctx context.Context, id, content string) (*entities.Memory, error) {
	if content == "" {
		return nil, apperrors.NewValidationError("memory content is required")
	}

	existing, err := s.vectors.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, apperrors.NewExternalError("embedder", err)
	}

	if err := s.vectors.Update(ctx, id, content, embedding); err != nil {
		return nil, apperrors.NewDatabaseError("update memory", err)
	}

	s.appendHistory(ctx, id, existing.Content, content, entities.HistoryEventUpdate)

	return s.vectors.Get(ctx, id)
}

// Delete removes a single memory and records the deletion.
func (s *MemoryService) Delete(ctx context.Context, id string) error {
	existing, err := s.vectors.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.vectors.Delete(ctx, id); err != nil {
		return apperrors.NewDatabaseError("delete memory", err)
	}

	s.appendHistory(ctx, id, existing.Content, "", entities.HistoryEventDelete)
	return nil
}

// DeleteAll removes every memory matching the identifiers, including the
// caller's graph data when a graph store is wired.
func (s *MemoryService) DeleteAll(ctx context.Context, f ports.Filters) error {
	if !f.Any() {
		return apperrors.NewValidationError("at least one identifier is required")
	}

	if err := s.vectors.DeleteAll(ctx, f); err != nil {
		return apperrors.NewDatabaseError("delete memories", err)
	}

	if s.graphs != nil {
		if err := s.graphs.DeleteAll(ctx, f.AsMap()); err != nil {
			s.logger.Warn("graph delete failed", zap.Error(err))
		}
	}
	return nil
}

// History returns the change log of a memory.
func (s *MemoryService) History(ctx context.Context, memoryID string) ([]*entities.HistoryEntry, error) {
	entries, err := s.history.ByMemoryID(ctx, memoryID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("memory history", err)
	}
	return entries, nil
}

// Reset wipes every store.
func (s *MemoryService) Reset(ctx context.Context) error {
	if err := s.vectors.Reset(ctx); err != nil {
		return apperrors.NewDatabaseError("reset vector store", err)
	}
	if err := s.history.Reset(ctx); err != nil {
		return apperrors.NewDatabaseError("reset history store", err)
	}
	if s.graphs != nil {
		if err := s.graphs.Reset(ctx); err != nil {
			s.logger.Warn("graph reset failed", zap.Error(err))
		}
	}
	return nil
}

func (s *MemoryService) buildMetadata(req AddRequest) map[string]any {
	if req.Metadata == nil && req.MemoryType == "" {
		return nil
	}
	metadata := make(map[string]any, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.MemoryType != "" {
		metadata["memory_type"] = req.MemoryType
	}
	return metadata
}

// appendHistory logs a history entry; history failures are not allowed to
// fail the memory operation itself.
func (s *MemoryService) appendHistory(ctx context.Context, memoryID, previous, next, event string) {
	entry := &entities.HistoryEntry{
		ID:            uuid.New().String(),
		MemoryID:      memoryID,
		PreviousValue: previous,
		NewValue:      next,
		Event:         event,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append history entry",
			zap.String("memoryID", memoryID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
