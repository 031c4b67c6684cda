// Package neo4jstore implements the graph store on the Neo4j bolt driver.
//
// Relationship types are interpolated into Cypher (Neo4j has no parameter
// slot for them), which is exactly why payloads must pass through the
// sanitizing decorator before reaching this store: a label such as
// "lives:in:city" would otherwise produce invalid Cypher on Neo4j 5.x.
package neo4jstore

import (
	"context"
	"fmt"

	"recall-backend/application/ports"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// GraphStore writes entity/relationship triples to Neo4j.
type GraphStore struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewGraphStore connects to Neo4j and verifies the connection.
func NewGraphStore(ctx context.Context, uri, username, password string, logger *zap.Logger) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable: %w", err)
	}
	return &GraphStore{driver: driver, logger: logger}, nil
}

// Close releases the underlying driver.
func (s *GraphStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Add persists the triples found in the payload. The payload carries an
// "entities" sequence of {source, relationship, target} mappings; entries
// of any other shape are skipped. Returns the number of written triples.
func (s *GraphStore) Add(ctx context.Context, data any, filters map[string]any) (any, error) {
	triples := extractTriples(data)
	if len(triples) == 0 {
		return map[string]any{"added": 0}, nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	added := 0
	for _, t := range triples {
		stmt := fmt.Sprintf(`
			MERGE (s:Entity {name: $source, scope: $scope})
			MERGE (t:Entity {name: $target, scope: $scope})
			MERGE (s)-[r:%s]->(t)
			RETURN type(r)`, t.relationship)

		params := map[string]any{
			"source": t.source,
			"target": t.target,
			"scope":  ports.GraphScope(filters),
		}
		if _, err := session.Run(ctx, stmt, params); err != nil {
			return nil, fmt.Errorf("failed to merge triple: %w", err)
		}
		added++
	}

	s.logger.Debug("graph triples written", zap.Int("count", added))
	return map[string]any{"added": added}, nil
}

// Query runs a raw Cypher statement and returns the collected records as
// a slice of field maps.
func (s *GraphStore) Query(ctx context.Context, cypher string, params map[string]any) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	records := []map[string]any{}
	for result.Next(ctx) {
		records = append(records, result.Record().AsMap())
	}
	return records, result.Err()
}

// DeleteAll removes the caller's subgraph.
func (s *GraphStore) DeleteAll(ctx context.Context, filters map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (n:Entity {scope: $scope}) DETACH DELETE n`,
		map[string]any{"scope": ports.GraphScope(filters)},
	)
	return err
}

// Reset removes every entity node.
func (s *GraphStore) Reset(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `MATCH (n:Entity) DETACH DELETE n`, nil)
	return err
}

type triple struct {
	source       string
	relationship string
	target       string
}

// extractTriples pulls well-formed triples out of the ingestion payload.
func extractTriples(data any) []triple {
	payload, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	items, ok := payload["entities"].([]any)
	if !ok {
		return nil
	}

	triples := make([]triple, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		source, _ := entry["source"].(string)
		rel, _ := entry["relationship"].(string)
		target, _ := entry["target"].(string)
		if source == "" || rel == "" || target == "" {
			continue
		}
		triples = append(triples, triple{source: source, relationship: rel, target: target})
	}
	return triples
}

