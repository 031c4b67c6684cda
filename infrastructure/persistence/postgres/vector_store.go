// Package postgres implements the vector store on Postgres with the
// pgvector extension.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	apperrors "recall-backend/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// VectorStore persists memories and their embeddings in a pgvector table.
type VectorStore struct {
	pool   *pgxpool.Pool
	table  string
	dims   int
	logger *zap.Logger
}

// NewVectorStore creates the store and bootstraps its schema.
func NewVectorStore(ctx context.Context, pool *pgxpool.Pool, table string, dims int, logger *zap.Logger) (*VectorStore, error) {
	s := &VectorStore{
		pool:   pool,
		table:  sanitizeIdentifier(table),
		dims:   dims,
		logger: logger,
	}
	if err := s.createSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to create vector store schema: %w", err)
	}
	return s, nil
}

func (s *VectorStore) createSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			user_id TEXT,
			agent_id TEXT,
			run_id TEXT,
			metadata JSONB,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`, s.table, s.dims)
	_, err := s.pool.Exec(ctx, stmt)
	return err
}

// Insert stores a memory with its embedding.
func (s *VectorStore) Insert(ctx context.Context, memory *entities.Memory, embedding []float32) error {
	metadata, err := marshalMetadata(memory.Metadata)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, user_id, agent_id, run_id, metadata, embedding, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)`, s.table)
	_, err = s.pool.Exec(ctx, stmt,
		memory.ID, memory.Content, memory.UserID, memory.AgentID, memory.RunID,
		metadata, vectorLiteral(embedding), memory.CreatedAt,
	)
	return err
}

// Search returns the memories closest to the given embedding, scored by
// cosine similarity, optionally cut off below a threshold.
func (s *VectorStore) Search(ctx context.Context, embedding []float32, f ports.Filters, limit int, threshold *float64) ([]*entities.Memory, error) {
	where, args := filterClause(f, 2)
	stmt := fmt.Sprintf(`
		SELECT id, content, COALESCE(user_id, ''), COALESCE(agent_id, ''), COALESCE(run_id, ''),
		       metadata, created_at, updated_at,
		       1 - (embedding <=> $1) AS score
		FROM %s
		%s
		ORDER BY embedding <=> $1
		LIMIT %d`, s.table, where, limit)

	queryArgs := append([]any{vectorLiteral(embedding)}, args...)
	rows, err := s.pool.Query(ctx, stmt, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memories := []*entities.Memory{}
	for rows.Next() {
		memory, score, err := scanMemoryWithScore(rows)
		if err != nil {
			return nil, err
		}
		if threshold != nil && score < *threshold {
			continue
		}
		memory.Score = &score
		memories = append(memories, memory)
	}
	return memories, rows.Err()
}

// Get retrieves a single memory by ID.
func (s *VectorStore) Get(ctx context.Context, id string) (*entities.Memory, error) {
	stmt := fmt.Sprintf(`
		SELECT id, content, COALESCE(user_id, ''), COALESCE(agent_id, ''), COALESCE(run_id, ''),
		       metadata, created_at, updated_at
		FROM %s WHERE id = $1`, s.table)

	memory, err := scanMemory(s.pool.QueryRow(ctx, stmt, id))
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFoundError("memory")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get memory", err)
	}
	return memory, nil
}

// List returns all memories matching the filters, newest first.
func (s *VectorStore) List(ctx context.Context, f ports.Filters) ([]*entities.Memory, error) {
	where, args := filterClause(f, 1)
	stmt := fmt.Sprintf(`
		SELECT id, content, COALESCE(user_id, ''), COALESCE(agent_id, ''), COALESCE(run_id, ''),
		       metadata, created_at, updated_at
		FROM %s
		%s
		ORDER BY created_at DESC`, s.table, where)

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memories := []*entities.Memory{}
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}
	return memories, rows.Err()
}

// Update replaces a memory's content and embedding.
func (s *VectorStore) Update(ctx context.Context, id, content string, embedding []float32) error {
	stmt := fmt.Sprintf(`
		UPDATE %s SET content = $2, embedding = $3, updated_at = $4 WHERE id = $1`, s.table)
	tag, err := s.pool.Exec(ctx, stmt, id, content, vectorLiteral(embedding), time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("memory")
	}
	return nil
}

// Delete removes a memory.
func (s *VectorStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("memory")
	}
	return nil
}

// DeleteAll removes every memory matching the filters.
func (s *VectorStore) DeleteAll(ctx context.Context, f ports.Filters) error {
	where, args := filterClause(f, 1)
	if where == "" {
		return apperrors.NewValidationError("refusing to delete without filters")
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s %s`, s.table, where), args...)
	return err
}

// Reset drops all stored memories.
func (s *VectorStore) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`TRUNCATE %s`, s.table))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*entities.Memory, error) {
	var (
		memory   entities.Memory
		metadata []byte
	)
	err := row.Scan(&memory.ID, &memory.Content, &memory.UserID, &memory.AgentID, &memory.RunID,
		&metadata, &memory.CreatedAt, &memory.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalMetadata(metadata, &memory); err != nil {
		return nil, err
	}
	return &memory, nil
}

func scanMemoryWithScore(row rowScanner) (*entities.Memory, float64, error) {
	var (
		memory   entities.Memory
		metadata []byte
		score    float64
	)
	err := row.Scan(&memory.ID, &memory.Content, &memory.UserID, &memory.AgentID, &memory.RunID,
		&metadata, &memory.CreatedAt, &memory.UpdatedAt, &score)
	if err != nil {
		return nil, 0, err
	}
	if err := unmarshalMetadata(metadata, &memory); err != nil {
		return nil, 0, err
	}
	return &memory, score, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	return json.Marshal(metadata)
}

func unmarshalMetadata(raw []byte, memory *entities.Memory) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &memory.Metadata)
}

// filterClause builds a WHERE clause for the non-empty identifiers,
// numbering placeholders from startIdx.
func filterClause(f ports.Filters, startIdx int) (string, []any) {
	conditions := []string{}
	args := []any{}
	idx := startIdx

	add := func(column, value string) {
		if value == "" {
			return
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	add("user_id", f.UserID)
	add("agent_id", f.AgentID)
	add("run_id", f.RunID)

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// vectorLiteral renders an embedding in pgvector's input syntax.
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// sanitizeIdentifier keeps table names to a safe identifier charset since
// they are interpolated into DDL.
func sanitizeIdentifier(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
	if cleaned == "" {
		return "memories"
	}
	return cleaned
}
