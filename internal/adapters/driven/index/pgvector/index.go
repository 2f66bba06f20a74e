// Package pgvector provides a driven.Index backed by Postgres with the
// pgvector extension. Text is embedded by the configured EmbeddingService
// and ranked by cosine distance.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

// DefaultTable is used when no table name is configured.
const DefaultTable = "filing_chunks"

var tablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Config holds configuration for the pgvector index.
type Config struct {
	// DSN is the Postgres connection string (required).
	DSN string

	// Table is the chunk table name (default: filing_chunks).
	Table string

	// SkipSchema disables CREATE EXTENSION / TABLE on startup.
	SkipSchema bool
}

// Index is a Postgres nearest-neighbour chunk index.
type Index struct {
	pool     *pgxpool.Pool
	embedder driven.EmbeddingService
	table    string
}

// New connects to Postgres and ensures the chunk table exists.
func New(ctx context.Context, cfg Config, embedder driven.EmbeddingService) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("pgvector: %w", domain.ErrEmbeddingUnavailable)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pgvector: dsn is required: %w", domain.ErrInvalidConfig)
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("pgvector: table name %q: %w", table, domain.ErrInvalidConfig)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgvector: dsn: %w: %w", domain.ErrInvalidConfig, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector: ping: %w", err)
	}

	x := &Index{pool: pool, embedder: embedder, table: table}
	if !cfg.SkipSchema {
		if err := x.ensureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	logger.Debug("pgvector index ready: table=%s dims=%d", table, embedder.Dimensions())
	return x, nil
}

// schemaStatements returns the DDL for a table of the given dimension.
func schemaStatements(table string, dims int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			text       TEXT NOT NULL,
			metadata   JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding  vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table, dims),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_metadata_idx ON %s USING GIN (metadata)`, table, table),
	}
}

func (x *Index) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(x.table, x.embedder.Dimensions()) {
		if _, err := x.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgvector: schema: %w", err)
		}
	}
	return nil
}

// Upsert embeds text and writes the chunk, replacing any chunk with the same ID.
func (x *Index) Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error {
	if chunkID == "" {
		return domain.ErrInvalidInput
	}
	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("pgvector: embed %s: %w", chunkID, err)
	}
	metaJSON, err := metadataJSON(metadata)
	if err != nil {
		return err
	}

	_, err = x.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, text, metadata, embedding, updated_at)
		VALUES ($1, $2, $3::jsonb, $4::vector, now())
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`, x.table),
		chunkID, text, metaJSON, formatVector(vec))
	if err != nil {
		return fmt.Errorf("pgvector: upsert %s: %w", chunkID, err)
	}
	return nil
}

// Query embeds text and returns the nearest chunks whose metadata contains filter.
func (x *Index) Query(ctx context.Context, text string, topK int, filter map[string]string) ([]driven.IndexMatch, error) {
	if topK <= 0 || strings.TrimSpace(text) == "" {
		return []driven.IndexMatch{}, nil
	}
	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("pgvector: embed query: %w", err)
	}
	filterJSON, err := metadataJSON(filter)
	if err != nil {
		return nil, err
	}

	rows, err := x.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, text, metadata, embedding <=> $1::vector AS distance
		FROM %s
		WHERE metadata @> $2::jsonb
		ORDER BY embedding <=> $1::vector, id
		LIMIT $3`, x.table),
		formatVector(vec), filterJSON, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: query: %w", err)
	}
	defer rows.Close()

	matches := make([]driven.IndexMatch, 0, topK)
	for rows.Next() {
		var (
			m        driven.IndexMatch
			metaRaw  []byte
			distance float64
		)
		if err := rows.Scan(&m.ChunkID, &m.Text, &metaRaw, &distance); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		if err := json.Unmarshal(metaRaw, &m.Metadata); err != nil {
			return nil, fmt.Errorf("pgvector: metadata of %s: %w", m.ChunkID, err)
		}
		m.Score = similarity(distance)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: rows: %w", err)
	}
	return matches, nil
}

// Close releases the connection pool.
func (x *Index) Close() error {
	x.pool.Close()
	return nil
}

// formatVector renders an embedding in pgvector's text input format.
func formatVector(vec []float32) string {
	if len(vec) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.Grow(len(vec) * 10)
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// similarity maps cosine distance in [0,2] to a score in [0,1].
func similarity(distance float64) float64 {
	return domain.ClampConfidence(1 - distance/2)
}

func metadataJSON(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("pgvector: marshal metadata: %w", err)
	}
	return string(b), nil
}
