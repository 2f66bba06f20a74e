package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/filings-cli/internal/adapters/driven/index/sqlite/migrations"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.Index         = (*Store)(nil)
	_ driven.FilingCatalog = (*Store)(nil)
)

// DatabaseFile is the file name created inside the data directory.
const DatabaseFile = "filings.db"

// columnFilters maps metadata keys to indexed columns. Other keys are
// matched against the JSON metadata column.
var columnFilters = map[string]string{
	domain.MetaCompany:      "c.company",
	domain.MetaFilingType:   "c.filing_type",
	domain.MetaFiscalPeriod: "c.fiscal_period",
	domain.MetaFiscalYear:   "c.fiscal_year",
	domain.MetaSectionTag:   "c.section_tag",
}

var (
	metadataKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	ftsTermPattern     = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// Store is a SQLite full-text chunk index and filing catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the index database in dataDir.
// If dataDir is empty, defaults to ~/.filings/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".filings", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Index ====================

// Upsert writes a chunk, replacing any chunk with the same ID.
func (s *Store) Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error {
	if chunkID == "" {
		return domain.ErrInvalidInput
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, text, company, filing_type, fiscal_period, fiscal_year, section_tag, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			company = excluded.company,
			filing_type = excluded.filing_type,
			fiscal_period = excluded.fiscal_period,
			fiscal_year = excluded.fiscal_year,
			section_tag = excluded.section_tag,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`,
		chunkID,
		text,
		metadata[domain.MetaCompany],
		metadata[domain.MetaFilingType],
		metadata[domain.MetaFiscalPeriod],
		metadata[domain.MetaFiscalYear],
		metadata[domain.MetaSectionTag],
		string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting chunk %s: %w", chunkID, err)
	}
	return nil
}

// Query runs a BM25 full-text search. Any query term may match; scores are
// BM25 relevance mapped onto [0,1).
func (s *Store) Query(ctx context.Context, text string, topK int, filter map[string]string) ([]driven.IndexMatch, error) {
	match := ftsQuery(text)
	if match == "" || topK <= 0 {
		return []driven.IndexMatch{}, nil
	}

	where := []string{"chunks_fts MATCH ?"}
	args := []any{match}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if col, ok := columnFilters[k]; ok {
			where = append(where, col+" = ?")
			args = append(args, filter[k])
			continue
		}
		if !metadataKeyPattern.MatchString(k) {
			return nil, fmt.Errorf("filter key %q: %w", k, domain.ErrInvalidInput)
		}
		where = append(where, "json_extract(c.metadata, '$."+k+"') = ?")
		args = append(args, filter[k])
	}
	args = append(args, topK)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.text, c.metadata, bm25(chunks_fts) AS relevance
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY relevance, c.id
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	matches := make([]driven.IndexMatch, 0, topK)
	for rows.Next() {
		var (
			m        driven.IndexMatch
			metaJSON string
			rank     float64
		)
		if err := rows.Scan(&m.ChunkID, &m.Text, &metaJSON, &rank); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata of %s: %w", m.ChunkID, err)
		}
		m.Score = normaliseRank(rank)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return matches, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// ftsQuery turns free text into an FTS5 expression of quoted terms joined
// by OR, so user punctuation can never be parsed as query syntax.
func ftsQuery(text string) string {
	terms := ftsTermPattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]bool, len(terms))
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// normaliseRank maps a BM25 rank (lower is better, usually negative) to [0,1).
func normaliseRank(rank float64) float64 {
	r := -rank
	if r <= 0 {
		return 0
	}
	return r / (1 + r)
}

// ==================== Filing Catalog ====================

// Record stores or replaces the catalog entry for a filing.
func (s *Store) Record(ctx context.Context, rec domain.FilingRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filings (filing_key, company, filing_type, fiscal_period, source_id, chunks, failed, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filing_key) DO UPDATE SET
			company = excluded.company,
			filing_type = excluded.filing_type,
			fiscal_period = excluded.fiscal_period,
			source_id = excluded.source_id,
			chunks = excluded.chunks,
			failed = excluded.failed,
			ingested_at = excluded.ingested_at
	`, rec.Key, rec.Company, rec.FilingType, rec.FiscalPeriod, rec.SourceID, rec.Chunks, rec.Failed,
		rec.IngestedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording filing %s: %w", rec.Key, err)
	}
	return nil
}

// List returns every catalog entry ordered by company, filing type then period.
func (s *Store) List(ctx context.Context) ([]domain.FilingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filing_key, company, filing_type, fiscal_period, source_id, chunks, failed, ingested_at
		FROM filings
		ORDER BY company, filing_type, fiscal_period, filing_key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing filings: %w", err)
	}
	defer rows.Close()

	records := make([]domain.FilingRecord, 0)
	for rows.Next() {
		var (
			rec        domain.FilingRecord
			ingestedAt string
		)
		if err := rows.Scan(&rec.Key, &rec.Company, &rec.FilingType, &rec.FiscalPeriod, &rec.SourceID,
			&rec.Chunks, &rec.Failed, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning filing: %w", err)
		}
		rec.IngestedAt, err = time.Parse(time.RFC3339, ingestedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing ingested_at of %s: %w", rec.Key, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating filings: %w", err)
	}
	return records, nil
}

// Get returns one catalog entry.
func (s *Store) Get(ctx context.Context, key string) (domain.FilingRecord, error) {
	var (
		rec        domain.FilingRecord
		ingestedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT filing_key, company, filing_type, fiscal_period, source_id, chunks, failed, ingested_at
		FROM filings WHERE filing_key = ?
	`, key).Scan(&rec.Key, &rec.Company, &rec.FilingType, &rec.FiscalPeriod, &rec.SourceID,
		&rec.Chunks, &rec.Failed, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FilingRecord{}, fmt.Errorf("filing %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return domain.FilingRecord{}, fmt.Errorf("getting filing %s: %w", key, err)
	}
	rec.IngestedAt, err = time.Parse(time.RFC3339, ingestedAt)
	if err != nil {
		return domain.FilingRecord{}, fmt.Errorf("parsing ingested_at of %s: %w", key, err)
	}
	return rec, nil
}
