// Package knowledge implements the persistent knowledge base for Docent.
//
// It uses SQLite to store knowledge chunks keyed by section ID, together
// with the human-readable descriptions that make up the directory summary.
// There is no full-text or semantic index — retrieval is always by explicit
// section ID, chosen by the gatekeeper from the directory summary.
package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrSectionNotFound is returned by Resolve when a section ID has no
// stored chunk. Callers must treat this as fatal for the delegation that
// requested the section — never as "skip and continue".
var ErrSectionNotFound = errors.New("knowledge: section not found")

// Section is one knowledge chunk plus its directory metadata.
type Section struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// SectionInfo is the lean directory view of a section: ID and description
// only. This is the only shape the gatekeeper ever sees — no content, no
// file paths.
type SectionInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Config holds knowledge store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default configuration for the knowledge store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".docent"),
	}
}

// Store is the knowledge base backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a new Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("knowledge: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "knowledge.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("knowledge: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("knowledge: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("knowledge: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sections (
			section_id  TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			content     TEXT NOT NULL,
			source      TEXT NOT NULL,
			position    INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_sections_source   ON sections(source);
		CREATE INDEX IF NOT EXISTS idx_sections_position ON sections(source, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertSections replaces all sections from the given source with the
// supplied set, in one transaction. Reloading a document therefore never
// leaves stale sections from an earlier parse behind.
func (s *Store) UpsertSections(ctx context.Context, source string, sections []Section) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("knowledge: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE source = ?`, source); err != nil {
		return fmt.Errorf("knowledge: clear source %q: %w", source, err)
	}

	for _, sec := range sections {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sections (section_id, description, content, source, position)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(section_id) DO UPDATE SET
				description = excluded.description,
				content     = excluded.content,
				source      = excluded.source,
				position    = excluded.position,
				updated_at  = datetime('now')
		`, sec.ID, sec.Description, sec.Content, source, sec.Position)
		if err != nil {
			return fmt.Errorf("knowledge: upsert section %q: %w", sec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("knowledge: commit: %w", err)
	}
	return nil
}

// Summary returns the lean directory view: every section's ID and
// description, ordered by source and position so multi-section prompts
// are reproducible run to run.
func (s *Store) Summary(ctx context.Context) ([]SectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT section_id, description
		FROM sections
		ORDER BY source, position
	`)
	if err != nil {
		return nil, fmt.Errorf("knowledge: summary query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []SectionInfo
	for rows.Next() {
		var info SectionInfo
		if err := rows.Scan(&info.ID, &info.Description); err != nil {
			return nil, fmt.Errorf("knowledge: scan summary row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: summary rows: %w", err)
	}
	return infos, nil
}

// Resolve returns the full chunk text for a section ID, or
// ErrSectionNotFound if the section does not exist.
func (s *Store) Resolve(ctx context.Context, sectionID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM sections WHERE section_id = ?`, sectionID,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
	}
	if err != nil {
		return "", fmt.Errorf("knowledge: resolve %q: %w", sectionID, err)
	}
	return content, nil
}

// Get returns a full section record by ID, or ErrSectionNotFound.
func (s *Store) Get(ctx context.Context, sectionID string) (*Section, error) {
	var sec Section
	err := s.db.QueryRowContext(ctx, `
		SELECT section_id, description, content, source, position, created_at, updated_at
		FROM sections WHERE section_id = ?
	`, sectionID).Scan(
		&sec.ID, &sec.Description, &sec.Content,
		&sec.Source, &sec.Position, &sec.CreatedAt, &sec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
	}
	if err != nil {
		return nil, fmt.Errorf("knowledge: get %q: %w", sectionID, err)
	}
	return &sec, nil
}

// Count returns the number of sections in the knowledge base.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("knowledge: count: %w", err)
	}
	return n, nil
}

// Sources returns the distinct source names of all loaded documents.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source FROM sections ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("knowledge: sources query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("knowledge: scan source row: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: source rows: %w", err)
	}
	return sources, nil
}

// DeleteSource removes all sections loaded from a source document.
// Returns the number of sections removed.
func (s *Store) DeleteSource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sections WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("knowledge: delete source %q: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("knowledge: rows affected: %w", err)
	}
	return int(n), nil
}
