// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists synthesized documents in SQLite and indexes their
// section prose for full-text search.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const (
	dbFile            = "synthesis.db"
	defaultDir        = "output/index"
	defaultMaxResults = 20
)

// ErrNotFound is returned when a run id is not in the store.
var ErrNotFound = errors.New("run not found")

// Store manages the run database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates the run database at cfg.Dir/synthesis.db and
// bootstraps its schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			generated_at TEXT NOT NULL,
			total_sources INTEGER,
			content_elements INTEGER,
			knowledge_gaps INTEGER,
			contradictions INTEGER,
			analysis_mode TEXT,
			coverage REAL,
			document TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_run_id ON sections(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE sections_fts USING fts5(name, content, content=sections, content_rowid=rowid)`,
		`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
			INSERT INTO sections_fts(rowid, name, content) VALUES (new.rowid, new.name, new.content);
		END`,
		`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
			INSERT INTO sections_fts(sections_fts, rowid, name, content) VALUES('delete', old.rowid, old.name, old.content);
		END`,
		`CREATE TRIGGER sections_au AFTER UPDATE ON sections BEGIN
			INSERT INTO sections_fts(sections_fts, rowid, name, content) VALUES('delete', old.rowid, old.name, old.content);
			INSERT INTO sections_fts(rowid, name, content) VALUES (new.rowid, new.name, new.content);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Save stores doc under its run id, replacing any earlier copy.
func (s *Store) Save(ctx context.Context, doc types.SynthesizedDocument) error {
	if doc.RunID == "" {
		return errors.New("document has no run id")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE run_id = ?`, doc.RunID); err != nil {
		return fmt.Errorf("deleting old sections: %w", err)
	}

	q := doc.Metadata.Quality
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, topic, status, error, generated_at, total_sources, content_elements,
			knowledge_gaps, contradictions, analysis_mode, coverage, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic, status=excluded.status, error=excluded.error,
			generated_at=excluded.generated_at, total_sources=excluded.total_sources,
			content_elements=excluded.content_elements, knowledge_gaps=excluded.knowledge_gaps,
			contradictions=excluded.contradictions, analysis_mode=excluded.analysis_mode,
			coverage=excluded.coverage, document=excluded.document`,
		doc.RunID, doc.Topic, string(doc.Status), doc.Error,
		doc.GeneratedAt.UTC().Format(time.RFC3339Nano),
		doc.Metadata.TotalSources, doc.Metadata.ContentElements,
		doc.Metadata.KnowledgeGaps, doc.Metadata.ContradictionsFound,
		string(q.AnalysisMode), q.Coverage, string(data),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (run_id, position, name, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range doc.Order {
		if _, err := stmt.ExecContext(ctx, doc.RunID, i, name, doc.Sections[name]); err != nil {
			return fmt.Errorf("inserting section %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Get returns the stored document for runID.
func (s *Store) Get(ctx context.Context, runID string) (types.SynthesizedDocument, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM runs WHERE id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.SynthesizedDocument{}, fmt.Errorf("%s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return types.SynthesizedDocument{}, fmt.Errorf("looking up run: %w", err)
	}

	var doc types.SynthesizedDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return types.SynthesizedDocument{}, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return doc, nil
}
