// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// ListOptions filters stored runs.
type ListOptions struct {
	// Topic matches runs whose topic contains the text, case-insensitively.
	Topic string

	// Status filters by document status.
	Status types.DocumentStatus

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID          string               `json:"run_id" yaml:"run_id"`
	Topic          string               `json:"topic" yaml:"topic"`
	Status         types.DocumentStatus `json:"status" yaml:"status"`
	Error          string               `json:"error,omitempty" yaml:"error,omitempty"`
	GeneratedAt    time.Time            `json:"generated_at" yaml:"generated_at"`
	Sections       int                  `json:"sections" yaml:"sections"`
	TotalSources   int                  `json:"total_sources" yaml:"total_sources"`
	Contradictions int                  `json:"contradictions" yaml:"contradictions"`
	Coverage       float64              `json:"coverage" yaml:"coverage"`
}

// List returns stored runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]RunSummary, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT r.id, r.topic, r.status, r.error, r.generated_at, r.total_sources,
			r.contradictions, r.coverage,
			(SELECT count(*) FROM sections sc WHERE sc.run_id = r.id)
		FROM runs r
		WHERE 1=1`)

	if opts.Topic != "" {
		qb.WriteString(` AND lower(r.topic) LIKE ?`)
		args = append(args, "%"+strings.ToLower(opts.Topic)+"%")
	}
	if opts.Status != "" {
		qb.WriteString(` AND r.status = ?`)
		args = append(args, string(opts.Status))
	}
	qb.WriteString(` ORDER BY r.generated_at DESC, r.id LIMIT ?`)
	args = append(args, s.limit(opts.MaxResults))

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs        RunSummary
			status    string
			errText   sql.NullString
			generated string
			sources   sql.NullInt64
			contra    sql.NullInt64
			coverage  sql.NullFloat64
		)
		if err := rows.Scan(&rs.RunID, &rs.Topic, &status, &errText, &generated,
			&sources, &contra, &coverage, &rs.Sections); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rs.Status = types.DocumentStatus(status)
		rs.Error = errText.String
		rs.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generated)
		rs.TotalSources = int(sources.Int64)
		rs.Contradictions = int(contra.Int64)
		rs.Coverage = coverage.Float64
		out = append(out, rs)
	}
	return out, rows.Err()
}

// SectionHit is a section matching a full-text query.
type SectionHit struct {
	RunID   string `json:"run_id" yaml:"run_id"`
	Topic   string `json:"topic" yaml:"topic"`
	Section string `json:"section" yaml:"section"`

	// Snippet is the matching passage with the hit terms in brackets.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 query over section names and prose, best match first.
func (s *Store) Search(ctx context.Context, query string, maxResults int) ([]SectionHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sc.run_id, r.topic, sc.name,
			snippet(sections_fts, 1, '[', ']', '...', 16)
		FROM sections_fts
		JOIN sections sc ON sc.rowid = sections_fts.rowid
		JOIN runs r ON r.id = sc.run_id
		WHERE sections_fts MATCH ?
		ORDER BY sections_fts.rank
		LIMIT ?`,
		query, s.limit(maxResults),
	)
	if err != nil {
		return nil, fmt.Errorf("searching sections: %w", err)
	}
	defer rows.Close()

	var out []SectionHit
	for rows.Next() {
		var h SectionHit
		if err := rows.Scan(&h.RunID, &h.Topic, &h.Section, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) limit(n int) int {
	if n <= 0 {
		return s.maxResults
	}
	return n
}
