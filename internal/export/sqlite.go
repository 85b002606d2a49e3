package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hyperifyio/goleads/internal/lead"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	criteria TEXT NOT NULL,
	search_provider TEXT NOT NULL,
	llm_provider TEXT NOT NULL,
	model TEXT NOT NULL,
	lead_count INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS leads (
	run_id TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	website TEXT NOT NULL,
	insights TEXT NOT NULL,
	score TEXT NOT NULL,
	message TEXT NOT NULL,
	failure_kind TEXT,
	PRIMARY KEY (run_id, position)
);
`

// SQLite appends each run and its leads to a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Save writes the run row and one row per lead in a single transaction.
func (s *SQLite) Save(ctx context.Context, run Run, leads []lead.Lead) error {
	criteria, err := json.Marshal(run.Criteria)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, criteria, search_provider, llm_provider, model, lead_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(criteria), run.Search, run.Generator, run.Model, len(leads), run.GeneratedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, l := range leads {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (run_id, position, name, website, insights, score, message, failure_kind) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, l.Name, l.Website, l.Insights.String(), l.Score.String(), l.Message.String(), nullKind(l),
		)
		if err != nil {
			return fmt.Errorf("insert lead %q: %w", l.Name, err)
		}
	}
	return tx.Commit()
}

// StoredLead is one persisted lead row.
type StoredLead struct {
	RunID       string
	Name        string
	Website     string
	Insights    string
	Score       string
	Message     string
	FailureKind string
}

// Leads returns the leads stored for runID in their original order.
func (s *SQLite) Leads(ctx context.Context, runID string) ([]StoredLead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, website, insights, score, message, failure_kind FROM leads WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []StoredLead
	for rows.Next() {
		var sl StoredLead
		var kind sql.NullString
		if err := rows.Scan(&sl.RunID, &sl.Name, &sl.Website, &sl.Insights, &sl.Score, &sl.Message, &kind); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		sl.FailureKind = kind.String
		out = append(out, sl)
	}
	return out, rows.Err()
}

// nullKind records the first failure kind among the enrichment fields.
func nullKind(l lead.Lead) sql.NullString {
	for _, f := range []lead.Field{l.Insights, l.Score, l.Message} {
		if f.IsFailed() {
			return sql.NullString{String: string(f.Kind()), Valid: true}
		}
	}
	return sql.NullString{}
}
