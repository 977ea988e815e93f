// Package history persists finished reports so past analyses can be
// listed and re-fetched. Storage is optional; the pipeline works fully
// in-memory when no path is configured.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veracitylab/veracity/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a report id has no stored entry
var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	analyzed_at TEXT NOT NULL,
	score       INTEGER NOT NULL,
	verdict     TEXT NOT NULL,
	degraded    INTEGER NOT NULL,
	body        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_analyzed_at ON reports(analyzed_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url);
`

// Store is a SQLite-backed report archive
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one finished report
func (s *Store) Save(ctx context.Context, report *model.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	degraded := 0
	if report.Degraded {
		degraded = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (id, url, analyzed_at, score, verdict, degraded, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.URL,
		report.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		report.VeracityScore,
		string(report.Verdict),
		degraded,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Entry is one row of the history listing
type Entry struct {
	ID         string        `json:"id"`
	URL        string        `json:"url"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Score      int           `json:"veracity_score"`
	Verdict    model.Verdict `json:"verdict"`
	Degraded   bool          `json:"degraded"`
}

// List returns the most recent entries, newest first
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, analyzed_at, score, verdict, degraded
		 FROM reports ORDER BY analyzed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var analyzedAt string
		var degraded int
		if err := rows.Scan(&e.ID, &e.URL, &analyzedAt, &e.Score, &e.Verdict, &degraded); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, analyzedAt); err == nil {
			e.AnalyzedAt = t
		}
		e.Degraded = degraded != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return entries, nil
}

// Get returns the full stored report for an id
func (s *Store) Get(ctx context.Context, id string) (*model.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("decode stored report: %w", err)
	}
	return &report, nil
}
