// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of pipeline runs, one row per
// track per run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

const tableTracks = "run_tracks"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var trackColumns = []string{
	"id", "run_id", "track", "topic", "state", "run_success", "degraded",
	"uploaded", "location", "filename", "fatal_error", "warnings",
	"started_at", "finished_at",
}

// Entry is one ledger row.
type Entry struct {
	ID         string           `json:"id"`
	RunID      string           `json:"run_id"`
	Track      types.Track      `json:"track"`
	Topic      types.Topic      `json:"topic"`
	State      types.TrackState `json:"state"`
	RunSuccess bool             `json:"run_success"`
	Degraded   bool             `json:"degraded"`
	Uploaded   bool             `json:"uploaded"`
	Location   string           `json:"location,omitempty"`
	Filename   string           `json:"filename,omitempty"`
	FatalError string           `json:"fatal_error,omitempty"`
	Warnings   int              `json:"warnings"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS run_tracks (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			track TEXT NOT NULL,
			topic TEXT,
			state TEXT NOT NULL,
			run_success INTEGER NOT NULL,
			degraded INTEGER NOT NULL,
			uploaded INTEGER NOT NULL,
			location TEXT,
			filename TEXT,
			fatal_error TEXT,
			warnings INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_tracks_run_id ON run_tracks(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_run_tracks_started_at ON run_tracks(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one row per track of r in a single transaction.
func (s *Store) Record(ctx context.Context, r types.RunResult) error {
	if len(r.Tracks) == 0 {
		return nil
	}

	insert := sq.Insert(tableTracks).Columns(trackColumns...)
	for _, tr := range r.Tracks {
		filename := ""
		if tr.Artifact != nil {
			filename = tr.Artifact.Filename
		}
		insert = insert.Values(
			uuid.NewString(),
			r.RunID,
			string(tr.Track),
			string(tr.Topic),
			string(tr.State),
			r.Success,
			tr.Degraded,
			tr.Uploaded,
			tr.Location,
			filename,
			tr.FatalError,
			len(tr.Warnings),
			r.StartedAt.UTC().Format(timeLayout),
			r.FinishedAt.UTC().Format(timeLayout),
		)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("recording run %s: %w", r.RunID, err)
	}
	return tx.Commit()
}

// Recent returns up to limit rows, newest run first. Tracks of one run
// keep main before derived.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	q := sq.Select(trackColumns...).
		From(tableTracks).
		OrderBy("started_at DESC", "run_id", "track DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return s.query(ctx, q)
}

// Run returns the rows of one run.
func (s *Store) Run(ctx context.Context, runID string) ([]Entry, error) {
	q := sq.Select(trackColumns...).
		From(tableTracks).
		Where(sq.Eq{"run_id": runID}).
		OrderBy("track DESC")
	return s.query(ctx, q)
}

func (s *Store) query(ctx context.Context, q sq.SelectBuilder) ([]Entry, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                   Entry
			track, topic, state string
			started, finished   string
		)
		if err := rows.Scan(
			&e.ID, &e.RunID, &track, &topic, &state, &e.RunSuccess, &e.Degraded,
			&e.Uploaded, &e.Location, &e.Filename, &e.FatalError, &e.Warnings,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Track = types.Track(track)
		e.Topic = types.Topic(topic)
		e.State = types.TrackState(state)
		e.StartedAt, _ = time.Parse(timeLayout, started)
		e.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

// FormatTable writes entries as a human-readable table to w.
func FormatTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-8s  %-7s  %-8s  %-40s  %s\n",
		"Started", "Run", "Track", "Result", "Topic", "State")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range entries {
		result := "failed"
		if e.RunSuccess {
			result = "success"
		}
		state := string(e.State)
		if e.Degraded {
			state += " (degraded)"
		}
		if !e.Uploaded && e.State == types.StateDone {
			state += " (not uploaded)"
		}
		fmt.Fprintf(w, "%-16s  %-8s  %-7s  %-8s  %-40s  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			shortID(e.RunID),
			e.Track,
			result,
			truncate(string(e.Topic), 40),
			state,
		)
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
