// Package store persists benchmark-run results to a SQLite database:
// one row per run, recording its configuration and accuracy/timing
// outcome for cmd/nbodybench.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  INTEGER,
	nparts      INTEGER,
	max_leaf_n  INTEGER,
	ncrit       INTEGER,
	theta       REAL,
	eps         REAL,
	mac         TEXT,
	workers     INTEGER,
	build_ms    REAL,
	walk_ms     REAL,
	max_rel_err REAL,
	median_rel_err REAL
);
`

const insert = `
INSERT INTO runs (
	started_at, nparts, max_leaf_n, ncrit, theta, eps, mac, workers,
	build_ms, walk_ms, max_rel_err, median_rel_err
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

// Run records one benchmark invocation's configuration and outcome.
type Run struct {
	StartedAt    time.Time
	NParts       int
	MaxLeafN     uint
	Ncrit        uint
	Theta        float64
	Eps          float64
	Mac          string
	Workers      int
	BuildMs      float64
	WalkMs       float64
	MaxRelErr    float64
	MedianRelErr float64
}

// BenchStore is a thin wrapper around a SQLite-backed run history.
// Only one writer is useful at a time; SQLite serialises writers
// regardless.
type BenchStore struct {
	db *sql.DB
}

// Open creates (if necessary) and opens the run database at path.
func Open(path string) (*BenchStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &BenchStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BenchStore) Close() error { return s.db.Close() }

// Record inserts one benchmark run.
func (s *BenchStore) Record(r Run) error {
	_, err := s.db.Exec(insert,
		r.StartedAt.Unix(), r.NParts, r.MaxLeafN, r.Ncrit, r.Theta, r.Eps,
		r.Mac, r.Workers, r.BuildMs, r.WalkMs, r.MaxRelErr, r.MedianRelErr)
	if err != nil {
		return fmt.Errorf("store: record run: %w", err)
	}
	return nil
}

// RecentRuns returns the n most recently recorded runs, newest first.
func (s *BenchStore) RecentRuns(n int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT started_at, nparts, max_leaf_n, ncrit, theta, eps, mac,
		       workers, build_ms, walk_ms, max_rel_err, median_rel_err
		FROM runs ORDER BY id DESC LIMIT ?;`, n)
	if err != nil {
		return nil, fmt.Errorf("store: query recent runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var startedAt int64
		if err := rows.Scan(&startedAt, &r.NParts, &r.MaxLeafN, &r.Ncrit,
			&r.Theta, &r.Eps, &r.Mac, &r.Workers, &r.BuildMs, &r.WalkMs,
			&r.MaxRelErr, &r.MedianRelErr); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
