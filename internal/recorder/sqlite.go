package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists coverage history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read history while cycles are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS coverage_cycles (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id        TEXT NOT NULL UNIQUE,
			timestamp       INTEGER NOT NULL,
			protocols       INTEGER,
			pools           INTEGER,
			adapter_slugs   INTEGER,
			covered         INTEGER,
			total           INTEGER,
			pools_tvl       REAL,
			pools_count     INTEGER,
			pools_over_1m   INTEGER,
			unique_projects INTEGER,
			degraded        INTEGER,
			truncated       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON coverage_cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fetch_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON fetch_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := rec.Stats
	_, err := r.db.Exec(`INSERT INTO coverage_cycles
		(cycle_id, timestamp, protocols, pools, adapter_slugs,
		 covered, total, pools_tvl, pools_count, pools_over_1m, unique_projects,
		 degraded, truncated)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.CycleID, rec.FetchedAt.Unix(), rec.Protocols, rec.Pools, rec.AdapterSlugs,
		st.Covered, st.Total, st.PoolsTVL, st.PoolsCount, st.PoolsOver1M, st.UniqueProjects,
		rec.Degraded, rec.Truncated,
	)
	return err
}

func (r *SQLiteRecorder) RecordFailure(rec *FailureRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO fetch_failures (timestamp, source, error) VALUES (?,?,?)`,
		at.Unix(), rec.Source, rec.Error,
	)
	return err
}

// RecentCycles returns up to limit cycles, newest first.
func (r *SQLiteRecorder) RecentCycles(limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT cycle_id, timestamp, protocols, pools, adapter_slugs,
		covered, total, pools_tvl, pools_count, pools_over_1m, unique_projects, degraded, truncated
		FROM coverage_cycles ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var (
			rec CycleRecord
			ts  int64
		)
		if err := rows.Scan(&rec.CycleID, &ts, &rec.Protocols, &rec.Pools, &rec.AdapterSlugs,
			&rec.Stats.Covered, &rec.Stats.Total, &rec.Stats.PoolsTVL, &rec.Stats.PoolsCount,
			&rec.Stats.PoolsOver1M, &rec.Stats.UniqueProjects, &rec.Degraded, &rec.Truncated); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		rec.FetchedAt = time.Unix(ts, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
