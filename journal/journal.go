// Package journal keeps a SQLite record of tool invocations: what ran, how
// it was classified, how long it took, and the statistics it reported.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded tool invocation.
type Entry struct {
	ID       string
	Time     time.Time
	Tool     string
	Args     []string
	Outcome  string
	ExitCode *int
	Elapsed  time.Duration
	Stats    map[string]float64
}

// Journal writes entries to a SQLite database at a fixed path.
type Journal struct {
	DBPath string
	db     *sql.DB
}

// Open opens or creates the journal database.
func Open(path string) (*Journal, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve journal db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal db dir: %w", err)
	}
	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	j := &Journal{DBPath: absPath, db: db}
	if err := j.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) ensureSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			ts DATETIME NOT NULL,
			tool TEXT NOT NULL,
			args_json TEXT NOT NULL,
			outcome TEXT NOT NULL,
			exit_code INTEGER,
			elapsed_ms INTEGER NOT NULL,
			stats_json TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Record inserts one entry. A zero ID and Time are filled in.
func (j *Journal) Record(e Entry) error {
	if j == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	argsJSON, err := json.Marshal(e.Args)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	stats := e.Stats
	if stats == nil {
		stats = map[string]float64{}
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	var exitCode any
	if e.ExitCode != nil {
		exitCode = *e.ExitCode
	}
	_, err = j.db.Exec(
		"INSERT INTO runs (id, ts, tool, args_json, outcome, exit_code, elapsed_ms, stats_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID,
		e.Time,
		e.Tool,
		string(argsJSON),
		e.Outcome,
		exitCode,
		e.Elapsed.Milliseconds(),
		string(statsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	rows, err := j.db.Query(
		"SELECT id, ts, tool, args_json, outcome, exit_code, elapsed_ms, stats_json FROM runs ORDER BY ts DESC, id LIMIT ?",
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var argsJSON, statsJSON string
		var exitCode sql.NullInt64
		var elapsedMS int64
		if err := rows.Scan(&e.ID, &e.Time, &e.Tool, &argsJSON, &e.Outcome, &exitCode, &elapsedMS, &statsJSON); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			e.ExitCode = &code
		}
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if err := json.Unmarshal([]byte(argsJSON), &e.Args); err != nil {
			return nil, fmt.Errorf("parse args json: %w", err)
		}
		if err := json.Unmarshal([]byte(statsJSON), &e.Stats); err != nil {
			return nil, fmt.Errorf("parse stats json: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
