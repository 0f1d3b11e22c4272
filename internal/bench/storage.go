package bench

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage persists and retrieves Runs. Grounded on the teacher's
// SQLiteStorage: one table, a single INSERT per save, durations flattened
// to a JSON array column rather than a child table, since a Run's
// per-iteration durations have no identity of their own worth a
// foreign-keyed row each.
type Storage struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("bench: open database: %w", err)
	}
	s := &Storage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) init() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		workers INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		durations_ns TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("bench: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error { return s.db.Close() }

// Save persists run and sets its ID to the assigned row id.
func (s *Storage) Save(run *Run) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	nanos := make([]int64, len(run.Durations))
	for i, d := range run.Durations {
		nanos[i] = d.Nanoseconds()
	}
	encoded, err := json.Marshal(nanos)
	if err != nil {
		return fmt.Errorf("bench: marshal durations: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO runs (scenario, workers, iterations, durations_ns, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, run.Scenario, run.Workers, run.Iterations, string(encoded), run.Timestamp)
	if err != nil {
		return fmt.Errorf("bench: insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("bench: get run id: %w", err)
	}
	run.ID = id
	return nil
}

// Load retrieves a Run by its id.
func (s *Storage) Load(id int64) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, scenario, workers, iterations, durations_ns, timestamp
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// History retrieves every saved Run for scenario, oldest first.
func (s *Storage) History(scenario string) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, scenario, workers, iterations, durations_ns, timestamp
		FROM runs WHERE scenario = ?
		ORDER BY timestamp ASC
	`, scenario)
	if err != nil {
		return nil, fmt.Errorf("bench: query history: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run       Run
			encoded   string
			timestamp time.Time
		)
		if err := rows.Scan(&run.ID, &run.Scenario, &run.Workers, &run.Iterations, &encoded, &timestamp); err != nil {
			return nil, fmt.Errorf("bench: scan run: %w", err)
		}
		run.Timestamp = timestamp

		var nanos []int64
		if err := json.Unmarshal([]byte(encoded), &nanos); err != nil {
			return nil, fmt.Errorf("bench: unmarshal durations: %w", err)
		}
		run.Durations = make([]time.Duration, len(nanos))
		for i, n := range nanos {
			run.Durations[i] = time.Duration(n)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bench: iterate history: %w", err)
	}
	return runs, nil
}

// Latest retrieves the most recently saved Run for scenario.
func (s *Storage) Latest(scenario string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, scenario, workers, iterations, durations_ns, timestamp
		FROM runs WHERE scenario = ?
		ORDER BY timestamp DESC LIMIT 1
	`, scenario)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*Run, error) {
	var (
		run       Run
		encoded   string
		timestamp time.Time
	)
	if err := row.Scan(&run.ID, &run.Scenario, &run.Workers, &run.Iterations, &encoded, &timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("bench: scan run: %w", err)
	}
	run.Timestamp = timestamp

	var nanos []int64
	if err := json.Unmarshal([]byte(encoded), &nanos); err != nil {
		return nil, fmt.Errorf("bench: unmarshal durations: %w", err)
	}
	run.Durations = make([]time.Duration, len(nanos))
	for i, n := range nanos {
		run.Durations[i] = time.Duration(n)
	}
	return &run, nil
}
