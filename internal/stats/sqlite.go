package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records into a single table keyed by run.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the schema. It is safe to call twice.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", s.path)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "ping %s", s.path)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, st Stats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "encode stats")
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO plan_stats (run_id, current_tick, robot_id, score, payload)
		VALUES (?, ?, ?, ?, ?)
	`, st.RunID, st.CurrentTick, st.RobotID, st.Score, payload)
	return errors.Wrap(err, "insert stats")
}

// List returns up to limit most recent records of runID, oldest first.
func (s *SQLiteStore) List(ctx context.Context, runID string, limit int) ([]Stats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM (
			SELECT id, payload FROM plan_stats
			WHERE ? = '' OR run_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, runID, runID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query stats")
	}
	defer rows.Close()

	var out []Stats
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(err, "scan stats")
		}
		var st Stats
		if err := json.Unmarshal(payload, &st); err != nil {
			return nil, errors.Wrap(err, "decode stats")
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate stats")
	}
	if runID != "" && len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *SQLiteStore) Runs(ctx context.Context) ([]RunSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, COUNT(*), AVG(score), MAX(current_tick)
		FROM plan_stats
		GROUP BY run_id
		ORDER BY run_id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Count, &r.MeanScore, &r.LastTick); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate runs")
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS plan_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			current_tick INTEGER NOT NULL,
			robot_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS plan_stats_run ON plan_stats (run_id, id)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}
