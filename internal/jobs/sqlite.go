package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clair-gutierrez/sitetack/internal/predict"
)

const schema = `CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    ptm TEXT,
    organism TEXT,
    label TEXT,
    state TEXT,
    message TEXT,
    records INTEGER,
    sites INTEGER,
    created_at TEXT,
    updated_at TEXT,
    result TEXT
)`

// SQLiteStore keeps jobs in a SQLite database through the pure Go driver.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create jobs schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, j Job) error {
	var result sql.NullString
	if j.Result != nil {
		b, err := json.Marshal(j.Result)
		if err != nil {
			return err
		}
		result = sql.NullString{String: string(b), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO jobs
        (id, ptm, organism, label, state, message, records, sites, created_at, updated_at, result)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            state = excluded.state,
            message = excluded.message,
            records = excluded.records,
            sites = excluded.sites,
            updated_at = excluded.updated_at,
            result = excluded.result`,
		j.ID, j.PTM, j.Organism, j.Label, string(j.State), j.Message, j.Records, j.Sites,
		j.CreatedAt.UTC().Format(time.RFC3339Nano), j.UpdatedAt.UTC().Format(time.RFC3339Nano), result)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner, withResult bool) (Job, error) {
	var (
		j                    Job
		state                string
		message              sql.NullString
		createdAt, updatedAt string
		result               sql.NullString
	)
	dest := []any{&j.ID, &j.PTM, &j.Organism, &j.Label, &state, &message, &j.Records, &j.Sites, &createdAt, &updatedAt}
	if withResult {
		dest = append(dest, &result)
	}
	if err := row.Scan(dest...); err != nil {
		return Job{}, err
	}
	j.State = State(state)
	j.Message = message.String
	var err error
	if j.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Job{}, fmt.Errorf("job %s created_at: %w", j.ID, err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Job{}, fmt.Errorf("job %s updated_at: %w", j.ID, err)
	}
	if result.Valid && result.String != "" {
		var res predict.SequencePredictions
		if err := json.Unmarshal([]byte(result.String), &res); err != nil {
			return Job{}, fmt.Errorf("job %s result: %w", j.ID, err)
		}
		j.Result = &res
	}
	return j, nil
}

const jobColumns = `id, ptm, organism, label, state, message, records, sites, created_at, updated_at`

func (s *SQLiteStore) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+`, result FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j, err
}

func (s *SQLiteStore) List(ctx context.Context) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	newestFirst(out)
	return out, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
