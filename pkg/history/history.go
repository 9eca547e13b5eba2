package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
)

// DefaultLimit is the number of entries List returns when limit is not positive
const DefaultLimit = 20

// Run statuses
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	template   TEXT NOT NULL,
	project    TEXT NOT NULL DEFAULT '',
	mode       TEXT NOT NULL,
	target     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	error_kind TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
)`

// Entry is one recorded run
type Entry struct {
	ID        int64
	Template  string
	Project   string
	Mode      string
	Target    string
	Status    string
	ErrorKind string
	CreatedAt time.Time
}

// Recorder records finished runs
type Recorder interface {
	Record(ctx context.Context, e Entry) (int64, error)
}

// Store is the sqlite backed run log
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens or creates the run log at path
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to create history directory").
				WithDetail("path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to open history database").
			WithDetail("path", path)
	}
	// a single connection keeps :memory: databases alive between calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to initialize history database").
			WithDetail("path", path)
	}

	return &Store{
		db:     db,
		logger: logging.GetLogger("history"),
		now:    time.Now,
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends e and returns its id. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (template, project, mode, target, status, error_kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Template, e.Project, e.Mode, e.Target, e.Status, e.ErrorKind, e.CreatedAt.UnixNano())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrInternal, "failed to record run").
			WithDetail("template", e.Template)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrInternal, "failed to read run id")
	}

	s.logger.Debug().
		Int64("id", id).
		Str("template", e.Template).
		Str("status", e.Status).
		Msg("Recorded run")
	return id, nil
}

// List returns up to limit entries, newest first
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template, project, mode, target, status, error_kind, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to query history")
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Template, &e.Project, &e.Mode, &e.Target, &e.Status, &e.ErrorKind, &created); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to read history row")
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to read history")
	}
	return entries, nil
}
