package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    video_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    error_kind TEXT NOT NULL DEFAULT '',
    segment_count INTEGER NOT NULL DEFAULT 0,
    started_at DATETIME NOT NULL,
    finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
CREATE INDEX IF NOT EXISTS idx_requests_started_at ON requests(started_at);
`

// Recorder receives the state transitions of a request.
type Recorder interface {
	Begin(ctx context.Context, url string) (string, error)
	Finish(ctx context.Context, id string, result models.TranscriptResult) error
}

// Entry is one journaled request. No transcript text is stored.
type Entry struct {
	ID           string
	URL          string
	VideoID      string
	Status       models.Status
	ErrorKind    errors.Kind
	SegmentCount int
	StartedAt    time.Time
	FinishedAt   *time.Time
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the SQLite journal at path.
func Open(path string) (*Journal, error) {
	const op = "journal.Open"

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Internal(op, err, "failed to create journal directory")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to open journal")
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := execSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, now: time.Now}, nil
}

func configurePragmas(db *sql.DB) error {
	const op = "journal.configurePragmas"

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to set pragma: %s", pragma))
		}
	}
	return nil
}

func execSchema(db *sql.DB) error {
	const op = "journal.execSchema"

	tx, err := db.Begin()
	if err != nil {
		return errors.Internal(op, err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to execute schema statement: %s", stmt))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Internal(op, err, "failed to commit schema transaction")
	}
	return nil
}

// Begin records a request entering the fetching state and returns its id.
func (j *Journal) Begin(ctx context.Context, url string) (string, error) {
	const op = "Journal.Begin"

	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO requests (id, url, status, started_at) VALUES (?, ?, ?, ?)`,
		id, url, string(models.StatusFetching), j.now().UTC(),
	)
	if err != nil {
		return "", errors.Internal(op, err, "failed to record request")
	}
	return id, nil
}

// Finish moves a fetching request to success or failed.
func (j *Journal) Finish(ctx context.Context, id string, result models.TranscriptResult) error {
	const op = "Journal.Finish"

	var kind errors.Kind
	if result.Failure != nil {
		kind = result.Failure.Kind
	}

	res, err := j.db.ExecContext(ctx,
		`UPDATE requests
		 SET video_id = ?, status = ?, error_kind = ?, segment_count = ?, finished_at = ?
		 WHERE id = ? AND status = ?`,
		result.Video.VideoID, string(result.Status()), string(kind), result.SegmentCount, j.now().UTC(),
		id, string(models.StatusFetching),
	)
	if err != nil {
		return errors.Internal(op, err, "failed to update request")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Internal(op, err, "failed to update request")
	}
	if n == 0 {
		return errors.InvalidInput(op, nil, fmt.Sprintf("no fetching request with id %s", id))
	}
	return nil
}

func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	const op = "Journal.Get"

	var (
		e          Entry
		status     string
		kind       string
		finishedAt sql.NullTime
	)
	err := j.db.QueryRowContext(ctx,
		`SELECT id, url, video_id, status, error_kind, segment_count, started_at, finished_at
		 FROM requests WHERE id = ?`, id,
	).Scan(&e.ID, &e.URL, &e.VideoID, &status, &kind, &e.SegmentCount, &e.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, errors.InvalidInput(op, err, fmt.Sprintf("no request with id %s", id))
	}
	if err != nil {
		return nil, errors.Internal(op, err, "failed to query request")
	}

	e.Status = models.Status(status)
	e.ErrorKind = errors.Kind(kind)
	if finishedAt.Valid {
		t := finishedAt.Time
		e.FinishedAt = &t
	}
	return &e, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
