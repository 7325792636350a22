// Package db persists successful extraction results in SQLite so the
// cache survives restarts. It is a second-level cache: reads honor the
// same TTL as the in-memory layer, and failures are never stored.
package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
    url        TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    transcript TEXT NOT NULL DEFAULT '',
    source     TEXT NOT NULL DEFAULT '',
    language   TEXT NOT NULL DEFAULT '',
    platform   TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	logrus.WithField("path", path).Info("Opening result store")

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "creating schema")
	}

	return &Store{db: conn, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored result for a normalized URL if it is younger
// than ttl. Older rows are treated as absent (and removed) so the
// repeat-request-after-TTL behavior matches the in-memory cache.
func (s *Store) Get(ctx context.Context, url string, ttl time.Duration) (models.ExtractionResult, bool, error) {
	var (
		result    models.ExtractionResult
		createdAt int64
	)

	row := s.db.QueryRowContext(ctx,
		`SELECT title, transcript, source, language, platform, created_at FROM results WHERE url = ?`, url)
	err := row.Scan(&result.Title, &result.Transcript, &result.Source, &result.Language, &result.Platform, &createdAt)
	if err == sql.ErrNoRows {
		return models.ExtractionResult{}, false, nil
	}
	if err != nil {
		return models.ExtractionResult{}, false, errors.Wrap(err, "reading result")
	}

	if s.now().Sub(time.Unix(createdAt, 0)) > ttl {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE url = ?`, url); err != nil {
			logrus.WithError(err).WithField("url", url).Warn("Failed to delete expired result")
		}
		return models.ExtractionResult{}, false, nil
	}

	result.Success = true
	return result, true, nil
}

// Put stores a successful result. Failures must not be persisted: a
// transient failure should never poison future identical requests.
func (s *Store) Put(ctx context.Context, url string, result models.ExtractionResult) error {
	if !result.Success {
		return errors.New("refusing to store a failed result")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (url, title, transcript, source, language, platform, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   title = excluded.title,
		   transcript = excluded.transcript,
		   source = excluded.source,
		   language = excluded.language,
		   platform = excluded.platform,
		   created_at = excluded.created_at`,
		url, result.Title, result.Transcript, result.Source, result.Language, result.Platform, s.now().Unix())
	return errors.Wrap(err, "storing result")
}

// SetClock overrides the time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
