// Package store persists collected activity records in SQLite so the
// analyzer can work from a local snapshot instead of the live API.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"time"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/devlens-io/devlens/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity_record (
	subject          TEXT NOT NULL,
	record_type      TEXT NOT NULL,
	repo_name        TEXT NOT NULL,
	author           TEXT NOT NULL DEFAULT '',
	created_at       INTEGER NOT NULL DEFAULT 0,
	url              TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL DEFAULT '',
	state            TEXT NOT NULL DEFAULT '',
	merged           INTEGER NOT NULL DEFAULT 0,
	number           INTEGER NOT NULL DEFAULT 0,
	comment_id       INTEGER NOT NULL DEFAULT 0,
	issue_url        TEXT NOT NULL DEFAULT '',
	pull_request_url TEXT NOT NULL DEFAULT '',
	body             TEXT NOT NULL DEFAULT '',
	embedding        BLOB,
	collected_at     INTEGER NOT NULL,
	PRIMARY KEY (subject, record_type, repo_name, number, comment_id)
);
CREATE INDEX IF NOT EXISTS idx_activity_record_subject_created
	ON activity_record (subject, created_at DESC);
`

// ActivityStore is the SQLite-backed activity record store.
type ActivityStore struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens (and migrates) the store at path. The driver needs the
// `_pragma=` prefix for connection pragmas; WAL keeps readers unblocked
// during collection runs.
func Open(path string, logger *log.Logger) (*ActivityStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open activity store at %s: %w", path, err)
	}
	// A single connection is optimal for SQLite with WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate activity store: %w", err)
	}

	return &ActivityStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *ActivityStore) Close() error {
	return s.db.Close()
}

// UpsertRecords stores a batch of raw records for a subject, keyed by the
// record's natural identity so repeated collection runs stay idempotent.
func (s *ActivityStore) UpsertRecords(ctx context.Context, subject string, records []domain.RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activity_record (
			subject, record_type, repo_name, author, created_at, url, title,
			state, merged, number, comment_id, issue_url, pull_request_url,
			body, embedding, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (subject, record_type, repo_name, number, comment_id) DO UPDATE SET
			author = excluded.author,
			created_at = excluded.created_at,
			url = excluded.url,
			title = excluded.title,
			state = excluded.state,
			merged = excluded.merged,
			number = excluded.number,
			issue_url = excluded.issue_url,
			pull_request_url = excluded.pull_request_url,
			body = excluded.body,
			embedding = excluded.embedding,
			collected_at = excluded.collected_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, rec := range records {
		var createdAt int64
		if !rec.CreatedAt.IsZero() {
			createdAt = rec.CreatedAt.Unix()
		}
		if _, err := stmt.ExecContext(ctx,
			subject,
			rec.RecordType,
			rec.RepoName,
			rec.Author,
			createdAt,
			rec.URL,
			rec.Title,
			rec.State,
			boolToInt(rec.Merged),
			rec.Number,
			rec.CommentID,
			rec.IssueURL,
			rec.PullRequestURL,
			rec.Body,
			vectorToBlob(rec.Embedding),
			now,
		); err != nil {
			return fmt.Errorf("failed to upsert %s record for %s: %w", rec.RecordType, rec.RepoName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	s.logger.Printf("Store: upserted %d records for %q", len(records), subject)
	return nil
}

// FetchActivities returns every stored raw record for a subject, newest
// first. An empty result is a valid answer, distinct from a fetch error.
func (s *ActivityStore) FetchActivities(ctx context.Context, subject string) ([]domain.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_type, repo_name, author, created_at, url, title, state,
			merged, number, comment_id, issue_url, pull_request_url, body, embedding
		FROM activity_record
		WHERE subject = ?
		ORDER BY created_at DESC`, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity records for %q: %w", subject, err)
	}
	defer rows.Close()

	records := []domain.RawRecord{}
	for rows.Next() {
		var (
			rec       domain.RawRecord
			createdAt int64
			merged    int
			embedding []byte
		)
		if err := rows.Scan(
			&rec.RecordType,
			&rec.RepoName,
			&rec.Author,
			&createdAt,
			&rec.URL,
			&rec.Title,
			&rec.State,
			&merged,
			&rec.Number,
			&rec.CommentID,
			&rec.IssueURL,
			&rec.PullRequestURL,
			&rec.Body,
			&embedding,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity record: %w", err)
		}
		if createdAt != 0 {
			rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		}
		rec.Merged = merged != 0
		rec.Embedding = blobToVector(embedding)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity records: %w", err)
	}
	return records, nil
}

// vectorToBlob encodes a vector as little-endian float32 bytes. A nil or
// empty vector stores as NULL.
func vectorToBlob(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// blobToVector is the inverse of vectorToBlob. A malformed BLOB (length not
// a multiple of 4) yields nil rather than a partial vector.
func blobToVector(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
