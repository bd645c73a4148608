package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, user_id, source_url, raw_text, structured, created_at`

// SaveJob inserts a job description and returns its ID. structured may be
// nil.
func (db *DB) SaveJob(ctx context.Context, userID, sourceURL, rawText string, structured json.RawMessage) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (user_id, source_url, raw_text, structured)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		userID, nullIfEmpty(sourceURL), rawText, jsonParam(structured),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job: %w", err)
	}
	return id, nil
}

// GetJob returns the user's job or a *NotFoundError.
func (db *DB) GetJob(ctx context.Context, userID string, id uuid.UUID) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	j, err := scanJob(row)
	if err != nil {
		return nil, notFoundOr(err, "job", id.String())
	}
	return j, nil
}

// ListJobs returns the user's most recent jobs, newest first.
func (db *DB) ListJobs(ctx context.Context, userID string) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, ListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// SetJobStructured stores the structured form of a job.
func (db *DB) SetJobStructured(ctx context.Context, userID string, id uuid.UUID, structured json.RawMessage) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET structured = $1 WHERE id = $2 AND user_id = $3`,
		jsonParam(structured), id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "job", ID: id.String()}
	}
	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var (
		j          Job
		sourceURL  *string
		structured []byte
	)
	if err := row.Scan(&j.ID, &j.UserID, &sourceURL, &j.RawText, &structured, &j.CreatedAt); err != nil {
		return nil, err
	}
	j.SourceURL = deref(sourceURL)
	j.Structured = structured
	return &j, nil
}
