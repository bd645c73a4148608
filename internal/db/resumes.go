package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const resumeColumns = `id, user_id, filename, original_text, parsed, created_at`

// SaveResume inserts a resume and returns its ID. parsed may be nil.
func (db *DB) SaveResume(ctx context.Context, userID, filename, originalText string, parsed json.RawMessage) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, filename, original_text, parsed)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		userID, nullIfEmpty(filename), originalText, jsonParam(parsed),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return id, nil
}

// GetResume returns the user's resume or a *NotFoundError.
func (db *DB) GetResume(ctx context.Context, userID string, id uuid.UUID) (*Resume, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	r, err := scanResume(row)
	if err != nil {
		return nil, notFoundOr(err, "resume", id.String())
	}
	return r, nil
}

// ListResumes returns the user's most recent resumes, newest first.
func (db *DB) ListResumes(ctx context.Context, userID string) ([]Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, ListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := make([]Resume, 0)
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *r)
	}
	return resumes, rows.Err()
}

// SetResumeParsed stores the structured form of a resume.
func (db *DB) SetResumeParsed(ctx context.Context, userID string, id uuid.UUID, parsed json.RawMessage) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE resumes SET parsed = $1 WHERE id = $2 AND user_id = $3`,
		jsonParam(parsed), id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "resume", ID: id.String()}
	}
	return nil
}

func scanResume(row pgx.Row) (*Resume, error) {
	var (
		r        Resume
		filename *string
		parsed   []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &filename, &r.OriginalText, &parsed, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Filename = deref(filename)
	r.Parsed = parsed
	return &r, nil
}
