package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-tailor/internal/types"
)

const runColumns = `id, user_id, resume_id, job_id, result, explanations, created_at`

// Explanations is the display copy stored next to a result.
type Explanations struct {
	BulletRewrite  types.BulletRewrite  `json:"bulletRewrite"`
	GapAnalysis    types.GapAnalysis    `json:"gapAnalysis"`
	SkillsOptimize types.SkillsOptimize `json:"skillsOptimize"`
}

// CreateTailoringRun stores a complete result in one insert and returns the
// run ID.
func (db *DB) CreateTailoringRun(ctx context.Context, userID string, resumeID, jobID uuid.UUID, result *types.TailoringResult) (uuid.UUID, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	explanationsJSON, err := json.Marshal(Explanations{
		BulletRewrite:  result.BulletRewrite,
		GapAnalysis:    result.GapAnalysis,
		SkillsOptimize: result.SkillsOptimize,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal explanations: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO tailoring_runs (user_id, resume_id, job_id, result, explanations)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		userID, resumeID, jobID, resultJSON, explanationsJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tailoring run: %w", err)
	}
	return id, nil
}

// GetTailoringRun returns the user's run or a *NotFoundError.
func (db *DB) GetTailoringRun(ctx context.Context, userID string, id uuid.UUID) (*TailoringRun, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM tailoring_runs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, notFoundOr(err, "tailoring run", id.String())
	}
	return run, nil
}

// ListTailoringRuns returns the user's most recent runs, newest first.
func (db *DB) ListTailoringRuns(ctx context.Context, userID string) ([]TailoringRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM tailoring_runs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, ListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tailoring runs: %w", err)
	}
	defer rows.Close()

	runs := make([]TailoringRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tailoring run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DecodeResult unmarshals and normalizes the stored result.
func (r *TailoringRun) DecodeResult() (*types.TailoringResult, error) {
	var res types.TailoringResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", r.ID, err)
	}
	res.Normalize()
	return &res, nil
}

func scanRun(row pgx.Row) (*TailoringRun, error) {
	var (
		run          TailoringRun
		result       []byte
		explanations []byte
	)
	if err := row.Scan(&run.ID, &run.UserID, &run.ResumeID, &run.JobID, &result, &explanations, &run.CreatedAt); err != nil {
		return nil, err
	}
	run.Result = result
	run.Explanations = explanations
	return &run, nil
}
