package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/overflow/internal/domain"
)

// AIJobRepository handles the AI answer job queue. Jobs live in
// Postgres; workers claim them with FOR UPDATE SKIP LOCKED so several
// workers never run the same job.
type AIJobRepository struct {
	db *sqlx.DB
}

// NewAIJobRepository creates a new AIJobRepository.
func NewAIJobRepository(db *sqlx.DB) *AIJobRepository {
	return &AIJobRepository{db: db}
}

const aiJobColumns = `id, question_id, status, attempts, max_attempts, started_at, completed_at, error_msg, created_at`

// Enqueue creates a pending job for the question. A question with a
// job already pending or running yields ErrConflict.
func (r *AIJobRepository) Enqueue(ctx context.Context, questionID int64, maxAttempts int) (*domain.AIJob, error) {
	var job domain.AIJob
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO ai_jobs (question_id, max_attempts)
		 VALUES ($1, $2)
		 RETURNING `+aiJobColumns,
		questionID, maxAttempts,
	).StructScan(&job)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: an AI answer is already being generated for question %d", domain.ErrConflict, questionID)
		}
		return nil, fmt.Errorf("enqueue ai job: %w", err)
	}
	return &job, nil
}

// ClaimNext atomically claims the oldest pending job, marking it
// running and counting the attempt. Returns ErrNotFound when the queue
// is empty.
func (r *AIJobRepository) ClaimNext(ctx context.Context) (*domain.AIJob, error) {
	var job domain.AIJob
	err := r.db.GetContext(ctx, &job,
		`UPDATE ai_jobs SET status = 'running', attempts = attempts + 1, started_at = NOW()
		 WHERE id = (
		     SELECT id FROM ai_jobs
		     WHERE status = 'pending'
		     ORDER BY id
		     LIMIT 1
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+aiJobColumns)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("claim ai job: %w", err)
	}
	return &job, nil
}

// Complete marks a job as successfully finished.
func (r *AIJobRepository) Complete(ctx context.Context, jobID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE ai_jobs SET status = 'completed', completed_at = NOW(), error_msg = NULL
		 WHERE id = $1`, jobID); err != nil {
		return fmt.Errorf("complete ai job %d: %w", jobID, err)
	}
	return nil
}

// Fail records a failed attempt. The job returns to pending until its
// attempts are exhausted, then stays failed.
func (r *AIJobRepository) Fail(ctx context.Context, jobID int64, message string) (domain.JobStatus, error) {
	var status domain.JobStatus
	err := r.db.GetContext(ctx, &status,
		`UPDATE ai_jobs
		 SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
		     completed_at = CASE WHEN attempts >= max_attempts THEN NOW() ELSE NULL END,
		     error_msg = $2
		 WHERE id = $1
		 RETURNING status`, jobID, message)
	if err != nil {
		return "", fmt.Errorf("fail ai job %d: %w", jobID, err)
	}
	return status, nil
}
