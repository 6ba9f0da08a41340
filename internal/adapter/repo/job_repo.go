package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra"
)

// JobRepository persists job rows. The in-memory store is authoritative for
// the lifetime of the process; this table is the restart-surviving mirror.
type JobRepository struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a job repository backed by PostgreSQL.
func NewJobRepository(sql infra.SQLExecutor) *JobRepository {
	return &JobRepository{sql: sql}
}

// Insert stores a job row. A row with the same job_id is left untouched
// (insert-if-absent semantics).
func (r *JobRepository) Insert(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO jobs (user_key, job_id, prompt, final_prompt, status, video_location, created_at, style)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (job_id) DO NOTHING;
`
	_, err := r.sql.Exec(ctx, query,
		job.UserKey,
		job.ID,
		job.Prompt,
		job.FinalPrompt,
		job.Status,
		nullableString(job.VideoLocation),
		job.CreatedAt,
		job.Style,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// UpdateStatus updates the stored status and, when provided, the video
// location. The location is only filled in when the row has none yet.
func (r *JobRepository) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, videoLocation string) error {
	query := `
UPDATE jobs
SET status = $2,
    video_location = COALESCE(video_location, $3)
WHERE job_id = $1;
`
	_, err := r.sql.Exec(ctx, query, jobID, status, nullableString(videoLocation))
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// ListByUser fetches the most recent jobs for a user key, newest first.
func (r *JobRepository) ListByUser(ctx context.Context, userKey string, limit int) ([]domain.Job, error) {
	query := `
SELECT job_id, prompt, final_prompt, status, video_location, created_at, style
FROM jobs
WHERE user_key = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.sql.Query(ctx, query, userKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs for user: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var (
			job      domain.Job
			location *string
			created  time.Time
		)
		if err := rows.Scan(&job.ID, &job.Prompt, &job.FinalPrompt, &job.Status, &location, &created, &job.Style); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		if location != nil {
			job.VideoLocation = *location
		}
		job.UserKey = userKey
		job.CreatedAt = created
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
