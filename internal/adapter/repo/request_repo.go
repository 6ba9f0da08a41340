package repo

import (
	"context"
	"fmt"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra"
)

// RequestRepository persists the FIFO request queue.
type RequestRepository struct {
	sql infra.SQLExecutor
}

// NewRequestRepository creates a request repository backed by PostgreSQL.
func NewRequestRepository(sql infra.SQLExecutor) *RequestRepository {
	return &RequestRepository{sql: sql}
}

// Insert adds a queued request and returns its assigned id.
func (r *RequestRepository) Insert(ctx context.Context, userKey, promptText, style string) (int64, error) {
	query := `
INSERT INTO requests (user_key, prompt, style, status)
VALUES ($1, $2, $3, 'queued')
RETURNING id;
`
	var id int64
	if err := r.sql.QueryRow(ctx, query, userKey, promptText, style).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert request: %w", err)
	}
	return id, nil
}

// NextQueued returns the oldest queued request, or domain.ErrNotFound when
// the queue is empty. The row is not claimed; advancing its status is the
// single consumer's responsibility.
func (r *RequestRepository) NextQueued(ctx context.Context) (*domain.Request, error) {
	query := `
SELECT id, user_key, COALESCE(job_id, ''), prompt, style, status, created_at
FROM requests
WHERE status = 'queued'
ORDER BY created_at ASC, id ASC
LIMIT 1;
`
	row := r.sql.QueryRow(ctx, query)
	var req domain.Request
	if err := row.Scan(&req.ID, &req.UserKey, &req.JobID, &req.Prompt, &req.Style, &req.Status, &req.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("next queued request: %w", err)
	}
	return &req, nil
}

// UpdateStatus advances a request's status, attaching the backend job id
// when one has been assigned.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus, jobID string) error {
	var err error
	if jobID != "" {
		query := `UPDATE requests SET status = $2, job_id = $3 WHERE id = $1;`
		_, err = r.sql.Exec(ctx, query, id, status, jobID)
	} else {
		query := `UPDATE requests SET status = $2 WHERE id = $1;`
		_, err = r.sql.Exec(ctx, query, id, status)
	}
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}
