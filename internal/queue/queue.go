// Package queue provides the persistent FIFO of generation requests and the
// single consumer loop that drains it.
package queue

import (
	"context"
	"errors"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// Repository is the persistence slice the queue needs.
type Repository interface {
	Insert(ctx context.Context, userKey, promptText, style string) (int64, error)
	NextQueued(ctx context.Context) (*domain.Request, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus, jobID string) error
}

// Queue is a database-backed FIFO of pending generation requests.
//
// Dequeue does not claim the returned row; the design assumes exactly one
// consumer loop, enforced by ownership rather than locking. It is not a
// multi-consumer-safe queue.
type Queue struct {
	repo Repository
}

// New creates a Queue over the given repository.
func New(repo Repository) *Queue {
	return &Queue{repo: repo}
}

// Enqueue persists a new queued request and returns its id immediately,
// without waiting for processing.
func (q *Queue) Enqueue(ctx context.Context, userKey, promptText, style string) (int64, error) {
	return q.repo.Insert(ctx, userKey, promptText, style)
}

// Dequeue returns the oldest queued request or nil when none is pending.
// The row stays queued until explicitly advanced.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Request, error) {
	req, err := q.repo.NextQueued(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// MarkProcessing advances a request to processing and attaches its backend
// job id.
func (q *Queue) MarkProcessing(ctx context.Context, id int64, jobID string) error {
	return q.repo.UpdateStatus(ctx, id, domain.RequestStatusProcessing, jobID)
}

// MarkDone records the terminal outcome of a request.
func (q *Queue) MarkDone(ctx context.Context, id int64, success bool) error {
	status := domain.RequestStatusDone
	if !success {
		status = domain.RequestStatusFailed
	}
	return q.repo.UpdateStatus(ctx, id, status, "")
}
