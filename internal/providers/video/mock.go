package video

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// Mock simulates a generation backend: jobs start processing and flip to
// succeeded after a short latency. Useful for development and tests.
type Mock struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	latency time.Duration
}

// NewMock creates a mock provider with the given simulated latency. A zero
// latency makes jobs succeed on the first fetch.
func NewMock(latency time.Duration) *Mock {
	return &Mock{jobs: make(map[string]*Job), latency: latency}
}

func (m *Mock) Submit(ctx context.Context, prompt string, opts Options) (*Job, error) {
	job := &Job{ID: uuid.NewString(), Status: domain.JobStatusProcessing}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	if m.latency == 0 {
		m.complete(job.ID)
	} else {
		time.AfterFunc(m.latency, func() { m.complete(job.ID) })
	}
	return &Job{ID: job.ID, Status: job.Status}, nil
}

func (m *Mock) complete(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = domain.JobStatusSucceeded
	}
}

func (m *Mock) Fetch(ctx context.Context, jobID string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return &Job{ID: jobID, Status: domain.JobStatusNotFound, Err: "unknown job"}, nil
	}
	cp := *job
	return &cp, nil
}

var _ Provider = (*Mock)(nil)
