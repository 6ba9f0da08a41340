// Package video defines the generation backend capability consumed by the
// coordinator, with a mock implementation for development and tests and a
// ModelsLab HTTP implementation for production.
package video

import (
	"context"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// Job is the provider's view of one generation attempt.
type Job struct {
	ID       string
	Status   domain.JobStatus
	VideoURL string
	Err      string
}

// Options tunes a submission.
type Options struct {
	Style string
}

// Provider is the submit/fetch capability of a generation backend.
type Provider interface {
	Submit(ctx context.Context, prompt string, opts Options) (*Job, error)
	Fetch(ctx context.Context, jobID string) (*Job, error)
}
