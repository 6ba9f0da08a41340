// Package generator orchestrates one job's lifecycle: cache consultation,
// backend dispatch, record storage and status reconciliation.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/jobstore"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/prompt"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/video"
)

// metaProviderOutputURL stores the backend's raw deliverable URL on the record.
const metaProviderOutputURL = "provider_output_url"

// Generator coordinates submissions and status fetches against one backend.
type Generator struct {
	provider     video.Provider
	providerName string
	store        *jobstore.Store
	logger       zerolog.Logger
}

// New creates a Generator.
func New(provider video.Provider, providerName string, store *jobstore.Store, logger zerolog.Logger) *Generator {
	return &Generator{provider: provider, providerName: providerName, store: store, logger: logger}
}

// SubmitParams carries one submission. FinalPrompt is optional; when empty
// the style-composed prompt is sent to the backend.
type SubmitParams struct {
	Prompt      string
	FinalPrompt string
	Style       string
	UserKey     string
}

// Submit dispatches a generation request. When a prior job with the same
// (prompt, style) fingerprint already succeeded, the cached record is
// returned without contacting the backend.
func (g *Generator) Submit(ctx context.Context, params SubmitParams) (*domain.Job, bool, error) {
	userPrompt := strings.TrimSpace(params.Prompt)
	if userPrompt == "" {
		return nil, false, domain.ErrEmptyPrompt
	}

	fp := prompt.Fingerprint(userPrompt, params.Style)
	if cached := g.store.GetByFingerprint(fp); cached != nil && cached.Status == domain.JobStatusSucceeded {
		g.logger.Info().Str("fingerprint", fp).Str("job_id", cached.ID).Msg("generator: cache hit")
		cached.Cached = true
		return cached, true, nil
	}

	finalPrompt := strings.TrimSpace(params.FinalPrompt)
	if finalPrompt == "" {
		finalPrompt = userPrompt
	}
	composed := prompt.Compose(finalPrompt, params.Style)

	pj, err := g.provider.Submit(ctx, composed, video.Options{Style: params.Style})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	rec := &domain.Job{
		ID:           pj.ID,
		UserKey:      params.UserKey,
		Fingerprint:  fp,
		Status:       pj.Status,
		Prompt:       userPrompt,
		FinalPrompt:  finalPrompt,
		Style:        params.Style,
		Provider:     g.providerName,
		ErrorMessage: pj.Err,
		CreatedAt:    time.Now().UTC(),
	}
	g.store.Put(rec, params.UserKey)

	g.logger.Info().Str("job_id", rec.ID).Str("status", string(rec.Status)).Str("style", params.Style).Msg("generator: submitted")
	return rec, false, nil
}

// Fetch polls the backend for a job's status and reconciles the stored
// record: on the first transition into succeeded the video location is set
// to the locally served reference, and a record already in a terminal state
// is never regressed. The backend's raw view is returned for the caller.
func (g *Generator) Fetch(ctx context.Context, jobID string) (*video.Job, error) {
	pj, err := g.provider.Fetch(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	if pj.Status == domain.JobStatusNotFound {
		return pj, nil
	}

	location := ""
	if pj.Status == domain.JobStatusSucceeded {
		location = "/video/" + jobID
		if pj.VideoURL != "" {
			g.store.SetJobMeta(jobID, metaProviderOutputURL, pj.VideoURL)
		}
	}
	g.store.UpdateStatus(ctx, jobID, pj.Status, location)

	return pj, nil
}

// ProviderOutputURL reads the backend deliverable URL recorded for a job.
func ProviderOutputURL(job *domain.Job) string {
	if job == nil {
		return ""
	}
	return job.MetaValue(metaProviderOutputURL)
}
