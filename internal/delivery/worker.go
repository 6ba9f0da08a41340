// Package delivery runs the per-job background task that polls a submitted
// job to completion and sends the result back to the WhatsApp user.
package delivery

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/jobstore"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/video"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/storage"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/transcode"
)

const (
	defaultMaxAttempts = 60
	defaultBackoff     = 1500 * time.Millisecond

	// courtesyAttempt is the poll attempt after which the single "still
	// working" notice goes out.
	courtesyAttempt = 2

	// maxDownloadBytes caps how much of a provider deliverable is pulled to
	// local storage before transcoding.
	maxDownloadBytes = 64 << 20
)

// Fetcher is the slice of the coordinator the worker needs.
type Fetcher interface {
	Fetch(ctx context.Context, jobID string) (*video.Job, error)
}

// Options configures a Worker.
type Options struct {
	Fetcher       Fetcher
	Store         *jobstore.Store
	Messenger     messaging.Messenger
	Transcoder    transcode.Transcoder
	Files         *storage.FileStore
	PublicBaseURL string
	MaxAttempts   int
	Backoff       time.Duration
	// HTTPClient fetches provider deliverables; a 60s-timeout client is used
	// when nil.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Worker drives jobs from dispatch to a terminal delivery outcome. One Run
// call handles one job; Workers are shared and stateless between jobs.
type Worker struct {
	fetcher       Fetcher
	store         *jobstore.Store
	messenger     messaging.Messenger
	transcoder    transcode.Transcoder
	files         *storage.FileStore
	publicBaseURL string
	maxAttempts   int
	backoff       time.Duration
	client        *http.Client
	logger        zerolog.Logger
}

// NewWorker creates a Worker.
func NewWorker(opts Options) *Worker {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Worker{
		fetcher:       opts.Fetcher,
		store:         opts.Store,
		messenger:     opts.Messenger,
		transcoder:    opts.Transcoder,
		files:         opts.Files,
		publicBaseURL: opts.PublicBaseURL,
		maxAttempts:   opts.MaxAttempts,
		backoff:       opts.Backoff,
		client:        opts.HTTPClient,
		logger:        opts.Logger,
	}
}

// Run polls the job on a bounded schedule and performs exactly one terminal
// notification: delivery on success, the error text on failure, or a timeout
// notice when the attempt cap is exhausted. Notification failures are logged
// and never re-enter the loop. Workers do not support external cancellation
// beyond ctx; they run to a terminal branch or the cap.
func (w *Worker) Run(ctx context.Context, jobID, userKey string) {
	w.logger.Info().Str("job_id", jobID).Str("user_key", userKey).Msg("delivery: worker started")

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		pj, err := w.fetcher.Fetch(ctx, jobID)
		if err != nil {
			w.logger.Error().Err(err).Str("job_id", jobID).Msg("delivery: provider fetch failed")
			w.notify(ctx, userKey, "⚠️ Error checking generation status. Please try again later.")
			return
		}

		switch pj.Status {
		case domain.JobStatusSucceeded:
			w.deliver(ctx, jobID, userKey, pj)
			return
		case domain.JobStatusFailed:
			msg := pj.Err
			if msg == "" {
				msg = "Generation failed"
			}
			w.notify(ctx, userKey, "⚠️ Video generation failed: "+msg)
			return
		}

		if attempt == courtesyAttempt {
			w.notify(ctx, userKey, "⏳ Still working — this can take ~30–90s. I'll message you when it's ready.")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff):
		}
	}

	// Attempt cap exhausted: the job keeps its last polled status and no
	// feedback is requested.
	w.notify(ctx, userKey, "⚠️ The generation is taking longer than expected. We'll notify you when it's ready.")
}

func (w *Worker) deliver(ctx context.Context, jobID, userKey string, pj *video.Job) {
	rec := w.store.Get(jobID)

	mediaURL := pj.VideoURL
	if mediaURL == "" {
		mediaURL = providerOutputURL(rec)
	}
	if mediaURL == "" {
		if rec == nil || rec.VideoLocation == "" {
			w.notify(ctx, userKey, "⚠️ Video finished but URL missing. Please try again later.")
			return
		}
		if w.publicBaseURL == "" {
			w.notify(ctx, userKey, "✅ Your video is ready but the server is not public. Open the app to view it (job: "+jobID+").")
			return
		}
		mediaURL = w.publicBaseURL + rec.VideoLocation
	}

	if path := w.compress(ctx, jobID, mediaURL); path != "" && w.publicBaseURL != "" {
		mediaURL = w.publicBaseURL + "/video/" + jobID
	}

	caption := "✅ Here's your AI-generated video!\n\n🙏 Did you like it?\nPlease reply with 👍 or 👎"
	if _, err := w.messenger.SendMedia(ctx, userKey, mediaURL, caption); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("delivery: media send failed")
		return
	}

	w.store.MarkFeedbackPending(jobID)
	w.logger.Info().Str("job_id", jobID).Str("user_key", userKey).Msg("delivery: video sent")
}

// compress pulls the provider deliverable into local storage and runs the
// size-bounding transcode into the compressed storage area. When the download
// is unavailable the placeholder is transcoded; on transcode failure the
// original reference is delivered instead.
func (w *Worker) compress(ctx context.Context, jobID, sourceURL string) string {
	if w.transcoder == nil || w.files == nil {
		return ""
	}
	input := w.fetchSource(ctx, jobID, sourceURL)
	if input == "" {
		input = filepath.Join(w.files.BasePath(), "placeholder.mp4")
	}
	output := filepath.Join(w.files.BasePath(), "compressed", jobID+".mp4")
	if err := w.transcoder.Downscale(ctx, input, output); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("delivery: transcode failed, sending original")
		return ""
	}
	return output
}

// fetchSource downloads the provider's output and persists it under the raw
// storage area so the transcode reads from disk. Returns the local path, or
// "" when there is nothing fetchable.
func (w *Worker) fetchSource(ctx context.Context, jobID, sourceURL string) string {
	if !strings.HasPrefix(sourceURL, "http") {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return ""
	}
	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("delivery: output download failed")
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		w.logger.Warn().Int("status", resp.StatusCode).Str("job_id", jobID).Msg("delivery: output download rejected")
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("delivery: output read failed")
		return ""
	}

	key, err := w.files.Write(ctx, "raw/"+jobID+".mp4", data)
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("delivery: output persist failed")
		return ""
	}
	path, err := w.files.Resolve(key)
	if err != nil {
		return ""
	}
	return path
}

func (w *Worker) notify(ctx context.Context, userKey, body string) {
	if _, err := w.messenger.SendText(ctx, userKey, body); err != nil {
		w.logger.Error().Err(err).Str("user_key", userKey).Msg("delivery: notification failed")
	}
}

func providerOutputURL(rec *domain.Job) string {
	if rec == nil {
		return ""
	}
	return rec.MetaValue("provider_output_url")
}
