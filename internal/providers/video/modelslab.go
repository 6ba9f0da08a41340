package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// ModelsLab adapts the ModelsLab text2video API to the Provider interface.
// Submissions return a fetch URL that is polled until the provider reports a
// terminal status; fetch results are cached so a succeeded job is never
// re-polled.
type ModelsLab struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*modelsLabJob
}

type modelsLabJob struct {
	fetchURL  string
	outputURL string
	status    string
}

// ModelsLabOptions configures the adapter.
type ModelsLabOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewModelsLab creates a ModelsLab provider.
func NewModelsLab(opts ModelsLabOptions) *ModelsLab {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.modelslab.com/v1/video"
	}
	return &ModelsLab{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		client:  client,
		logger:  opts.Logger,
		jobs:    make(map[string]*modelsLabJob),
	}
}

type modelsLabResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	FetchURL  string `json:"fetch_url"`
	OutputURL string `json:"output_url"`
}

func (p *ModelsLab) Submit(ctx context.Context, prompt string, opts Options) (*Job, error) {
	payload := map[string]any{"prompt": prompt}
	for k, v := range styleOverrides(opts.Style) {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("modelslab: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/text2video", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("modelslab: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	decoded, err := p.do(req)
	if err != nil {
		p.logger.Error().Err(err).Msg("modelslab: submit failed")
		return &Job{ID: "n/a", Status: domain.JobStatusFailed, Err: err.Error()}, nil
	}
	if decoded.Status == "error" {
		return &Job{ID: "n/a", Status: domain.JobStatusFailed, Err: decoded.Message}, nil
	}

	jobID := decoded.ID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	p.mu.Lock()
	p.jobs[jobID] = &modelsLabJob{
		fetchURL:  decoded.FetchURL,
		outputURL: decoded.OutputURL,
		status:    decoded.Status,
	}
	p.mu.Unlock()

	return &Job{ID: jobID, Status: domain.JobStatusProcessing}, nil
}

func (p *ModelsLab) Fetch(ctx context.Context, jobID string) (*Job, error) {
	p.mu.Lock()
	state, ok := p.jobs[jobID]
	if !ok {
		p.mu.Unlock()
		return &Job{ID: jobID, Status: domain.JobStatusNotFound, Err: "unknown job"}, nil
	}
	if state.status == "succeeded" {
		out := state.outputURL
		p.mu.Unlock()
		return &Job{ID: jobID, Status: domain.JobStatusSucceeded, VideoURL: out}, nil
	}
	if state.fetchURL == "" && state.outputURL != "" {
		state.status = "succeeded"
		out := state.outputURL
		p.mu.Unlock()
		return &Job{ID: jobID, Status: domain.JobStatusSucceeded, VideoURL: out}, nil
	}
	fetchURL := state.fetchURL
	p.mu.Unlock()

	if fetchURL == "" {
		return &Job{ID: jobID, Status: domain.JobStatusProcessing}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("modelslab: build fetch request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	decoded, err := p.do(req)
	if err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("modelslab: fetch failed")
		return &Job{ID: jobID, Status: domain.JobStatusFailed, Err: err.Error()}, nil
	}

	switch decoded.Status {
	case "processing":
		return &Job{ID: jobID, Status: domain.JobStatusProcessing}, nil
	case "success", "succeeded":
		p.mu.Lock()
		state.outputURL = decoded.OutputURL
		state.status = "succeeded"
		p.mu.Unlock()
		return &Job{ID: jobID, Status: domain.JobStatusSucceeded, VideoURL: decoded.OutputURL}, nil
	default:
		msg := decoded.Message
		if msg == "" {
			msg = "provider_error"
		}
		return &Job{ID: jobID, Status: domain.JobStatusFailed, Err: msg}, nil
	}
}

func (p *ModelsLab) do(req *http.Request) (*modelsLabResponse, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("modelslab: unexpected status %d", resp.StatusCode)
	}
	var decoded modelsLabResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("modelslab: decode response: %w", err)
	}
	return &decoded, nil
}

// styleOverrides tunes generation parameters per style.
func styleOverrides(style string) map[string]any {
	switch strings.ToLower(style) {
	case "anime":
		return map[string]any{"fps": 16, "num_frames": 20, "guidance_scale": 7.5}
	case "cartoon":
		return map[string]any{"fps": 20, "num_frames": 16, "guidance_scale": 6.0}
	case "cyberpunk":
		return map[string]any{"fps": 24, "num_frames": 24, "guidance_scale": 6.5}
	default:
		return nil
	}
}

var _ Provider = (*ModelsLab)(nil)
