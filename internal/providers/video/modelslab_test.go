package video

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

func TestModelsLabSubmitAndPoll(t *testing.T) {
	var fetches int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/text2video", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Fatalf("auth = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["prompt"] == "" {
			t.Fatal("prompt missing from payload")
		}
		// Anime style attaches its parameter overrides.
		if payload["fps"] != float64(16) {
			t.Fatalf("fps = %v", payload["fps"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":        "ml-1",
			"status":    "processing",
			"fetch_url": srv.URL + "/fetch/ml-1",
		})
	})
	mux.HandleFunc("/fetch/ml-1", func(w http.ResponseWriter, r *http.Request) {
		fetches++
		if fetches == 1 {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "processing"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "success",
			"output_url": "https://cdn/ml-1.mp4",
		})
	})

	p := NewModelsLab(ModelsLabOptions{APIKey: "key123", BaseURL: srv.URL, Logger: zerolog.Nop()})
	ctx := context.Background()

	job, err := p.Submit(ctx, "a cat surfing", Options{Style: "anime"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.ID != "ml-1" || job.Status != domain.JobStatusProcessing {
		t.Fatalf("job = %+v", job)
	}

	got, err := p.Fetch(ctx, "ml-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Status != domain.JobStatusProcessing {
		t.Fatalf("first poll status = %s", got.Status)
	}

	got, err = p.Fetch(ctx, "ml-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Status != domain.JobStatusSucceeded || got.VideoURL != "https://cdn/ml-1.mp4" {
		t.Fatalf("second poll = %+v", got)
	}

	// A later poll answers from the cached terminal state without another
	// HTTP round trip.
	before := fetches
	if got, _ = p.Fetch(ctx, "ml-1"); got.Status != domain.JobStatusSucceeded {
		t.Fatalf("cached poll = %+v", got)
	}
	if fetches != before {
		t.Fatal("terminal state re-polled the backend")
	}
}

func TestModelsLabSubmitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "quota exceeded"})
	}))
	defer srv.Close()

	p := NewModelsLab(ModelsLabOptions{APIKey: "key123", BaseURL: srv.URL, Logger: zerolog.Nop()})
	job, err := p.Submit(context.Background(), "a cat", Options{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != domain.JobStatusFailed || job.Err != "quota exceeded" {
		t.Fatalf("job = %+v", job)
	}
}

func TestModelsLabFetchUnknown(t *testing.T) {
	p := NewModelsLab(ModelsLabOptions{APIKey: "key123", Logger: zerolog.Nop()})
	got, err := p.Fetch(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Status != domain.JobStatusNotFound {
		t.Fatalf("status = %s", got.Status)
	}
}
