package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/jobstore"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/video"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/storage"
)

type scriptedFetcher struct {
	mu    sync.Mutex
	calls int
	// plan maps an attempt number to the returned job; attempts past the
	// last plan entry repeat the final status.
	plan []*video.Job
	err  error
}

func (f *scriptedFetcher) Fetch(ctx context.Context, jobID string) (*video.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.plan) {
		idx = len(f.plan) - 1
	}
	return f.plan[idx], nil
}

type recordingMessenger struct {
	mu    sync.Mutex
	texts []string
	media []string
}

func (m *recordingMessenger) SendText(ctx context.Context, to, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, body)
	return "sid", nil
}

func (m *recordingMessenger) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media = append(m.media, mediaURL)
	return "sid", nil
}

func newDeliveryFixture(fetcher Fetcher, maxAttempts int) (*Worker, *jobstore.Store, *recordingMessenger) {
	store := jobstore.New(nil, zerolog.Nop())
	messenger := &recordingMessenger{}
	w := NewWorker(Options{
		Fetcher:     fetcher,
		Store:       store,
		Messenger:   messenger,
		MaxAttempts: maxAttempts,
		Backoff:     time.Millisecond,
		Logger:      zerolog.Nop(),
	})
	return w, store, messenger
}

func TestWorkerDeliversOnceAndRequestsFeedback(t *testing.T) {
	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusProcessing},
		{ID: "j1", Status: domain.JobStatusSucceeded, VideoURL: "https://cdn/j1.mp4"},
	}}
	w, store, messenger := newDeliveryFixture(fetcher, 10)
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")

	w.Run(context.Background(), "j1", "user1")

	if len(messenger.media) != 1 || messenger.media[0] != "https://cdn/j1.mp4" {
		t.Fatalf("media sends = %v, want exactly one", messenger.media)
	}
	if !store.Get("j1").FeedbackPending {
		t.Fatal("feedback not marked pending after delivery")
	}
	if fetcher.calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", fetcher.calls)
	}
}

func TestWorkerFailureSendsSingleErrorNotice(t *testing.T) {
	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusFailed, Err: "nsfw content"},
	}}
	w, store, messenger := newDeliveryFixture(fetcher, 10)
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")

	w.Run(context.Background(), "j1", "user1")

	if len(messenger.texts) != 1 || !strings.Contains(messenger.texts[0], "nsfw content") {
		t.Fatalf("texts = %v, want one failure notice", messenger.texts)
	}
	if len(messenger.media) != 0 {
		t.Fatalf("media sent on failure: %v", messenger.media)
	}
	if store.Get("j1").FeedbackPending {
		t.Fatal("feedback requested after failure")
	}
}

func TestWorkerTimeoutSendsSingleNotice(t *testing.T) {
	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusProcessing},
	}}
	w, store, messenger := newDeliveryFixture(fetcher, 5)
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")

	w.Run(context.Background(), "j1", "user1")

	if fetcher.calls != 5 {
		t.Fatalf("fetch calls = %d, want the full attempt cap", fetcher.calls)
	}
	// One courtesy notice plus exactly one timeout notice.
	var timeouts, courtesies int
	for _, txt := range messenger.texts {
		if strings.Contains(txt, "longer than expected") {
			timeouts++
		}
		if strings.Contains(txt, "Still working") {
			courtesies++
		}
	}
	if timeouts != 1 {
		t.Fatalf("timeout notices = %d, want 1 (texts: %v)", timeouts, messenger.texts)
	}
	if courtesies != 1 {
		t.Fatalf("courtesy notices = %d, want 1 (texts: %v)", courtesies, messenger.texts)
	}
	// The job keeps its last polled status.
	if got := store.Get("j1").Status; got != domain.JobStatusProcessing {
		t.Fatalf("status after timeout = %s, want processing", got)
	}
}

func TestWorkerFetchErrorStopsWithNotice(t *testing.T) {
	fetcher := &scriptedFetcher{err: errors.New("backend down")}
	w, store, messenger := newDeliveryFixture(fetcher, 10)
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")

	w.Run(context.Background(), "j1", "user1")

	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetcher.calls)
	}
	if len(messenger.texts) != 1 {
		t.Fatalf("texts = %v, want one error notice", messenger.texts)
	}
}

func TestWorkerMissingURLNotices(t *testing.T) {
	// Success without a deliverable anywhere.
	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusSucceeded},
	}}
	w, store, messenger := newDeliveryFixture(fetcher, 10)
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")

	w.Run(context.Background(), "j1", "user1")

	if len(messenger.media) != 0 {
		t.Fatalf("media sent without a URL: %v", messenger.media)
	}
	if len(messenger.texts) != 1 || !strings.Contains(messenger.texts[0], "URL missing") {
		t.Fatalf("texts = %v, want URL-missing notice", messenger.texts)
	}
}

// copyTranscoder copies input to output verbatim.
type copyTranscoder struct{}

func (copyTranscoder) Downscale(ctx context.Context, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func TestWorkerPersistsProviderOutputBeforeTranscode(t *testing.T) {
	payload := []byte("fake mp4 bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusSucceeded, VideoURL: srv.URL + "/j1.mp4"},
	}}
	store := jobstore.New(nil, zerolog.Nop())
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")
	messenger := &recordingMessenger{}
	w := NewWorker(Options{
		Fetcher:       fetcher,
		Store:         store,
		Messenger:     messenger,
		Transcoder:    copyTranscoder{},
		Files:         files,
		PublicBaseURL: "https://bot.example.com",
		MaxAttempts:   3,
		Backoff:       time.Millisecond,
		Logger:        zerolog.Nop(),
	})

	w.Run(context.Background(), "j1", "user1")

	raw, err := os.ReadFile(filepath.Join(files.BasePath(), "raw", "j1.mp4"))
	if err != nil {
		t.Fatalf("provider output not persisted: %v", err)
	}
	if string(raw) != string(payload) {
		t.Fatalf("persisted output = %q, want %q", raw, payload)
	}
	if _, err := os.Stat(filepath.Join(files.BasePath(), "compressed", "j1.mp4")); err != nil {
		t.Fatalf("compressed output missing: %v", err)
	}
	if len(messenger.media) != 1 || messenger.media[0] != "https://bot.example.com/video/j1" {
		t.Fatalf("media sends = %v, want the locally served reference", messenger.media)
	}
}

func TestWorkerDownloadFailureDeliversOriginalURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sourceURL := srv.URL + "/j1.mp4"
	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusSucceeded, VideoURL: sourceURL},
	}}
	store := jobstore.New(nil, zerolog.Nop())
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing}, "user1")
	messenger := &recordingMessenger{}
	w := NewWorker(Options{
		Fetcher:       fetcher,
		Store:         store,
		Messenger:     messenger,
		Transcoder:    copyTranscoder{},
		Files:         files,
		PublicBaseURL: "https://bot.example.com",
		MaxAttempts:   3,
		Backoff:       time.Millisecond,
		Logger:        zerolog.Nop(),
	})

	w.Run(context.Background(), "j1", "user1")

	// No placeholder on disk either, so the transcode has nothing to read
	// and the provider's URL is delivered as-is.
	if len(messenger.media) != 1 || messenger.media[0] != sourceURL {
		t.Fatalf("media sends = %v, want the provider URL", messenger.media)
	}
}

func TestWorkerLocalLocationNeedsPublicBaseURL(t *testing.T) {
	fetcher := &scriptedFetcher{plan: []*video.Job{
		{ID: "j1", Status: domain.JobStatusSucceeded},
	}}
	w, store, messenger := newDeliveryFixture(fetcher, 10)
	store.Put(&domain.Job{ID: "j1", Status: domain.JobStatusProcessing, VideoLocation: "/video/j1"}, "user1")

	w.Run(context.Background(), "j1", "user1")

	if len(messenger.media) != 0 {
		t.Fatalf("media sent without a public base URL: %v", messenger.media)
	}
	if len(messenger.texts) != 1 || !strings.Contains(messenger.texts[0], "not public") {
		t.Fatalf("texts = %v, want not-public notice", messenger.texts)
	}
}
