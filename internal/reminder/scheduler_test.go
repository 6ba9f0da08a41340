package reminder

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

type stubJobSource struct {
	last *domain.Job
}

func (s *stubJobSource) LastForUser(userKey string) *domain.Job { return s.last }

type countingMessenger struct {
	mu    sync.Mutex
	texts []string
}

func (m *countingMessenger) SendText(ctx context.Context, to, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, body)
	return "sid", nil
}

func (m *countingMessenger) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	return "sid", nil
}

func (m *countingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

func TestScheduleReplacesPriorTask(t *testing.T) {
	s := NewScheduler(&stubJobSource{}, &countingMessenger{}, time.Hour, zerolog.Nop())
	defer s.Shutdown()

	s.Schedule("user1")
	s.Schedule("user1")
	s.Schedule("user1")

	if !s.Active("user1") {
		t.Fatal("no live task after Schedule")
	}
	s.mu.Lock()
	n := len(s.tasks)
	s.mu.Unlock()
	if n != 1 {
		t.Fatalf("live tasks = %d, want 1", n)
	}
}

func TestScheduleDoesNotBlockOnWokenTask(t *testing.T) {
	// With a nanosecond interval every task is already awake and contending
	// for the scheduler mutex when the next Schedule call arrives. Schedule
	// must release the mutex before awaiting the prior task or the two
	// deadlock against each other.
	s := NewScheduler(&stubJobSource{}, &countingMessenger{}, time.Nanosecond, zerolog.Nop())
	defer s.Shutdown()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			s.Schedule("user1")
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Schedule blocked against a woken task")
	}
}

func TestCancelStopsTask(t *testing.T) {
	s := NewScheduler(&stubJobSource{}, &countingMessenger{}, time.Hour, zerolog.Nop())
	defer s.Shutdown()

	s.Schedule("user1")
	s.Cancel("user1")
	if s.Active("user1") {
		t.Fatal("task still active after Cancel")
	}

	// Cancelling an absent key is a no-op.
	s.Cancel("user1")
	s.Cancel("never-scheduled")
}

func TestReminderFires(t *testing.T) {
	messenger := &countingMessenger{}
	s := NewScheduler(&stubJobSource{}, messenger, 5*time.Millisecond, zerolog.Nop())
	defer s.Shutdown()

	s.Schedule("user1")

	deadline := time.Now().Add(time.Second)
	for messenger.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reminder never fired")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCancelledTaskNeverSends(t *testing.T) {
	messenger := &countingMessenger{}
	s := NewScheduler(&stubJobSource{}, messenger, 20*time.Millisecond, zerolog.Nop())
	defer s.Shutdown()

	s.Schedule("user1")
	s.Cancel("user1")

	time.Sleep(60 * time.Millisecond)
	if got := messenger.count(); got != 0 {
		t.Fatalf("cancelled task still sent %d messages", got)
	}
}

func TestMessageReferencesLastJob(t *testing.T) {
	src := &stubJobSource{last: &domain.Job{Prompt: "a cat surfing", Style: "anime"}}
	s := NewScheduler(src, &countingMessenger{}, time.Hour, zerolog.Nop())

	msg := s.message("user1")
	if !strings.Contains(msg, "a cat surfing") {
		t.Fatalf("message missing prompt: %q", msg)
	}
	if !strings.Contains(msg, "Anime") {
		t.Fatalf("message missing title-cased style: %q", msg)
	}
}

func TestMessageTruncatesLongPrompt(t *testing.T) {
	long := strings.Repeat("x", 80)
	src := &stubJobSource{last: &domain.Job{Prompt: long, Style: "cartoon"}}
	s := NewScheduler(src, &countingMessenger{}, time.Hour, zerolog.Nop())

	msg := s.message("user1")
	if strings.Contains(msg, long) {
		t.Fatalf("long prompt not truncated: %q", msg)
	}
	if !strings.Contains(msg, "...") {
		t.Fatalf("truncated prompt missing ellipsis: %q", msg)
	}
}

func TestMessageTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("🎥", 40)
	src := &stubJobSource{last: &domain.Job{Prompt: long, Style: "anime"}}
	s := NewScheduler(src, &countingMessenger{}, time.Hour, zerolog.Nop())

	msg := s.message("user1")
	if !utf8.ValidString(msg) {
		t.Fatalf("truncated message is not valid UTF-8: %q", msg)
	}
	if strings.Contains(msg, long) {
		t.Fatalf("long prompt not truncated: %q", msg)
	}
}

func TestMessageGenericWithoutHistory(t *testing.T) {
	s := NewScheduler(&stubJobSource{}, &countingMessenger{}, time.Hour, zerolog.Nop())
	if msg := s.message("user1"); !strings.Contains(msg, "been a while") {
		t.Fatalf("generic nudge = %q", msg)
	}
}
