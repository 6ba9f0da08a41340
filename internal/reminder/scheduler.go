// Package reminder runs the per-user re-engagement tasks that nudge users
// after a period of inactivity.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
)

const promptSnippetLen = 30

// LastJobSource is the read-only slice of the job store the scheduler needs.
type LastJobSource interface {
	LastForUser(userKey string) *domain.Job
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns at most one live reminder task per user key. Starting a new
// task first cancels and awaits termination of any prior one for that key.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task

	store     LastJobSource
	messenger messaging.Messenger
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a Scheduler sending nudges after interval of idleness.
func NewScheduler(store LastJobSource, messenger messaging.Messenger, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		tasks:     make(map[string]*task),
		store:     store,
		messenger: messenger,
		interval:  interval,
		logger:    logger,
	}
}

// Schedule starts or restarts the periodic reminder for a user. The prior
// task, if any, is cancelled and awaited with the mutex released: a woken
// task needs the mutex inside isCurrent before it can exit, so awaiting it
// under the lock would deadlock. Only the task registered in the map may
// send, which keeps the one-task-per-key invariant even when Schedule calls
// race each other.
func (s *Scheduler) Schedule(userKey string) {
	s.mu.Lock()
	prev, ok := s.tasks[userKey]
	if ok {
		delete(s.tasks, userKey)
	}
	s.mu.Unlock()

	if ok {
		prev.cancel()
		<-prev.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if stale, ok := s.tasks[userKey]; ok {
		// A concurrent Schedule registered in the window; supersede it.
		delete(s.tasks, userKey)
		defer func() {
			stale.cancel()
			<-stale.done
		}()
	}
	s.tasks[userKey] = t
	s.mu.Unlock()

	go s.loop(ctx, userKey, t)
}

// Cancel removes and cancels the user's reminder task, if any. Cancellation
// is cooperative: the task observes it at its sleep point and exits without
// sending a stray message.
func (s *Scheduler) Cancel(userKey string) {
	s.mu.Lock()
	t, ok := s.tasks[userKey]
	if ok {
		delete(s.tasks, userKey)
	}
	s.mu.Unlock()

	if ok {
		t.cancel()
		<-t.done
	}
}

// Shutdown cancels every live task. Called at process teardown.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	tasks := make([]*task, 0, len(s.tasks))
	for key, t := range s.tasks {
		tasks = append(tasks, t)
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
		<-t.done
	}
}

// Active reports whether a live task exists for the user key.
func (s *Scheduler) Active(userKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[userKey]
	return ok
}

func (s *Scheduler) loop(ctx context.Context, userKey string, t *task) {
	defer close(t.done)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("user_key", userKey).Msg("reminder: cancelled")
			return
		case <-time.After(s.interval):
		}

		// A replacement task may have been scheduled while we slept; only
		// the registered task for the key may send.
		if !s.isCurrent(userKey, t) {
			return
		}

		if _, err := s.messenger.SendText(ctx, userKey, s.message(userKey)); err != nil {
			s.logger.Warn().Err(err).Str("user_key", userKey).Msg("reminder: send failed")
		}
	}
}

func (s *Scheduler) isCurrent(userKey string, t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[userKey] == t
}

// message builds the nudge, referencing the user's last job when one exists.
func (s *Scheduler) message(userKey string) string {
	last := s.store.LastForUser(userKey)
	if last == nil || last.Style == "" {
		return "👋 Hey champ, it's been a while since we made a video.\nGot a new idea for me? 🎥✨"
	}

	snippet := last.Prompt
	// Truncate on rune boundaries so multibyte prompts stay valid UTF-8.
	if runes := []rune(snippet); len(runes) > promptSnippetLen {
		snippet = string(runes[:promptSnippetLen/2]) + "..."
	}
	if snippet == "" {
		snippet = "your idea"
	}
	styleName := cases.Title(language.Und).String(last.Style)

	return "👋 Hey! Remember your last video on \"" + snippet + "\" with the " + styleName + " style?\n" +
		"Want me to whip up another one? 🚀\nWhat are we waiting for!!!"
}
