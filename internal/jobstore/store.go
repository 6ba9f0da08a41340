// Package jobstore holds the in-memory job index shared by the queue
// consumer, the delivery workers and the HTTP handlers. Records are mirrored
// to the jobs table best-effort; the in-memory view stays authoritative for
// the lifetime of the process and is never blocked by a storage fault.
package jobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// Persistence is the slice of the job repository the store needs.
type Persistence interface {
	Insert(ctx context.Context, job *domain.Job) error
	UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, videoLocation string) error
	ListByUser(ctx context.Context, userKey string, limit int) ([]domain.Job, error)
}

// PendingPrompt is the transient per-user record held between receiving a
// prompt and the user picking a style. It deliberately is not a Job: no
// backend id exists yet and nothing about it is persisted.
type PendingPrompt struct {
	Prompt    string
	CreatedAt time.Time
}

// Store indexes jobs by id, fingerprint and user key.
type Store struct {
	mu      sync.Mutex
	byID    map[string]*domain.Job
	byFP    map[string]*domain.Job
	byUser  map[string][]string
	pending map[string]*PendingPrompt

	db     Persistence
	logger zerolog.Logger
}

// New creates a Store. db may be nil, in which case nothing is mirrored.
func New(db Persistence, logger zerolog.Logger) *Store {
	return &Store{
		byID:    make(map[string]*domain.Job),
		byFP:    make(map[string]*domain.Job),
		byUser:  make(map[string][]string),
		pending: make(map[string]*PendingPrompt),
		db:      db,
		logger:  logger,
	}
}

// Put inserts or replaces the record by id and indexes it by fingerprint.
// When userKey is non-empty the id is appended to that user's job list
// (idempotent when already the last entry) and the record is mirrored to the
// backing table asynchronously with insert-if-absent semantics.
func (s *Store) Put(job *domain.Job, userKey string) {
	if job == nil || job.ID == "" {
		return
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	rec := cloneJob(job)
	if userKey != "" {
		rec.UserKey = userKey
	}

	s.mu.Lock()
	s.byID[rec.ID] = rec
	if rec.Fingerprint != "" {
		s.byFP[rec.Fingerprint] = rec
	}
	if userKey != "" {
		s.appendUserJobLocked(userKey, rec.ID)
	}
	snapshot := cloneJob(rec)
	s.mu.Unlock()

	if s.db != nil && userKey != "" {
		go s.persistInsert(snapshot)
	}
}

func (s *Store) persistInsert(job *domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.Insert(ctx, job); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("jobstore: persist insert failed")
	}
}

// AppendUserJob records a job id as the user's latest without re-inserting
// the record. Appending the same id twice in a row is a no-op.
func (s *Store) AppendUserJob(userKey, jobID string) {
	if userKey == "" || jobID == "" {
		return
	}
	s.mu.Lock()
	s.appendUserJobLocked(userKey, jobID)
	s.mu.Unlock()
}

func (s *Store) appendUserJobLocked(userKey, jobID string) {
	list := s.byUser[userKey]
	if len(list) == 0 || list[len(list)-1] != jobID {
		s.byUser[userKey] = append(list, jobID)
	}
}

// Get returns a snapshot of the record, or nil when absent.
func (s *Store) Get(jobID string) *domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneJob(s.byID[jobID])
}

// GetByFingerprint returns the most recently put record for the fingerprint.
// Callers must still check Status == succeeded before treating it as a
// reusable cache hit.
func (s *Store) GetByFingerprint(fp string) *domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneJob(s.byFP[fp])
}

// UpdateStatus advances the in-memory record and mirrors the change to
// storage. Terminal states are sticky and the video location is set at most
// once; disallowed transitions are dropped silently so an idempotent
// re-fetch of processing stays harmless. Persistence errors are logged only.
func (s *Store) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, videoLocation string) *domain.Job {
	s.mu.Lock()
	rec, ok := s.byID[jobID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if rec.Status.CanTransition(status) {
		rec.Status = status
	}
	rec.SetVideoLocation(videoLocation)
	snapshot := cloneJob(rec)
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.UpdateStatus(ctx, jobID, snapshot.Status, snapshot.VideoLocation); err != nil {
			s.logger.Warn().Err(err).Str("job_id", jobID).Msg("jobstore: persist status failed")
		}
	}
	return snapshot
}

// SetJobMeta attaches a meta entry to the in-memory record.
func (s *Store) SetJobMeta(jobID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.byID[jobID]; ok {
		rec.SetMeta(key, value)
	}
}

// MarkFeedbackPending flags the job as awaiting a verdict. No-op if absent.
func (s *Store) MarkFeedbackPending(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.byID[jobID]; ok {
		rec.FeedbackPending = true
	}
}

// MarkFeedbackReceived records the verdict and clears the pending flag.
func (s *Store) MarkFeedbackReceived(jobID string, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.byID[jobID]; ok {
		rec.FeedbackPending = false
		v := liked
		rec.Feedback = &v
	}
}

// LastForUser returns a snapshot of the user's most recent job, or nil.
func (s *Store) LastForUser(userKey string) *domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byUser[userKey]
	if len(list) == 0 {
		return nil
	}
	return cloneJob(s.byID[list[len(list)-1]])
}

// SetPendingPrompt stores the prompt a user sent before choosing a style,
// replacing any prior pending prompt for that user.
func (s *Store) SetPendingPrompt(userKey, promptText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userKey] = &PendingPrompt{Prompt: promptText, CreatedAt: time.Now().UTC()}
}

// PendingPrompt returns the user's awaiting-style prompt, or nil.
func (s *Store) PendingPrompt(userKey string) *PendingPrompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending[userKey]
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// ClearPendingPrompt drops the awaiting-style state once a style is chosen.
func (s *Store) ClearPendingPrompt(userKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userKey)
}

// HistoryForUser merges the in-memory per-user list with persisted rows,
// deduplicated by job id with the in-memory record winning, sorted newest
// first and truncated to limit.
func (s *Store) HistoryForUser(ctx context.Context, userKey string, limit int) []domain.Job {
	if limit <= 0 {
		return nil
	}

	s.mu.Lock()
	var recs []domain.Job
	seen := make(map[string]struct{})
	for _, id := range s.byUser[userKey] {
		if rec, ok := s.byID[id]; ok {
			recs = append(recs, *cloneJob(rec))
			seen[id] = struct{}{}
		}
	}
	s.mu.Unlock()

	if s.db != nil {
		rows, err := s.db.ListByUser(ctx, userKey, limit)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_key", userKey).Msg("jobstore: history lookup failed")
		} else {
			for _, row := range rows {
				if _, ok := seen[row.ID]; ok {
					continue
				}
				recs = append(recs, row)
			}
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func cloneJob(job *domain.Job) *domain.Job {
	if job == nil {
		return nil
	}
	cp := *job
	if job.Meta != nil {
		cp.Meta = make(map[string]string, len(job.Meta))
		for k, v := range job.Meta {
			cp.Meta[k] = v
		}
	}
	if job.Feedback != nil {
		v := *job.Feedback
		cp.Feedback = &v
	}
	return &cp
}
