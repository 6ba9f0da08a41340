package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPendingStyle JobStatus = "pending_style"
	JobStatusQueued       JobStatus = "queued"
	JobStatusProcessing   JobStatus = "processing"
	JobStatusSucceeded    JobStatus = "succeeded"
	JobStatusFailed       JobStatus = "failed"
	JobStatusNotFound     JobStatus = "not_found"
)

// Terminal reports whether the status is a final state. Terminal states are
// sticky: a job never moves out of succeeded or failed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// rank orders statuses for monotonic advancement. Queued and processing share
// a rank so an idempotent re-fetch of processing is permitted.
func (s JobStatus) rank() int {
	switch s {
	case JobStatusPendingStyle:
		return 0
	case JobStatusSucceeded, JobStatusFailed:
		return 2
	default:
		return 1
	}
}

// CanTransition reports whether moving from s to next is allowed.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.Terminal() {
		return s == next
	}
	return next.rank() >= s.rank()
}

// Job encapsulates one video generation attempt and its lifecycle record.
type Job struct {
	ID            string
	UserKey       string
	Fingerprint   string
	Status        JobStatus
	Prompt        string
	FinalPrompt   string
	Style         string
	VideoLocation string
	Provider      string
	ErrorMessage  string
	Cached        bool
	CreatedAt     time.Time

	FeedbackPending bool
	// Feedback is nil until the user replies with a verdict.
	Feedback *bool

	// Meta carries provider extras such as the raw output URL.
	Meta map[string]string
}

// SetVideoLocation records the deliverable locator. The location transitions
// from unset to set exactly once and is never overwritten afterwards.
func (j *Job) SetVideoLocation(loc string) bool {
	if j.VideoLocation != "" || loc == "" {
		return false
	}
	j.VideoLocation = loc
	return true
}

// MetaValue reads a meta entry, tolerating a nil map.
func (j *Job) MetaValue(key string) string {
	if j.Meta == nil {
		return ""
	}
	return j.Meta[key]
}

// SetMeta writes a meta entry, allocating the map on first use.
func (j *Job) SetMeta(key, value string) {
	if j.Meta == nil {
		j.Meta = make(map[string]string)
	}
	j.Meta[key] = value
}
