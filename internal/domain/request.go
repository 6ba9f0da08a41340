package domain

import "time"

// RequestStatus enumerates queue entry states.
type RequestStatus string

const (
	RequestStatusQueued     RequestStatus = "queued"
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusDone       RequestStatus = "done"
	RequestStatusFailed     RequestStatus = "failed"
)

// Request is one queued intake event, prior to job dispatch. After dispatch
// the derived Job becomes the system of record and the request row is only a
// completion marker.
type Request struct {
	ID        int64
	UserKey   string
	JobID     string
	Prompt    string
	Style     string
	Status    RequestStatus
	CreatedAt time.Time
}
