package domain

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"queued to processing", JobStatusQueued, JobStatusProcessing, true},
		{"processing to succeeded", JobStatusProcessing, JobStatusSucceeded, true},
		{"processing to failed", JobStatusProcessing, JobStatusFailed, true},
		{"processing repeat is idempotent", JobStatusProcessing, JobStatusProcessing, true},
		{"pending style to queued", JobStatusPendingStyle, JobStatusQueued, true},
		{"succeeded stays succeeded", JobStatusSucceeded, JobStatusSucceeded, true},
		{"succeeded never regresses", JobStatusSucceeded, JobStatusProcessing, false},
		{"succeeded never flips to failed", JobStatusSucceeded, JobStatusFailed, false},
		{"failed never flips to succeeded", JobStatusFailed, JobStatusSucceeded, false},
		{"queued never drops to pending style", JobStatusQueued, JobStatusPendingStyle, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for _, s := range []JobStatus{JobStatusSucceeded, JobStatusFailed} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []JobStatus{JobStatusPendingStyle, JobStatusQueued, JobStatusProcessing, JobStatusNotFound} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestSetVideoLocationOnce(t *testing.T) {
	j := &Job{}
	if !j.SetVideoLocation("/video/a") {
		t.Fatal("first SetVideoLocation should succeed")
	}
	if j.SetVideoLocation("/video/b") {
		t.Fatal("second SetVideoLocation should be rejected")
	}
	if j.VideoLocation != "/video/a" {
		t.Fatalf("VideoLocation = %q, want /video/a", j.VideoLocation)
	}
	if j.SetVideoLocation("") {
		t.Fatal("empty location should never be set")
	}
}

func TestJobMeta(t *testing.T) {
	j := &Job{}
	if got := j.MetaValue("url"); got != "" {
		t.Fatalf("MetaValue on nil map = %q, want empty", got)
	}
	j.SetMeta("url", "https://cdn/x.mp4")
	if got := j.MetaValue("url"); got != "https://cdn/x.mp4" {
		t.Fatalf("MetaValue = %q", got)
	}
}
