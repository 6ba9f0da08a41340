// Package feedback appends user verdicts to a plain-text log file.
package feedback

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Log appends feedback entries to a single file, one line per verdict.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog creates a feedback log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Save appends one entry. The format is
// "2006-01-02 15:04:05 | job_id=... | prompt="..." | liked=true".
func (l *Log) Save(jobID, promptText string, liked bool) error {
	ts := time.Now().Format("2006-01-02 15:04:05")
	safe := strings.TrimSpace(strings.ReplaceAll(promptText, "\n", " "))
	line := fmt.Sprintf("%s | job_id=%s | prompt=%q | liked=%t\n", ts, jobID, safe, liked)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("feedback: ensure directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("feedback: open log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("feedback: append: %w", err)
	}
	return nil
}
