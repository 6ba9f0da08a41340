package repo

import (
	"context"
	"fmt"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra"
)

var schemaStatements = []string{
	`
CREATE TABLE IF NOT EXISTS jobs (
    id BIGSERIAL PRIMARY KEY,
    user_key TEXT,
    job_id TEXT UNIQUE,
    prompt TEXT,
    final_prompt TEXT,
    status TEXT,
    video_location TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    style TEXT
);
`,
	`
CREATE TABLE IF NOT EXISTS requests (
    id BIGSERIAL PRIMARY KEY,
    user_key TEXT,
    job_id TEXT,
    prompt TEXT,
    style TEXT,
    status TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_user_key ON jobs (user_key, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status, created_at ASC);`,
}

// EnsureSchema creates the jobs and requests tables when missing.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	for _, stmt := range schemaStatements {
		if _, err := sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
