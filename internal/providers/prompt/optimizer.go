// Package prompt provides the LLM-backed prompt rewriter with a templated
// fallback for when no rewrite backend is configured.
package prompt

import (
	"context"
	"fmt"
)

// Optimizer rewrites a raw user prompt for better generation results.
type Optimizer interface {
	Optimize(ctx context.Context, userPrompt, style string) (string, error)
}

// StaticOptimizer is the fallback rewriter used when no API key is
// configured. It returns a deterministic templated string.
type StaticOptimizer struct{}

// NewStaticOptimizer creates the fallback rewriter.
func NewStaticOptimizer() *StaticOptimizer {
	return &StaticOptimizer{}
}

func (s *StaticOptimizer) Optimize(ctx context.Context, userPrompt, style string) (string, error) {
	if userPrompt == "" {
		return "", nil
	}
	return fmt.Sprintf("[Optimized Mock] A polished %s style prompt based on: %s", style, userPrompt), nil
}

var _ Optimizer = (*StaticOptimizer)(nil)
