package handlers

import (
	"net/http"
	"strings"
)

type optimizeRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// OptimizePrompt rewrites a raw prompt into a richer generation prompt.
func (a *App) OptimizePrompt(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "prompt must not be empty")
		return
	}
	style := strings.TrimSpace(strings.ToLower(req.Style))
	if style == "" {
		style = "cinematic"
	}

	optimized, err := a.Optimizer.Optimize(r.Context(), req.Prompt, style)
	if err != nil {
		a.Logger.Error().Err(err).Msg("prompt optimization failed")
		a.error(w, http.StatusInternalServerError, "optimization failed")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"original_prompt":  req.Prompt,
		"optimized_prompt": optimized,
		"style":            style,
	})
}
