package handlers

import (
	"net/http"
	"strings"
	"time"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// Generate accepts a prompt over HTTP and queues it for generation. The
// request is persisted first so a restart cannot lose it; a consumer picks
// it up in arrival order.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
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

	id, err := a.Queue.Enqueue(r.Context(), apiUserKey, req.Prompt, style)
	if err != nil {
		a.Logger.Error().Err(err).Msg("enqueue failed")
		a.error(w, http.StatusInternalServerError, "could not queue request")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"request_id": id,
		"status":     "queued",
		"message":    "Your request has been queued and will be processed shortly.",
		"prompt":     req.Prompt,
		"style":      style,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
}
