package handlers

import (
	"net/http"
	"strings"
)

type feedbackRequest struct {
	JobID  string `json:"job_id"`
	Prompt string `json:"prompt"`
	Liked  bool   `json:"liked"`
}

// SubmitFeedback records a verdict for a delivered video and thanks the user
// over WhatsApp.
func (a *App) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.JobID = strings.TrimSpace(req.JobID)
	if req.JobID == "" {
		a.error(w, http.StatusBadRequest, "job_id must not be empty")
		return
	}

	if err := a.Feedback.Save(req.JobID, req.Prompt, req.Liked); err != nil {
		a.Logger.Error().Err(err).Str("job_id", req.JobID).Msg("save feedback failed")
		a.error(w, http.StatusInternalServerError, "could not record feedback")
		return
	}
	a.Store.MarkFeedbackReceived(req.JobID, req.Liked)

	reply := "🙏 Thanks for your feedback! Glad you liked it."
	if !req.Liked {
		reply = "🙏 Thanks for your feedback! We'll keep improving."
	}
	if job := a.Store.Get(req.JobID); job != nil && job.UserKey != "" && a.Messenger != nil {
		if _, err := a.Messenger.SendText(r.Context(), job.UserKey, reply); err != nil {
			a.Logger.Error().Err(err).Str("job_id", req.JobID).Msg("feedback notify failed")
			a.error(w, http.StatusInternalServerError, "feedback recorded but notification failed")
			return
		}
	}

	a.json(w, http.StatusOK, map[string]any{"ok": true, "job_id": req.JobID, "liked": req.Liked})
}
