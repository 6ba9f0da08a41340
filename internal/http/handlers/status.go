package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// Status reports the current state of a job, refreshing it from the backend
// first. Unknown ids return 404.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "missing job id")
		return
	}

	if _, err := a.Generator.Fetch(r.Context(), jobID); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", jobID).Msg("status refresh failed")
	}

	job := a.Store.Get(jobID)
	if job == nil {
		a.error(w, http.StatusNotFound, "job not found")
		return
	}

	resp := map[string]any{
		"job_id": job.ID,
		"status": string(job.Status),
		"cached": job.Cached,
	}
	if job.VideoLocation != "" {
		resp["video_url"] = job.VideoLocation
	}
	if job.Status == domain.JobStatusFailed && job.ErrorMessage != "" {
		resp["error"] = job.ErrorMessage
	}
	a.json(w, http.StatusOK, resp)
}
