package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// Video streams a generated clip. The compressed rendition is preferred;
// when no deliverable exists for the job the placeholder asset is served,
// and a missing placeholder yields 404. Range requests are honored.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "missing job id")
		return
	}

	path := ""
	for _, key := range []string{"compressed/" + jobID + ".mp4", "placeholder.mp4"} {
		candidate, err := a.Files.Resolve(key)
		if err != nil {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		a.error(w, http.StatusNotFound, "no video available for this job")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		a.Logger.Error().Err(err).Str("path", path).Msg("open video failed")
		a.error(w, http.StatusInternalServerError, "could not open video")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "could not stat video")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	// ServeContent handles Range headers: 206 with Content-Range for partial
	// requests, 200 with the full body otherwise.
	http.ServeContent(w, r, jobID+".mp4", info.ModTime(), f)
}
