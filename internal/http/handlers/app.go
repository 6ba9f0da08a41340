// Package handlers implements the HTTP API: job submission, status polling,
// video streaming, prompt optimization, feedback and the WhatsApp webhook.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/bot"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/generator"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/jobstore"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
	promptprovider "github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/prompt"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/queue"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/storage"
)

// apiUserKey identifies submissions arriving through the HTTP API rather
// than WhatsApp.
const apiUserKey = "api-user"

// App is the handler container holding every collaborator the routes need.
type App struct {
	Store     *jobstore.Store
	Queue     *queue.Queue
	Generator *generator.Generator
	Bot       *bot.Handler
	Optimizer promptprovider.Optimizer
	Messenger messaging.Messenger
	Feedback  bot.FeedbackSink
	Files     *storage.FileStore
	Logger    zerolog.Logger

	ProviderName     string
	TwilioAuthToken  string
	TwilioWebhookURL string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"error": message})
}

// Health reports liveness and the active provider.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"ok": true, "provider": a.ProviderName})
}
