package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/http/handlers"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra/geoip"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/middleware"
)

// RouterOptions tunes the middleware stack around the handlers.
type RouterOptions struct {
	Logger          zerolog.Logger
	Countries       geoip.CountryResolver
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger, opts.Countries),
		middleware.CORS(opts.AllowedOrigins),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)
	r.Post("/generate", app.Generate)
	r.Get("/status/{job_id}", app.Status)
	r.Get("/video/{job_id}", app.Video)
	r.Post("/optimize_prompt", app.OptimizePrompt)
	r.Post("/feedback", app.SubmitFeedback)
	r.Post("/webhook/whatsapp", app.Webhook)

	return r
}
