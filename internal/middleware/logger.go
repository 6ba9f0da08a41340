package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra/geoip"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger logs one line per request. When a GeoIP resolver is configured the
// caller's country code is attached for traffic analysis.
func Logger(l zerolog.Logger, countries geoip.CountryResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			evt := l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("duration", time.Since(start))
			if countries != nil {
				host := r.RemoteAddr
				if h, _, err := net.SplitHostPort(host); err == nil {
					host = h
				}
				if code, err := countries.CountryCode(host); err == nil && code != "" {
					evt = evt.Str("country", code)
				}
			}
			evt.Msg("http request")
		})
	}
}
