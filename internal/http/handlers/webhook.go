package handlers

import (
	"net/http"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
)

// Webhook receives inbound WhatsApp messages from Twilio, runs them through
// the conversation handler and replies with a TwiML document.
func (a *App) Webhook(w http.ResponseWriter, r *http.Request) {
	if !messaging.ValidateSignature(r, a.TwilioAuthToken, a.TwilioWebhookURL) {
		a.Logger.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature mismatch")
	}

	in, err := messaging.ParseIncoming(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}
	if in.From == "" {
		a.error(w, http.StatusBadRequest, "missing sender")
		return
	}

	reply := a.Bot.HandleMessage(r.Context(), in)

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(messaging.AckTwiML(reply)))
}
