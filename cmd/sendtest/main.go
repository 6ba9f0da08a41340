// Command sendtest sends a single WhatsApp message through the configured
// Twilio account. Useful for verifying credentials and the sandbox opt-in.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
)

func main() {
	to := flag.String("to", "", "recipient number, e.g. whatsapp:+15551234567 (defaults to TWILIO_TEST_TO)")
	body := flag.String("body", "👋 Test message from the video bot.", "message body")
	flag.Parse()

	_ = godotenv.Load()
	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	recipient := *to
	if recipient == "" {
		recipient = os.Getenv("TWILIO_TEST_TO")
	}
	if recipient == "" {
		logger.Fatal().Msg("no recipient: pass -to or set TWILIO_TEST_TO")
	}

	messenger, err := messaging.NewTwilio(messaging.TwilioOptions{
		AccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		WhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("twilio not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sid, err := messenger.SendText(ctx, recipient, *body)
	if err != nil {
		logger.Fatal().Err(err).Msg("send failed")
	}
	logger.Info().Str("sid", sid).Str("to", recipient).Msg("message sent")
}
