// Package messaging adapts the Twilio WhatsApp API: outbound text/media
// sends, inbound webhook parsing and the advisory signature check.
package messaging

import "context"

// Messenger is the outbound messaging capability consumed by the delivery
// worker, the reminder scheduler and the conversation handler.
type Messenger interface {
	SendText(ctx context.Context, to, body string) (string, error)
	SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error)
}

// Inbound is one parsed webhook message.
type Inbound struct {
	From      string
	Body      string
	MessageID string
}
