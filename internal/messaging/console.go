package messaging

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Console is a development messenger that logs outbound messages instead of
// sending them. It is used when Twilio credentials are not configured.
type Console struct {
	logger zerolog.Logger
	seq    atomic.Int64
}

// NewConsole creates a Console messenger.
func NewConsole(logger zerolog.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) SendText(ctx context.Context, to, body string) (string, error) {
	c.logger.Info().Str("to", to).Str("body", body).Msg("console messenger: text")
	return fmt.Sprintf("console-%d", c.seq.Add(1)), nil
}

func (c *Console) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	c.logger.Info().Str("to", to).Str("media_url", mediaURL).Str("caption", caption).Msg("console messenger: media")
	return fmt.Sprintf("console-%d", c.seq.Add(1)), nil
}
