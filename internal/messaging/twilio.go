package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxBodyLen is the practical WhatsApp text limit enforced by Twilio.
const maxBodyLen = 1600

// TwilioOptions configures the Twilio messenger.
type TwilioOptions struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
	BaseURL      string
	HTTPClient   *http.Client
	Logger       zerolog.Logger
}

// Twilio sends WhatsApp messages through the Twilio REST API.
type Twilio struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
	logger     zerolog.Logger
}

// NewTwilio creates a Twilio messenger. Credentials are required.
func NewTwilio(opts TwilioOptions) (*Twilio, error) {
	if opts.AccountSID == "" || opts.AuthToken == "" {
		return nil, errors.New("twilio credentials missing")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.twilio.com/2010-04-01"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	from := opts.WhatsAppFrom
	if from == "" {
		from = "whatsapp:+14155238886"
	}
	return &Twilio{
		accountSID: opts.AccountSID,
		authToken:  opts.AuthToken,
		from:       normalizeWhatsApp(from),
		baseURL:    baseURL,
		client:     client,
		logger:     opts.Logger,
	}, nil
}

// SendText sends a WhatsApp text message and returns the message SID.
func (t *Twilio) SendText(ctx context.Context, to, body string) (string, error) {
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}
	form := url.Values{}
	form.Set("From", t.from)
	form.Set("To", normalizeWhatsApp(to))
	form.Set("Body", body)
	return t.send(ctx, form)
}

// SendMedia sends a WhatsApp media message. mediaURL must be publicly
// reachable HTTPS.
func (t *Twilio) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("From", t.from)
	form.Set("To", normalizeWhatsApp(to))
	form.Set("MediaUrl", mediaURL)
	if caption != "" {
		form.Set("Body", caption)
	}
	return t.send(ctx, form)
}

type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

func (t *Twilio) send(ctx context.Context, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("twilio: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio: send: %w", err)
	}
	defer resp.Body.Close()

	var decoded twilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("twilio: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := decoded.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("twilio: send rejected: %s", msg)
	}
	return decoded.SID, nil
}

// normalizeWhatsApp ensures the address carries the whatsapp: prefix Twilio
// expects.
func normalizeWhatsApp(to string) string {
	to = strings.TrimSpace(to)
	if to == "" || strings.HasPrefix(to, "whatsapp:") {
		return to
	}
	return "whatsapp:" + to
}

var _ Messenger = (*Twilio)(nil)
