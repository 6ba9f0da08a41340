package messaging

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"net/http"
	"sort"
	"strings"
)

// ParseIncoming extracts the inbound message from Twilio's form-encoded
// webhook payload.
func ParseIncoming(r *http.Request) (*Inbound, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &Inbound{
		From:      r.PostForm.Get("From"),
		Body:      strings.TrimSpace(r.PostForm.Get("Body")),
		MessageID: r.PostForm.Get("MessageSid"),
	}, nil
}

// ValidateSignature checks the X-Twilio-Signature header: HMAC-SHA1 over the
// webhook URL concatenated with the sorted form parameters. The result is
// advisory; callers log a warning and continue on failure. An empty auth
// token skips validation.
func ValidateSignature(r *http.Request, authToken, webhookURL string) bool {
	if authToken == "" {
		return true
	}
	if err := r.ParseForm(); err != nil {
		return false
	}

	target := webhookURL
	if target == "" {
		scheme := "https"
		if r.TLS == nil {
			scheme = "http"
		}
		target = scheme + "://" + r.Host + r.URL.RequestURI()
	}

	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(target)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(r.PostForm.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(sb.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(r.Header.Get("X-Twilio-Signature")))
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// AckTwiML renders the immediate-reply TwiML document for a webhook response.
func AckTwiML(text string) string {
	out, err := xml.Marshal(twimlResponse{Message: text})
	if err != nil {
		return "<Response></Response>"
	}
	return xml.Header + string(out)
}
