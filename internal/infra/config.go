package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	AppOrigin     string
	PublicBaseURL string
	StoragePath   string
	GeoIPDBPath   string

	VideoProvider    string
	ModelsLabAPIKey  string
	ModelsLabBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioWebhookURL   string
	TwilioTestTo       string

	FeedbackLogPath  string
	ReminderInterval time.Duration
	QueuePollEvery   time.Duration
	PollMaxAttempts  int
	PollBackoff      time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AppOrigin:     getEnv("APP_ORIGIN", "*"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		StoragePath:   getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),

		VideoProvider:    strings.ToLower(getEnv("VIDEO_PROVIDER", "mock")),
		ModelsLabAPIKey:  os.Getenv("MODELSLAB_API_KEY"),
		ModelsLabBaseURL: getEnv("MODELSLAB_BASE_URL", "https://api.modelslab.com/v1/video"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", "whatsapp:+14155238886"),
		TwilioWebhookURL:   os.Getenv("TWILIO_WEBHOOK_URL"),
		TwilioTestTo:       os.Getenv("TWILIO_TEST_TO"),

		FeedbackLogPath:  getEnv("FEEDBACK_LOG_PATH", "./storage/user_feedback.txt"),
		ReminderInterval: time.Second * time.Duration(getEnvInt("REMINDER_INTERVAL_SECONDS", 900)),
		QueuePollEvery:   time.Second * time.Duration(getEnvInt("QUEUE_POLL_SECONDS", 2)),
		PollMaxAttempts:  getEnvInt("POLL_MAX_ATTEMPTS", 60),
		PollBackoff:      time.Millisecond * time.Duration(getEnvInt("POLL_BACKOFF_MS", 1500)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
