package prompt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticOptimizer(t *testing.T) {
	s := NewStaticOptimizer()
	out, err := s.Optimize(context.Background(), "a cat surfing", "anime")
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !strings.Contains(out, "a cat surfing") || !strings.Contains(out, "anime") {
		t.Fatalf("out = %q", out)
	}

	if out, _ := s.Optimize(context.Background(), "", "anime"); out != "" {
		t.Fatalf("empty prompt produced %q", out)
	}
}

func TestOpenAIOptimizerRewrites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("auth = %q", got)
		}
		var payload openAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(payload.Messages) != 2 || !strings.Contains(payload.Messages[1].Content, "a cat surfing") {
			t.Fatalf("messages = %+v", payload.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  A cinematic cat rides a huge wave.  "}},
			},
		})
	}))
	defer srv.Close()

	o, err := NewOpenAIOptimizer(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIOptimizer: %v", err)
	}

	out, err := o.Optimize(context.Background(), "a cat surfing", "anime")
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if out != "A cinematic cat rides a huge wave." {
		t.Fatalf("out = %q", out)
	}
}

func TestOpenAIOptimizerFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var fallbackReason string
	o, err := NewOpenAIOptimizer(OpenAIOptions{
		APIKey:     "sk-test",
		BaseURL:    srv.URL,
		OnFallback: func(reason string, err error) { fallbackReason = reason },
	})
	if err != nil {
		t.Fatalf("NewOpenAIOptimizer: %v", err)
	}

	out, err := o.Optimize(context.Background(), "a cat surfing", "anime")
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !strings.Contains(out, "a cat surfing") {
		t.Fatalf("fallback out = %q", out)
	}
	if fallbackReason != "openai_error" {
		t.Fatalf("fallback reason = %q", fallbackReason)
	}
}

func TestOpenAIOptimizerRequiresKey(t *testing.T) {
	if _, err := NewOpenAIOptimizer(OpenAIOptions{}); err == nil {
		t.Fatal("missing api key accepted")
	}
}
