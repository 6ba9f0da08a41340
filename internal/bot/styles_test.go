package bot

import (
	"errors"
	"testing"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

func TestResolveStyle(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"anime", "anime"},
		{"✨", "anime"},
		{"cartoon", "cartoon"},
		{"🎭", "cartoon"},
		{"cyberpunk", "cyberpunk"},
		{"🤖", "cyberpunk"},
	}
	for _, tt := range tests {
		got, err := resolveStyle(tt.token)
		if err != nil {
			t.Fatalf("resolveStyle(%q) error: %v", tt.token, err)
		}
		if got != tt.want {
			t.Fatalf("resolveStyle(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestResolveStyleRejectsUnknownToken(t *testing.T) {
	if _, err := resolveStyle("watercolor"); !errors.Is(err, domain.ErrInvalidStyle) {
		t.Fatalf("resolveStyle(\"watercolor\") error = %v, want ErrInvalidStyle", err)
	}
}
