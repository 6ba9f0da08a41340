package prompt

import (
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("a cat surfing a wave", "anime")
	b := Fingerprint("a cat surfing a wave", "anime")
	if a != b {
		t.Fatalf("Fingerprint() not deterministic: %q vs %q", a, b)
	}
	if len(a) != fingerprintLen {
		t.Fatalf("Fingerprint() length = %d, want %d", len(a), fingerprintLen)
	}
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	base := Fingerprint("a cat surfing a wave", "anime")
	if got := Fingerprint("a dog surfing a wave", "anime"); got == base {
		t.Fatal("different prompts produced the same fingerprint")
	}
	if got := Fingerprint("a cat surfing a wave", "cartoon"); got == base {
		t.Fatal("different styles produced the same fingerprint")
	}
}

func TestFingerprintTrimsWhitespace(t *testing.T) {
	if Fingerprint("  a cat surfing a wave  ", "anime") != Fingerprint("a cat surfing a wave", "anime") {
		t.Fatal("surrounding whitespace changed the fingerprint")
	}
}

func TestFingerprintUnicodeNormalization(t *testing.T) {
	// "é" composed vs decomposed should map to the same key.
	composed := Fingerprint("café scene", "anime")
	decomposed := Fingerprint("café scene", "anime")
	if composed != decomposed {
		t.Fatalf("NFC normalization not applied: %q vs %q", composed, decomposed)
	}
}

func TestComposeIncludesPreset(t *testing.T) {
	out := Compose("a cat surfing a wave", "cyberpunk")
	if !strings.Contains(out, "a cat surfing a wave") {
		t.Fatalf("composed prompt missing user text: %q", out)
	}
	if !strings.Contains(out, Presets["cyberpunk"].Guidance) {
		t.Fatalf("composed prompt missing guidance: %q", out)
	}
	if !strings.Contains(out, Presets["cyberpunk"].Negatives) {
		t.Fatalf("composed prompt missing negatives: %q", out)
	}
}

func TestComposeUnknownStyle(t *testing.T) {
	out := Compose("a cat", "watercolor")
	if !strings.Contains(out, "Style: watercolor") {
		t.Fatalf("unknown style should still compose: %q", out)
	}
}
