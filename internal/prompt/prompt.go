// Package prompt provides the style preset table, final prompt composition
// and the content-addressed fingerprint used for cache lookups.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fingerprintLen is the number of hex characters kept from the digest. The
// fingerprint is only a lookup key and is never decoded.
const fingerprintLen = 16

// Preset holds the style-specific guidance appended to user prompts.
type Preset struct {
	Guidance  string
	Negatives string
}

// Presets maps canonical style names to their visual guidance.
var Presets = map[string]Preset{
	"anime": {
		Guidance:  "stylized anime look, dynamic motion lines, vibrant palette, cel shading",
		Negatives: "avoid photorealism, avoid noise",
	},
	"cartoon": {
		Guidance:  "2D cartoon style, exaggerated expressions, bold outlines, bright flat colors",
		Negatives: "no realism, avoid noise",
	},
	"cyberpunk": {
		Guidance:  "futuristic neon lights, dystopian cityscapes, high contrast, holograms, sci-fi aesthetic",
		Negatives: "avoid natural landscapes, avoid medieval themes",
	},
}

// Compose appends the style guidance to a user prompt. Unknown styles
// compose with empty guidance rather than failing.
func Compose(userPrompt, style string) string {
	p := Presets[style]
	return fmt.Sprintf("%s. Style: %s. Visual guidance: %s. Negative prompts: %s.", userPrompt, style, p.Guidance, p.Negatives)
}

// Fingerprint returns a deterministic short hash of (prompt, style). The
// prompt is NFC-normalized and trimmed so visually identical inputs map to
// the same cache key.
func Fingerprint(userPrompt, style string) string {
	normalized := norm.NFC.String(strings.TrimSpace(userPrompt))
	sum := sha256.Sum256([]byte(normalized + "|" + style))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
