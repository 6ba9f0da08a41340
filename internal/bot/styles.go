package bot

import (
	"fmt"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
)

// styleAliases maps accepted reply tokens, including the emoji shortcuts
// offered in the style menu, to canonical style names.
var styleAliases = map[string]string{
	"anime":     "anime",
	"✨":         "anime",
	"cartoon":   "cartoon",
	"🎭":         "cartoon",
	"cyberpunk": "cyberpunk",
	"🤖":         "cyberpunk",
}

// resolveStyle maps a reply token to its canonical style name.
func resolveStyle(msg string) (string, error) {
	style, ok := styleAliases[msg]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidStyle, msg)
	}
	return style, nil
}

// Thumbs up/down reply tokens, including skin-tone variants.
var (
	positiveTokens = map[string]struct{}{
		"👍": {}, "👍🏻": {}, "👍🏼": {}, "👍🏽": {}, "👍🏾": {}, "👍🏿": {},
	}
	negativeTokens = map[string]struct{}{
		"👎": {}, "👎🏻": {}, "👎🏼": {}, "👎🏽": {}, "👎🏾": {}, "👎🏿": {},
	}
)
