package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/generator"
)

const historyLimit = 5

func (h *Handler) guideText() string {
	return "📖 *Peppo AI Guide*\n\n" +
		"Commands you can use:\n" +
		"• `/guide` – Show this help message\n" +
		"• `/status` – Check your last video generation status\n" +
		"• `/history` – View your recent requests\n\n" +
		"Or simply send me a prompt and I'll generate a short video!"
}

// statusText reports the user's most recent job, refreshing its status from
// the backend and falling back to the stored record when the fetch fails.
func (h *Handler) statusText(ctx context.Context, userKey string) string {
	rec := h.store.LastForUser(userKey)
	if rec == nil {
		return "ℹ️ You don't have any recent jobs. Send me a prompt to start!"
	}

	status := rec.Status
	if pj, err := h.generator.Fetch(ctx, rec.ID); err == nil {
		status = pj.Status
	}

	switch status {
	case domain.JobStatusSucceeded:
		link := rec.VideoLocation
		if link == "" {
			link = generator.ProviderOutputURL(rec)
		}
		if link == "" {
			link = "[no public URL]"
		}
		return fmt.Sprintf("✅ Job `%s` finished!\nVideo: %s", rec.ID, link)
	case domain.JobStatusFailed:
		return fmt.Sprintf("❌ Job `%s` failed. Try again or send a different prompt.", rec.ID)
	default:
		return fmt.Sprintf("⏳ Job `%s` is still %s — hang tight!", rec.ID, status)
	}
}

// historyText lists the user's most recent jobs, newest first.
func (h *Handler) historyText(ctx context.Context, userKey string) string {
	recs := h.store.HistoryForUser(ctx, userKey, historyLimit)
	if len(recs) == 0 {
		return "ℹ️ No history yet. Send me a prompt and I'll create your first video!"
	}

	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		ts := "unknown"
		if !r.CreatedAt.IsZero() {
			ts = r.CreatedAt.Format("2006-01-02 15:04")
		}

		promptShort := strings.ReplaceAll(r.Prompt, "\n", " ")
		if runes := []rune(promptShort); len(runes) > 60 {
			promptShort = string(runes[:60])
		}

		var flag string
		switch {
		case r.Status == domain.JobStatusSucceeded && (r.VideoLocation != "" || generator.ProviderOutputURL(&r) != ""):
			flag = "✅"
		case r.Status == domain.JobStatusProcessing:
			flag = "⏳"
		case r.Status == domain.JobStatusFailed:
			flag = "⚠️"
		}

		styleTxt := ""
		if r.Style != "" {
			styleTxt = " [" + r.Style + "]"
		}

		jobShort := r.ID
		if len(jobShort) > 8 {
			jobShort = jobShort[:8]
		}

		line := fmt.Sprintf("%s | %s | %s %s | %s |%s", ts, jobShort, flag, r.Status, promptShort, styleTxt)
		if r.Status == domain.JobStatusSucceeded {
			if link := firstNonEmpty(r.VideoLocation, generator.ProviderOutputURL(&r)); link != "" {
				line += "\n   🔗 " + link
			}
		}
		lines = append(lines, line)
	}

	return "📜 Your recent jobs (newest first):\n\n" + strings.Join(lines, "\n\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
