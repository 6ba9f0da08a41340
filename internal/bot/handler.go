// Package bot implements the per-user WhatsApp conversation flow: prompt
// intake, style selection, feedback collection and the chat commands.
package bot

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/generator"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/jobstore"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/prompt"
	promptprovider "github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/prompt"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/reminder"
)

// minPromptLength is the length under which the short-prompt warning is
// prefixed to the dispatch acknowledgement.
const minPromptLength = 12

// FeedbackSink records accepted verdicts.
type FeedbackSink interface {
	Save(jobID, promptText string, liked bool) error
}

// Dispatcher spawns the delivery worker for a dispatched job.
type Dispatcher func(jobID, userKey string)

// Options wires a Handler.
type Options struct {
	Store         *jobstore.Store
	Generator     *generator.Generator
	Optimizer     promptprovider.Optimizer
	Reminders     *reminder.Scheduler
	Feedback      FeedbackSink
	Spawn         Dispatcher
	PublicBaseURL string
	Logger        zerolog.Logger
}

// Handler is the per-user conversation state machine. State is derived from
// the job store: a pending prompt means awaiting a style choice, a last job
// with feedback pending means awaiting a verdict, otherwise idle.
type Handler struct {
	store         *jobstore.Store
	generator     *generator.Generator
	optimizer     promptprovider.Optimizer
	reminders     *reminder.Scheduler
	feedback      FeedbackSink
	spawn         Dispatcher
	publicBaseURL string
	logger        zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	return &Handler{
		store:         opts.Store,
		generator:     opts.Generator,
		optimizer:     opts.Optimizer,
		reminders:     opts.Reminders,
		feedback:      opts.Feedback,
		spawn:         opts.Spawn,
		publicBaseURL: opts.PublicBaseURL,
		logger:        opts.Logger,
	}
}

// HandleMessage processes one inbound message and returns the immediate
// reply text. Any inbound activity cancels a pending reminder for the user
// before further processing, regardless of which branch is taken.
func (h *Handler) HandleMessage(ctx context.Context, in *messaging.Inbound) string {
	userKey := in.From
	body := strings.TrimSpace(in.Body)

	if h.reminders != nil {
		h.reminders.Cancel(userKey)
	}

	h.logger.Info().Str("user_key", userKey).Str("body", body).Msg("bot: inbound message")

	if body == "" {
		return "❌ Please send a valid prompt."
	}

	msg := strings.ToLower(body)

	switch msg {
	case "/help", "help", "/guide", "guide":
		return h.guideText()
	case "/status", "status":
		return h.statusText(ctx, userKey)
	case "/history", "history":
		return h.historyText(ctx, userKey)
	}

	if pending := h.store.PendingPrompt(userKey); pending != nil {
		return h.handleStyleChoice(ctx, userKey, pending, msg)
	}

	if last := h.store.LastForUser(userKey); last != nil && last.FeedbackPending {
		return h.handleFeedback(userKey, last.ID, last.Prompt, msg)
	}

	// New prompt: hold it and ask for a style.
	h.store.SetPendingPrompt(userKey, body)
	return "Nice prompt you got there buddy.\n\n" +
		"Choose your art style 🎨:\n• Anime (✨)\n• Cartoon (🎭)\n• Cyberpunk (🤖)"
}

func (h *Handler) handleStyleChoice(ctx context.Context, userKey string, pending *jobstore.PendingPrompt, msg string) string {
	chosen, err := resolveStyle(msg)
	if err != nil {
		h.logger.Debug().Err(err).Str("user_key", userKey).Msg("bot: style rejected")
		return "⚠️ Please choose a valid style: anime(✨), cartoon(🎭), or cyberpunk(🤖)."
	}

	// Cache check before submitting a new job.
	fp := prompt.Fingerprint(pending.Prompt, chosen)
	if cached := h.store.GetByFingerprint(fp); cached != nil && cached.Status == domain.JobStatusSucceeded && cached.VideoLocation != "" {
		h.store.ClearPendingPrompt(userKey)
		videoURL := cached.VideoLocation
		if h.publicBaseURL != "" {
			videoURL = h.publicBaseURL + videoURL
		}
		return "✅ Video fetched from cache!\n\n🔗 " + videoURL
	}

	warning := ""
	if len(strings.TrimSpace(pending.Prompt)) < minPromptLength {
		warning = "⚠️ Your prompt is a bit short.\n" +
			"Next time make sure to have a longer prompt.\n" +
			"Don't worry — prompt optimizing is on us. ✅\n\n"
	}

	finalPrompt, err := h.optimizer.Optimize(ctx, pending.Prompt, chosen)
	if err != nil || finalPrompt == "" {
		finalPrompt = pending.Prompt
	}

	job, cached, err := h.generator.Submit(ctx, generator.SubmitParams{
		Prompt:      pending.Prompt,
		FinalPrompt: finalPrompt,
		Style:       chosen,
		UserKey:     userKey,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_key", userKey).Msg("bot: submit failed")
		h.store.ClearPendingPrompt(userKey)
		return "⚠️ Video generation failed: " + err.Error()
	}

	h.store.ClearPendingPrompt(userKey)
	h.store.AppendUserJob(userKey, job.ID)

	if cached && job.VideoLocation != "" {
		videoURL := job.VideoLocation
		if h.publicBaseURL != "" {
			videoURL = h.publicBaseURL + videoURL
		}
		return "✅ Video fetched from cache!\n\n🔗 " + videoURL
	}

	// A cached record without a stored location still needs delivery, so the
	// worker is spawned for those too.
	if h.spawn != nil {
		h.spawn(job.ID, userKey)
	}

	return warning + "✅ Got it! Generating a video for: optimized prompt for [ " + finalPrompt + " in " + chosen + " style ]"
}

func (h *Handler) handleFeedback(userKey, jobID, jobPrompt, msg string) string {
	liked, accepted := feedbackVerdict(msg)
	if !accepted {
		return "⚠️ Please reply with 👍 or 👎 to give feedback before generating a new video."
	}

	if jobPrompt == "" {
		jobPrompt = "(unknown)"
	}
	if h.feedback != nil {
		if err := h.feedback.Save(jobID, jobPrompt, liked); err != nil {
			h.logger.Warn().Err(err).Str("job_id", jobID).Msg("bot: feedback save failed")
		}
	}
	h.store.MarkFeedbackReceived(jobID, liked)
	if h.reminders != nil {
		h.reminders.Schedule(userKey)
	}

	if liked {
		return "🙏 Thanks for your positive feedback!"
	}
	return "🙏 Thanks for your feedback! We'll keep improving."
}

func feedbackVerdict(msg string) (liked, accepted bool) {
	if _, ok := positiveTokens[msg]; ok {
		return true, true
	}
	if _, ok := negativeTokens[msg]; ok {
		return false, true
	}
	return false, false
}
