package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/adapter/repo"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/bot"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/delivery"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/feedback"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/generator"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/http/handlers"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/http/httpapi"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/infra/geoip"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/jobstore"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/messaging"
	promptprovider "github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/prompt"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/providers/video"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/queue"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/reminder"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/storage"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/transcode"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := repo.EnsureSchema(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	jobRepo := repo.NewJobRepository(dbpool)
	requestRepo := repo.NewRequestRepository(dbpool)
	store := jobstore.New(jobRepo, logger)

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	var provider video.Provider
	switch cfg.VideoProvider {
	case "modelslab":
		provider = video.NewModelsLab(video.ModelsLabOptions{
			APIKey:  cfg.ModelsLabAPIKey,
			BaseURL: cfg.ModelsLabBaseURL,
			Logger:  logger,
		})
	default:
		provider = video.NewMock(0)
	}
	logger.Info().Str("provider", cfg.VideoProvider).Msg("video provider configured")

	var optimizer promptprovider.Optimizer = promptprovider.NewStaticOptimizer()
	if cfg.OpenAIAPIKey != "" {
		optimizer, err = promptprovider.NewOpenAIOptimizer(promptprovider.OpenAIOptions{
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.OpenAIModel,
			BaseURL:  cfg.OpenAIBaseURL,
			Fallback: promptprovider.NewStaticOptimizer(),
			OnFallback: func(reason string, err error) {
				logger.Warn().Err(err).Str("reason", reason).Msg("prompt optimizer fell back")
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize openai optimizer")
		}
	}

	var messenger messaging.Messenger
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		messenger, err = messaging.NewTwilio(messaging.TwilioOptions{
			AccountSID:   cfg.TwilioAccountSID,
			AuthToken:    cfg.TwilioAuthToken,
			WhatsAppFrom: cfg.TwilioWhatsAppFrom,
			Logger:       logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize twilio")
		}
	} else {
		logger.Warn().Msg("twilio credentials missing, outbound messages go to the log")
		messenger = messaging.NewConsole(logger)
	}

	reminders := reminder.NewScheduler(store, messenger, cfg.ReminderInterval, logger)
	defer reminders.Shutdown()

	gen := generator.New(provider, cfg.VideoProvider, store, logger)

	worker := delivery.NewWorker(delivery.Options{
		Fetcher:       gen,
		Store:         store,
		Messenger:     messenger,
		Transcoder:    transcode.NewFFmpeg(),
		Files:         files,
		PublicBaseURL: cfg.PublicBaseURL,
		MaxAttempts:   cfg.PollMaxAttempts,
		Backoff:       cfg.PollBackoff,
		Logger:        logger,
	})
	spawn := func(jobID, userKey string) {
		go worker.Run(ctx, jobID, userKey)
	}

	feedbackLog := feedback.NewLog(cfg.FeedbackLogPath)

	botHandler := bot.NewHandler(bot.Options{
		Store:         store,
		Generator:     gen,
		Optimizer:     optimizer,
		Reminders:     reminders,
		Feedback:      feedbackLog,
		Spawn:         spawn,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	})

	q := queue.New(requestRepo)
	consumer := queue.NewConsumer(q, gen, spawn, cfg.QueuePollEvery, logger)

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	}

	app := &handlers.App{
		Store:            store,
		Queue:            q,
		Generator:        gen,
		Bot:              botHandler,
		Optimizer:        optimizer,
		Messenger:        messenger,
		Feedback:         feedbackLog,
		Files:            files,
		Logger:           logger,
		ProviderName:     cfg.VideoProvider,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioWebhookURL: cfg.TwilioWebhookURL,
	}
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		Countries:       countries,
		AllowedOrigins:  []string{cfg.AppOrigin},
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	if cfg.TwilioTestTo != "" {
		if _, err := messenger.SendText(ctx, cfg.TwilioTestTo,
			"🚀 Peppo video bot is up! Send me an idea and I'll turn it into a video."); err != nil {
			logger.Warn().Err(err).Msg("intro message failed")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("shutdown with error")
	}
	logger.Info().Msg("server stopped")
}
