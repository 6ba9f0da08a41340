package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/domain"
	"github.com/suryansh-sr-17/peppo-video-wa-r2/internal/generator"
)

const defaultPollInterval = 2 * time.Second

// Dispatcher spawns the delivery worker for a dispatched job.
type Dispatcher func(jobID, userKey string)

// Consumer is the single loop draining the queue. Exactly one Consumer may
// run against a Queue.
type Consumer struct {
	queue        *Queue
	generator    *generator.Generator
	spawn        Dispatcher
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewConsumer creates a Consumer. spawn is invoked once per dispatched job.
func NewConsumer(q *Queue, gen *generator.Generator, spawn Dispatcher, pollInterval time.Duration, logger zerolog.Logger) *Consumer {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Consumer{queue: q, generator: gen, spawn: spawn, pollInterval: pollInterval, logger: logger}
}

// Run drains the queue until ctx is cancelled, sleeping when empty. A
// failure on one request is marked on that request and never stops the loop.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().Msg("queue: consumer started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("queue: consumer stopped")
			return ctx.Err()
		default:
		}

		req, err := c.queue.Dequeue(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("queue: dequeue failed")
			c.sleep(ctx)
			continue
		}
		if req == nil {
			c.sleep(ctx)
			continue
		}

		c.process(ctx, req)
	}
}

func (c *Consumer) process(ctx context.Context, req *domain.Request) {
	job, cached, err := c.generator.Submit(ctx, generator.SubmitParams{
		Prompt:  req.Prompt,
		Style:   req.Style,
		UserKey: req.UserKey,
	})
	if err != nil {
		c.logger.Error().Err(err).Int64("request_id", req.ID).Msg("queue: dispatch failed")
		if err := c.queue.MarkDone(ctx, req.ID, false); err != nil {
			c.logger.Error().Err(err).Int64("request_id", req.ID).Msg("queue: mark failed")
		}
		return
	}

	if err := c.queue.MarkProcessing(ctx, req.ID, job.ID); err != nil {
		c.logger.Error().Err(err).Int64("request_id", req.ID).Msg("queue: mark processing failed")
	}

	// A cache hit needs no delivery worker; the job already succeeded.
	if !cached && c.spawn != nil {
		c.spawn(job.ID, req.UserKey)
	}

	if err := c.queue.MarkDone(ctx, req.ID, true); err != nil {
		c.logger.Error().Err(err).Int64("request_id", req.ID).Msg("queue: mark done failed")
	}
	c.logger.Info().Int64("request_id", req.ID).Str("job_id", job.ID).Bool("cached", cached).Msg("queue: request dispatched")
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.pollInterval):
	}
}
