package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"lead-automation/internal/common/config"
	"lead-automation/internal/common/logger"
)

// FollowUpHandler delivers one due follow-up.
type FollowUpHandler interface {
	Deliver(ctx context.Context, payload FollowUpPayload) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler FollowUpHandler
	logger  logger.Logger
}

func NewWorker(redisCfg config.RedisConfig, cfg config.SchedulerConfig, handler FollowUpHandler, log logger.Logger) *Worker {
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(redisClientOpt(redisCfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		handler: handler,
		logger:  log.WithFields(map[string]interface{}{"component": "scheduler-worker"}),
	}
	w.mux.HandleFunc(TaskFollowUpDeliver, w.handleFollowUp)
	return w
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.server.Start(w.mux); err != nil {
		w.logger.Error("scheduler worker failed to start", map[string]interface{}{"error": err.Error()})
		return
	}
	w.logger.Info("scheduler worker started", nil)

	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info("scheduler worker stopped", nil)
}

func (w *Worker) handleFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpPayload(task)
	if err != nil {
		return fmt.Errorf("invalid follow-up payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.handler.Deliver(ctx, payload); err != nil {
		w.logger.Warn("follow-up delivery failed", map[string]interface{}{
			"leadId":     payload.LeadID,
			"channel":    payload.Channel,
			"templateId": payload.TemplateID,
			"error":      err.Error(),
		})
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}
