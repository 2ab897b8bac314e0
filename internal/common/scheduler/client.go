package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"lead-automation/internal/common/config"
	"lead-automation/internal/common/logger"
)

// FollowUpScheduler accepts a follow-up for later delivery.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, payload FollowUpPayload, runAt time.Time) error
}

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisCfg config.RedisConfig, cfg config.SchedulerConfig) *Client {
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	return &Client{
		client: asynq.NewClient(redisClientOpt(redisCfg)),
		queue:  queue,
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleFollowUp enqueues the payload to run at runAt. Tasks are never retried.
func (c *Client) ScheduleFollowUp(ctx context.Context, payload FollowUpPayload, runAt time.Time) error {
	task, err := NewFollowUpTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.MaxRetry(0),
	)
	return err
}

func redisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// LogScheduler records follow-up requests without a queue behind them.
type LogScheduler struct {
	logger logger.Logger
}

func NewLogScheduler(log logger.Logger) *LogScheduler {
	return &LogScheduler{logger: log.WithFields(map[string]interface{}{"component": "scheduler"})}
}

func (s *LogScheduler) ScheduleFollowUp(_ context.Context, payload FollowUpPayload, runAt time.Time) error {
	s.logger.Info("follow-up scheduled", map[string]interface{}{
		"leadId":     payload.LeadID,
		"channel":    payload.Channel,
		"templateId": payload.TemplateID,
		"runAt":      runAt.UTC().Format(time.RFC3339),
	})
	return nil
}
