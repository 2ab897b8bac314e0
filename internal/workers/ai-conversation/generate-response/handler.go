package generateresponse

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/config"
	"lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/metrics"
)

const TaskType = "generate-response"

type ConfigSource interface {
	Current() clientconfig.ClientConfig
}

type Handler struct {
	config  *Config
	service *Service
	configs ConfigSource
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

type HandlerOptions struct {
	AppConfig *config.Config
	Completer Completer
	Configs   ConfigSource
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	cfg := createConfigFromAppConfig(opts.AppConfig)
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  cfg,
		service: NewService(opts.Completer, cfg.Options, opts.Logger),
		configs: opts.Configs,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Service() *Service {
	return h.service
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		h.fail(ctx, client, job, errors.NewValidationError("invalid job variables", err.Error()))
		return
	}

	reply, err := h.service.Respond(ctx, h.configs.Current(), input.Messages, input.Lead)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(&Output{Reply: reply})
	if err != nil {
		h.fail(ctx, client, job, errors.NewValidationError("encode job output", err.Error()))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
