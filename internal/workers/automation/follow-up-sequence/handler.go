package followupsequence

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lead-automation/internal/common/config"
	"lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/metrics"
)

const TaskType = "follow-up-sequence"

type Handler struct {
	config  *Config
	service *Service
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

type HandlerOptions struct {
	AppConfig *config.Config
	Service   *Service
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  createConfigFromAppConfig(opts.AppConfig),
		service: opts.Service,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}
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

	result := h.service.Trigger(ctx, input.Lead, input.SequenceType)

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(map[string]interface{}{
		"followUp": result,
		"success":  result.Success,
	})
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
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":  job.GetKey(),
		"success": result.Success,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
