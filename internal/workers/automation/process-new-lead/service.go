package processnewlead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/email"
	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/metrics"
	"lead-automation/internal/common/scheduler"
	"lead-automation/internal/common/sms"
	"lead-automation/internal/common/validation"
	"lead-automation/internal/common/webhook"
	"lead-automation/internal/models"
)

type DataStore interface {
	Create(ctx context.Context, fields map[string]interface{}) (*models.Record, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Record, error)
}

type Qualifier interface {
	Qualify(ctx context.Context, cfg clientconfig.ClientConfig, lead models.Lead) (*models.QualificationResult, error)
}

type Dispatcher interface {
	Post(ctx context.Context, eventType string, payload interface{}) (*webhook.Ack, error)
}

type EmailSender interface {
	Send(ctx context.Context, to, templateID string, vars map[string]string) (string, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, templateID string, vars map[string]string) (string, error)
}

type ConfigSource interface {
	Current() clientconfig.ClientConfig
}

// Recorder receives one measurement per finished run.
type Recorder interface {
	RecordWorkflow(ctx context.Context, duration time.Duration, success bool, errorCount int)
}

type ServiceDependencies struct {
	Store     DataStore
	Qualifier Qualifier
	Webhooks  Dispatcher
	Email     EmailSender
	SMS       SMSSender
	FollowUps scheduler.FollowUpScheduler
	Configs   ConfigSource
	Recorder  Recorder
	Logger    logger.Logger
	Now       func() time.Time
}

// Service runs the lead automation sequence.
type Service struct {
	deps      ServiceDependencies
	validator *validation.Validator
	logger    logger.Logger
	now       func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		deps:      deps,
		validator: validation.New(),
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": TaskType}),
		now:       now,
	}
}

// ProcessNewLead stores, qualifies and notifies for one lead, then schedules
// follow-ups from the score. Every step runs regardless of earlier failures;
// failures are collected in the outcome. The only returned error is a
// VALIDATION_ERROR for a lead that cannot be processed at all, in which case
// no remote call is made. lead is updated in place.
func (s *Service) ProcessNewLead(ctx context.Context, lead *models.Lead) (*models.WorkflowOutcome, error) {
	if lead == nil {
		return nil, apperrors.NewValidationError("invalid lead", "lead is required")
	}
	if err := s.validator.Struct("invalid lead", lead); err != nil {
		return nil, err
	}
	// Derived fields belong to this run, never to the submission.
	lead.RecordID = ""
	lead.Qualification = nil
	lead.Delivery = models.DeliveryStatus{}

	cfg := s.deps.Configs.Current()
	branding := cfg.BrandingOrDefault()

	outcome := &models.WorkflowOutcome{
		RunID:     uuid.NewString(),
		Errors:    []string{},
		StartedAt: s.now(),
	}
	log := s.logger.WithFields(map[string]interface{}{"runId": outcome.RunID})
	log.Info("lead automation started", map[string]interface{}{"source": lead.Source})

	s.step(log, outcome, StepStore, func() error {
		rec, err := s.deps.Store.Create(ctx, lead.Fields())
		if err != nil {
			return err
		}
		lead.RecordID = rec.ID
		outcome.Stored = true
		outcome.LeadID = rec.ID
		return nil
	})

	s.step(log, outcome, StepQualification, func() error {
		result, err := s.deps.Qualifier.Qualify(ctx, cfg, *lead)
		if err != nil {
			return err
		}
		lead.Qualification = result
		outcome.Qualified = true
		outcome.Qualification = result

		if lead.RecordID != "" {
			if _, err := s.deps.Store.Update(ctx, lead.RecordID, result.InsightFields()); err != nil {
				log.Warn("failed to attach qualification to record", map[string]interface{}{
					"recordId": lead.RecordID,
					"error":    err.Error(),
				})
			}
		}
		return nil
	})

	s.step(log, outcome, StepWebhook, func() error {
		if _, err := s.deps.Webhooks.Post(ctx, webhook.EventLeadCapture, lead); err != nil {
			return err
		}
		lead.Delivery.Webhook = true
		outcome.WebhookTriggered = true
		return nil
	})

	s.step(log, outcome, StepEmail, func() error {
		vars := email.Personalize(*lead, branding.AppName)
		if _, err := s.deps.Email.Send(ctx, lead.Email, email.TemplateWelcome, vars); err != nil {
			return err
		}
		lead.Delivery.Email = true
		outcome.EmailSent = true
		return nil
	})

	if validation.ValidatePhone(lead.Phone) {
		s.step(log, outcome, StepSMS, func() error {
			vars := sms.Personalize(*lead, branding.AppName, branding.SupportPhone)
			if _, err := s.deps.SMS.Send(ctx, lead.Phone, sms.TemplateWelcome, vars); err != nil {
				return err
			}
			lead.Delivery.SMS = true
			outcome.SMSSent = true
			return nil
		})
	} else {
		metrics.AutomationSteps.WithLabelValues(StepSMS, metrics.StatusSkipped).Inc()
	}

	if lead.Qualification != nil {
		s.scheduleFollowUps(ctx, log, outcome, lead)
	}

	outcome.Success = outcome.Stored
	outcome.CompletedAt = s.now()
	s.record(ctx, outcome)

	log.Info("lead automation completed", map[string]interface{}{
		"leadId":  outcome.LeadID,
		"success": outcome.Success,
		"errors":  len(outcome.Errors),
	})
	return outcome, nil
}

// step runs fn and folds its error into the outcome as "<name>: <message>".
func (s *Service) step(log logger.Logger, outcome *models.WorkflowOutcome, name string, fn func() error) {
	if err := fn(); err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %s", name, apperrors.Describe(err)))
		metrics.AutomationSteps.WithLabelValues(name, metrics.StatusFailed).Inc()
		log.Warn("automation step failed", map[string]interface{}{
			"step":      name,
			"errorCode": string(apperrors.CodeOf(err)),
			"error":     err.Error(),
		})
		return
	}
	metrics.AutomationSteps.WithLabelValues(name, metrics.StatusOK).Inc()
	log.Debug("automation step succeeded", map[string]interface{}{"step": name})
}

// scheduleFollowUps hands each planned follow-up to the scheduler without
// waiting for delivery. Enqueue failures are logged, not reported as step errors.
func (s *Service) scheduleFollowUps(ctx context.Context, log logger.Logger, outcome *models.WorkflowOutcome, lead *models.Lead) {
	for _, plan := range PlanFollowUps(lead.Qualification.Score) {
		if plan.Channel == models.ChannelSMS && !validation.ValidatePhone(lead.Phone) {
			log.Debug("sms follow-up skipped, no usable phone", nil)
			metrics.FollowUpsScheduled.WithLabelValues(plan.Channel, metrics.StatusSkipped).Inc()
			continue
		}

		runAt := outcome.StartedAt.Add(plan.Delay)
		payload := scheduler.FollowUpPayload{
			RunID:      outcome.RunID,
			LeadID:     lead.RecordID,
			Channel:    plan.Channel,
			TemplateID: plan.TemplateID,
			Lead:       *lead,
		}
		if err := s.deps.FollowUps.ScheduleFollowUp(ctx, payload, runAt); err != nil {
			metrics.FollowUpsScheduled.WithLabelValues(plan.Channel, metrics.StatusFailed).Inc()
			log.Warn("failed to schedule follow-up", map[string]interface{}{
				"channel":    plan.Channel,
				"templateId": plan.TemplateID,
				"error":      err.Error(),
			})
			continue
		}

		metrics.FollowUpsScheduled.WithLabelValues(plan.Channel, metrics.StatusOK).Inc()
		outcome.FollowUps = append(outcome.FollowUps, models.ScheduledFollowUp{
			Channel:    plan.Channel,
			TemplateID: plan.TemplateID,
			Delay:      plan.Delay,
			RunAt:      runAt,
		})
	}
}

func (s *Service) record(ctx context.Context, outcome *models.WorkflowOutcome) {
	duration := outcome.CompletedAt.Sub(outcome.StartedAt)
	metrics.AutomationWorkflows.WithLabelValues(metrics.ResultLabel(outcome.Success)).Inc()
	metrics.AutomationWorkflowDuration.Observe(duration.Seconds())
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordWorkflow(ctx, duration, outcome.Success, len(outcome.Errors))
	}
}
