// Package api serves the JSON endpoints used by the lead list, analytics and chat views.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/completion"
	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/models"
	generateresponse "lead-automation/internal/workers/ai-conversation/generate-response"
	followupsequence "lead-automation/internal/workers/automation/follow-up-sequence"
	servicehealth "lead-automation/internal/workers/automation/service-health"
)

type LeadProcessor interface {
	ProcessNewLead(ctx context.Context, lead *models.Lead) (*models.WorkflowOutcome, error)
}

type FollowUpTrigger interface {
	Trigger(ctx context.Context, lead models.Lead, sequenceType string) *followupsequence.Result
}

type HealthChecker interface {
	Check(ctx context.Context) *servicehealth.Report
}

type ConfigProvider interface {
	Current() clientconfig.ClientConfig
	SwitchClient(ctx context.Context, industry, clientID string) (clientconfig.ClientConfig, string, error)
}

type Responder interface {
	Respond(ctx context.Context, cfg clientconfig.ClientConfig, conversation []completion.Message, lead generateresponse.LeadContext) (string, error)
}

type QuotaChecker interface {
	Quota(ctx context.Context) (int, error)
}

// Dependencies wires the server. Quota and Metrics are optional.
type Dependencies struct {
	Leads     LeadProcessor
	Feed      *LeadFeed
	FollowUps FollowUpTrigger
	Health    HealthChecker
	Configs   ConfigProvider
	Chat      Responder
	Quota     QuotaChecker
	Metrics   http.Handler
	Ready     func() bool
	Logger    logger.Logger
}

type Options struct {
	RateLimit      float64
	Burst          int
	LimiterIdle    time.Duration
	RequestTimeout time.Duration
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxy bool
}

type Server struct {
	deps    Dependencies
	opts    Options
	limiter *IPRateLimiter
	logger  logger.Logger
}

func NewServer(deps Dependencies, opts Options) *Server {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	log := deps.Logger.WithFields(map[string]interface{}{"component": "api"})
	return &Server{
		deps:    deps,
		opts:    opts,
		limiter: NewIPRateLimiter(rate.Limit(opts.RateLimit), opts.Burst, opts.LimiterIdle, log),
		logger:  log,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))

		r.Get("/leads", s.listLeads)
		r.With(s.limiter.Middleware).Post("/leads", s.createLead)
		r.With(s.limiter.Middleware).Post("/follow-ups", s.triggerFollowUp)
		r.With(s.limiter.Middleware).Post("/chat", s.chat)

		r.Get("/services/health", s.servicesHealth)
		r.Get("/sms/quota", s.smsQuota)

		r.Get("/config", s.currentConfig)
		r.Get("/config/industries", s.industries)
		r.Post("/config/switch", s.switchConfig)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil && !s.deps.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) createLead(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if err := decodeJSON(r, &lead); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := s.deps.Leads.ProcessNewLead(r.Context(), &lead)
	if err != nil {
		writeError(w, err)
		return
	}

	// a partial failure is still a processed lead; callers read outcome.success
	status := http.StatusCreated
	if !outcome.Success {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]interface{}{
		"outcome": outcome,
		"lead":    lead,
	})
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	records, refreshed, err := s.deps.Feed.Snapshot()
	body := map[string]interface{}{
		"leads": records,
		"count": len(records),
	}
	if !refreshed.IsZero() {
		body["refreshedAt"] = refreshed.Format(time.RFC3339)
	}
	if err != nil {
		body["error"] = apperrors.Describe(err)
	}
	writeJSON(w, http.StatusOK, body)
}

type followUpRequest struct {
	Lead         models.Lead `json:"lead"`
	SequenceType string      `json:"sequenceType"`
}

func (s *Server) triggerFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Lead.Email == "" {
		writeError(w, apperrors.NewValidationError("invalid lead", "email is required"))
		return
	}

	result := s.deps.FollowUps.Trigger(r.Context(), req.Lead, req.SequenceType)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) servicesHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Health.Check(r.Context()))
}

func (s *Server) smsQuota(w http.ResponseWriter, r *http.Request) {
	if s.deps.Quota == nil {
		writeError(w, apperrors.NewNotConfiguredError("sms quota", "provider does not report quota"))
		return
	}
	remaining, err := s.deps.Quota.Quota(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"quotaRemaining": remaining})
}

func (s *Server) currentConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.deps.Configs.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":   cfg,
		"theme":    cfg.Theme(),
		"branding": cfg.BrandingOrDefault(),
	})
}

func (s *Server) industries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clientconfig.AvailableIndustries())
}

type switchRequest struct {
	Industry string `json:"industry"`
	ClientID string `json:"clientId"`
}

func (s *Server) switchConfig(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cfg, message, err := s.deps.Configs.SwitchClient(r.Context(), req.Industry, req.ClientID)
	if err != nil {
		s.logger.Warn("config switch failed", map[string]interface{}{
			"industry": req.Industry,
			"error":    err.Error(),
		})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":  cfg,
		"message": message,
	})
}

type chatRequest struct {
	Messages []completion.Message         `json:"messages"`
	Lead     generateresponse.LeadContext `json:"lead"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reply, err := s.deps.Chat.Respond(r.Context(), s.deps.Configs.Current(), req.Messages, req.Lead)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateresponse.Output{Reply: reply})
}
