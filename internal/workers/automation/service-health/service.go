// Package servicehealth probes every remote collaborator and summarizes which ones answer.
package servicehealth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
)

// Service names in report order.
const (
	ServiceDataStore  = "Airtable"
	ServiceCompletion = "OpenAI"
	ServiceWebhook    = "Webhook"
	ServiceEmail      = "Email"
	ServiceSMS        = "SMS"
)

const defaultTimeout = 15 * time.Second

// Checker is implemented by every adapter.
type Checker interface {
	CheckConnectivity(ctx context.Context) error
}

// Probe names one collaborator to check.
type Probe struct {
	Name    string
	Checker Checker
}

type Report struct {
	Services map[string]bool `json:"services"`
	Errors   []string        `json:"errors"`
	Summary  string          `json:"summary"`
	Success  bool            `json:"success"`
}

type Service struct {
	probes  []Probe
	timeout time.Duration
	logger  logger.Logger
}

func NewService(probes []Probe, timeout time.Duration, log logger.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		probes:  probes,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "service-health"}),
	}
}

// Check runs every probe concurrently. Errors are listed in probe order.
func (s *Service) Check(ctx context.Context) *Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	failures := make([]error, len(s.probes))
	var g errgroup.Group
	for i, probe := range s.probes {
		i, probe := i, probe
		g.Go(func() error {
			if probe.Checker == nil {
				failures[i] = apperrors.NewNotConfiguredError(probe.Name, "")
				return nil
			}
			failures[i] = probe.Checker.CheckConnectivity(ctx)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{
		Services: make(map[string]bool, len(s.probes)),
		Errors:   []string{},
	}
	working := 0
	for i, probe := range s.probes {
		if err := failures[i]; err != nil {
			report.Services[probe.Name] = false
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", probe.Name, apperrors.Describe(err)))
			continue
		}
		report.Services[probe.Name] = true
		working++
	}

	total := len(s.probes)
	rate := 0.0
	if total > 0 {
		rate = float64(working) / float64(total) * 100
	}
	report.Summary = fmt.Sprintf("%d/%d services working (%.1f%%)", working, total, rate)
	report.Success = working == total

	s.logger.Info("service check finished", map[string]interface{}{
		"summary": report.Summary,
		"errors":  report.Errors,
	})
	return report
}
