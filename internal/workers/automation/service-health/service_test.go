package servicehealth

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) CheckConnectivity(ctx context.Context) error { return f(ctx) }

func ok() Checker {
	return checkerFunc(func(ctx context.Context) error { return nil })
}

func failing(err error) Checker {
	return checkerFunc(func(ctx context.Context) error { return err })
}

func fiveProbes(overrides map[string]Checker) []Probe {
	names := []string{ServiceDataStore, ServiceCompletion, ServiceWebhook, ServiceEmail, ServiceSMS}
	probes := make([]Probe, 0, len(names))
	for _, name := range names {
		c := ok()
		if o, found := overrides[name]; found {
			c = o
		}
		probes = append(probes, Probe{Name: name, Checker: c})
	}
	return probes
}

func TestCheck_AllHealthy(t *testing.T) {
	svc := NewService(fiveProbes(nil), time.Second, logger.NewTestLogger(t))

	report := svc.Check(context.Background())

	assert.True(t, report.Success)
	assert.Empty(t, report.Errors)
	assert.Equal(t, "5/5 services working (100.0%)", report.Summary)
	assert.Len(t, report.Services, 5)
}

func TestCheck_PartialFailure(t *testing.T) {
	svc := NewService(fiveProbes(map[string]Checker{
		ServiceCompletion: failing(apperrors.NewProtocolError("openai", 401, "invalid api key")),
		ServiceSMS:        failing(apperrors.NewTransportError("textbelt", fmt.Errorf("timeout"))),
	}), time.Second, logger.NewTestLogger(t))

	report := svc.Check(context.Background())

	assert.False(t, report.Success)
	assert.Equal(t, "3/5 services working (60.0%)", report.Summary)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, "OpenAI: openai returned status 401: invalid api key", report.Errors[0])
	assert.Equal(t, "SMS: textbelt unreachable: timeout", report.Errors[1])
	assert.False(t, report.Services[ServiceCompletion])
	assert.True(t, report.Services[ServiceWebhook])
}

func TestCheck_MissingCheckerCountsAsFailure(t *testing.T) {
	probes := fiveProbes(nil)
	probes[2].Checker = nil

	report := NewService(probes, time.Second, logger.NewNoOpLogger()).Check(context.Background())

	assert.Equal(t, "4/5 services working (80.0%)", report.Summary)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "Webhook: Webhook not configured", report.Errors[0])
}

func TestCheck_RunsConcurrently(t *testing.T) {
	var inFlight, peak int32
	slow := checkerFunc(func(ctx context.Context) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	probes := fiveProbes(map[string]Checker{
		ServiceDataStore: slow, ServiceCompletion: slow, ServiceWebhook: slow, ServiceEmail: slow, ServiceSMS: slow,
	})

	report := NewService(probes, time.Second, logger.NewNoOpLogger()).Check(context.Background())

	assert.True(t, report.Success)
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
}

func TestCheck_TimeoutBoundsSlowProbe(t *testing.T) {
	hang := checkerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return apperrors.NewTransportError("webhook", ctx.Err())
	})

	report := NewService(fiveProbes(map[string]Checker{ServiceWebhook: hang}), 20*time.Millisecond, logger.NewNoOpLogger()).
		Check(context.Background())

	assert.False(t, report.Success)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Webhook: webhook unreachable")
}
