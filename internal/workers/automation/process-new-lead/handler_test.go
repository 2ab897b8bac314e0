package processnewlead

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/completion"
	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/scheduler"
	"lead-automation/internal/common/webhook"
	"lead-automation/internal/models"
	qualifylead "lead-automation/internal/workers/automation/qualify-lead"
)

// ==========================
// Mock Implementations
// ==========================

type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Create(ctx context.Context, fields map[string]interface{}) (*models.Record, error) {
	args := m.Called(ctx, fields)
	rec, _ := args.Get(0).(*models.Record)
	return rec, args.Error(1)
}

func (m *MockDataStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Record, error) {
	args := m.Called(ctx, id, fields)
	rec, _ := args.Get(0).(*models.Record)
	return rec, args.Error(1)
}

type MockQualifier struct {
	mock.Mock
}

func (m *MockQualifier) Qualify(ctx context.Context, cfg clientconfig.ClientConfig, lead models.Lead) (*models.QualificationResult, error) {
	args := m.Called(ctx, cfg, lead)
	res, _ := args.Get(0).(*models.QualificationResult)
	return res, args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Post(ctx context.Context, eventType string, payload interface{}) (*webhook.Ack, error) {
	args := m.Called(ctx, eventType, payload)
	ack, _ := args.Get(0).(*webhook.Ack)
	return ack, args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, templateID string, vars map[string]string) (string, error) {
	args := m.Called(ctx, to, templateID, vars)
	return args.String(0), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleFollowUp(ctx context.Context, payload scheduler.FollowUpPayload, runAt time.Time) error {
	return m.Called(ctx, payload, runAt).Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordWorkflow(ctx context.Context, duration time.Duration, success bool, errorCount int) {
	m.Called(ctx, duration, success, errorCount)
}

type staticConfig struct {
	cfg clientconfig.ClientConfig
}

func (s staticConfig) Current() clientconfig.ClientConfig { return s.cfg }

// completerFunc adapts a function to the qualification Completer.
type completerFunc func(ctx context.Context, messages []completion.Message, opts completion.Options) (string, error)

func (f completerFunc) Complete(ctx context.Context, messages []completion.Message, opts completion.Options) (string, error) {
	return f(ctx, messages, opts)
}

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *MockDataStore
	qualifier *MockQualifier
	webhooks  *MockDispatcher
	email     *MockSender
	sms       *MockSender
	followUps *MockScheduler
	recorder  *MockRecorder
}

func newFixture() *fixture {
	return &fixture{
		store:     new(MockDataStore),
		qualifier: new(MockQualifier),
		webhooks:  new(MockDispatcher),
		email:     new(MockSender),
		sms:       new(MockSender),
		followUps: new(MockScheduler),
		recorder:  new(MockRecorder),
	}
}

func (f *fixture) service(t *testing.T, q Qualifier) *Service {
	if q == nil {
		q = f.qualifier
	}
	return NewService(ServiceDependencies{
		Store:     f.store,
		Qualifier: q,
		Webhooks:  f.webhooks,
		Email:     f.email,
		SMS:       f.sms,
		FollowUps: f.followUps,
		Configs:   staticConfig{cfg: clientconfig.DefaultConfig()},
		Recorder:  f.recorder,
		Logger:    logger.NewTestLogger(t),
		Now:       func() time.Time { return fixedNow },
	})
}

func (f *fixture) assertAll(t *testing.T) {
	f.store.AssertExpectations(t)
	f.qualifier.AssertExpectations(t)
	f.webhooks.AssertExpectations(t)
	f.email.AssertExpectations(t)
	f.sms.AssertExpectations(t)
	f.followUps.AssertExpectations(t)
	f.recorder.AssertExpectations(t)
}

func scenarioLead() *models.Lead {
	return &models.Lead{Name: "John Doe", Email: "john@x.com", Phone: "+15551234567"}
}

func qualification(score int) *models.QualificationResult {
	return &models.QualificationResult{
		Score:         score,
		Qualification: "Lead",
		Reasoning:     "reason",
		NextAction:    "call",
		Priority:      "High",
	}
}

func (f *fixture) expectHappyPath(score int) {
	f.store.On("Create", mock.Anything, mock.Anything).Return(&models.Record{ID: "rec123"}, nil).Once()
	f.qualifier.On("Qualify", mock.Anything, mock.Anything, mock.Anything).Return(qualification(score), nil).Once()
	f.store.On("Update", mock.Anything, "rec123", qualification(score).InsightFields()).Return(&models.Record{ID: "rec123"}, nil).Once()
	f.webhooks.On("Post", mock.Anything, webhook.EventLeadCapture, mock.Anything).Return(&webhook.Ack{EventType: webhook.EventLeadCapture, StatusCode: 200}, nil).Once()
	f.email.On("Send", mock.Anything, "john@x.com", "welcome", mock.Anything).Return("msg-1", nil).Once()
	f.sms.On("Send", mock.Anything, "+15551234567", "welcome", mock.Anything).Return("text-1", nil).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Once()
}

// ==========================
// Scenarios
// ==========================

func TestProcessNewLead_AllStepsSucceed(t *testing.T) {
	f := newFixture()
	f.expectHappyPath(9)
	f.followUps.On("ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	lead := scenarioLead()
	outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), lead)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.True(t, outcome.Stored)
	assert.True(t, outcome.Qualified)
	assert.True(t, outcome.WebhookTriggered)
	assert.True(t, outcome.EmailSent)
	assert.True(t, outcome.SMSSent)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, "rec123", outcome.LeadID)
	assert.NotEmpty(t, outcome.RunID)

	assert.Equal(t, "rec123", lead.RecordID)
	assert.Equal(t, 9, lead.Qualification.Score)
	assert.Equal(t, models.DeliveryStatus{Webhook: true, Email: true, SMS: true}, lead.Delivery)

	f.assertAll(t)
}

func TestProcessNewLead_StoreFailureIsFatalButOtherStepsRun(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewProtocolError("airtable", 422, `{"error":"INVALID_VALUE_FOR_COLUMN"}`)).Once()
	f.qualifier.On("Qualify", mock.Anything, mock.Anything, mock.Anything).Return(qualification(7), nil).Once()
	f.webhooks.On("Post", mock.Anything, webhook.EventLeadCapture, mock.Anything).Return(&webhook.Ack{StatusCode: 200}, nil).Once()
	f.email.On("Send", mock.Anything, "john@x.com", "welcome", mock.Anything).Return("msg-1", nil).Once()
	f.sms.On("Send", mock.Anything, "+15551234567", "welcome", mock.Anything).Return("text-1", nil).Once()
	f.followUps.On("ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, false, 1).Return().Once()

	outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), scenarioLead())
	require.NoError(t, err)

	assert.False(t, outcome.Stored)
	assert.False(t, outcome.Success)
	assert.True(t, outcome.Qualified)
	assert.True(t, outcome.WebhookTriggered)
	assert.True(t, outcome.EmailSent)
	assert.True(t, outcome.SMSSent)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "Store: airtable returned status 422")

	// no record to attach insights to
	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestProcessNewLead_IgnoresSubmittedDerivedFields(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewProtocolError("airtable", 500, "oops")).Once()
	f.qualifier.On("Qualify", mock.Anything, mock.Anything, mock.MatchedBy(func(l models.Lead) bool {
		return l.RecordID == "" && l.Qualification == nil
	})).Return(nil, apperrors.NewParseError("qualification", "not json")).Once()
	f.webhooks.On("Post", mock.Anything, webhook.EventLeadCapture, mock.Anything).Return(&webhook.Ack{StatusCode: 200}, nil).Once()
	f.email.On("Send", mock.Anything, "john@x.com", "welcome", mock.Anything).Return("msg-1", nil).Once()
	f.sms.On("Send", mock.Anything, "+15551234567", "welcome", mock.Anything).Return("text-1", nil).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, false, 2).Return().Once()

	lead := scenarioLead()
	lead.RecordID = "recFOREIGN"
	lead.Qualification = qualification(9)
	lead.Delivery = models.DeliveryStatus{Webhook: true, Email: true, SMS: true}

	outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), lead)
	require.NoError(t, err)

	assert.False(t, outcome.Stored)
	assert.False(t, outcome.Qualified)
	assert.Len(t, outcome.Errors, 2)
	assert.Empty(t, outcome.FollowUps)
	assert.Empty(t, outcome.LeadID)
	assert.Empty(t, lead.RecordID)
	assert.Nil(t, lead.Qualification)

	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.followUps.AssertNotCalled(t, "ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestProcessNewLead_FollowUpPlanByScore(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  []models.ScheduledFollowUp
	}{
		{
			name:  "hot",
			score: 9,
			want: []models.ScheduledFollowUp{
				{Channel: models.ChannelEmail, TemplateID: "followUp", Delay: 2 * time.Hour, RunAt: fixedNow.Add(2 * time.Hour)},
				{Channel: models.ChannelSMS, TemplateID: "followUp", Delay: 120 * time.Minute, RunAt: fixedNow.Add(120 * time.Minute)},
			},
		},
		{
			name:  "warm",
			score: 7,
			want: []models.ScheduledFollowUp{
				{Channel: models.ChannelEmail, TemplateID: "followUp", Delay: 24 * time.Hour, RunAt: fixedNow.Add(24 * time.Hour)},
			},
		},
		{
			name:  "cold",
			score: 3,
			want: []models.ScheduledFollowUp{
				{Channel: models.ChannelEmail, TemplateID: "nurture", Delay: 72 * time.Hour, RunAt: fixedNow.Add(72 * time.Hour)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.expectHappyPath(tt.score)
			for _, want := range tt.want {
				want := want
				f.followUps.On("ScheduleFollowUp", mock.Anything, mock.MatchedBy(func(p scheduler.FollowUpPayload) bool {
					return p.Channel == want.Channel && p.TemplateID == want.TemplateID && p.LeadID == "rec123"
				}), want.RunAt).Return(nil).Once()
			}

			outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), scenarioLead())
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome.FollowUps)
			f.assertAll(t)
		})
	}
}

func TestProcessNewLead_NonJSONQualification(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(&models.Record{ID: "rec123"}, nil).Once()
	f.webhooks.On("Post", mock.Anything, webhook.EventLeadCapture, mock.Anything).Return(&webhook.Ack{StatusCode: 200}, nil).Once()
	f.email.On("Send", mock.Anything, mock.Anything, "welcome", mock.Anything).Return("msg-1", nil).Once()
	f.sms.On("Send", mock.Anything, mock.Anything, "welcome", mock.Anything).Return("text-1", nil).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, true, 1).Return().Once()

	prose := completerFunc(func(ctx context.Context, messages []completion.Message, opts completion.Options) (string, error) {
		return "This looks like a strong lead, maybe an 8 out of 10.", nil
	})
	q := qualifylead.NewService(prose, completion.Options{MaxTokens: 200, Temperature: 0.3}, logger.NewTestLogger(t))

	outcome, err := f.service(t, q).ProcessNewLead(context.Background(), scenarioLead())
	require.NoError(t, err)

	assert.False(t, outcome.Qualified)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.WebhookTriggered)
	assert.True(t, outcome.EmailSent)
	assert.True(t, outcome.SMSSent)
	require.Len(t, outcome.Errors, 1)
	assert.Regexp(t, `^AI qualification: `, outcome.Errors[0])
	assert.Empty(t, outcome.FollowUps)

	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.followUps.AssertNotCalled(t, "ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestProcessNewLead_AbsentOrMalformedPhone(t *testing.T) {
	for _, phone := range []string{"", "555-1234", "call me"} {
		t.Run(fmt.Sprintf("phone=%q", phone), func(t *testing.T) {
			f := newFixture()
			f.store.On("Create", mock.Anything, mock.Anything).Return(&models.Record{ID: "rec9"}, nil).Once()
			f.qualifier.On("Qualify", mock.Anything, mock.Anything, mock.Anything).Return(qualification(9), nil).Once()
			f.store.On("Update", mock.Anything, "rec9", mock.Anything).Return(&models.Record{ID: "rec9"}, nil).Once()
			f.webhooks.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(&webhook.Ack{StatusCode: 200}, nil).Once()
			f.email.On("Send", mock.Anything, mock.Anything, "welcome", mock.Anything).Return("msg-1", nil).Once()
			f.followUps.On("ScheduleFollowUp", mock.Anything, mock.MatchedBy(func(p scheduler.FollowUpPayload) bool {
				return p.Channel == models.ChannelEmail
			}), mock.Anything).Return(nil).Once()
			f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, true, 0).Return().Once()

			lead := scenarioLead()
			lead.Phone = phone
			outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), lead)
			require.NoError(t, err)

			assert.False(t, outcome.SMSSent)
			assert.Empty(t, outcome.Errors)
			assert.Len(t, outcome.FollowUps, 1)
			f.sms.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.assertAll(t)
		})
	}
}

func TestProcessNewLead_EveryStepFailing(t *testing.T) {
	f := newFixture()
	transport := apperrors.NewTransportError("remote", fmt.Errorf("connection reset"))
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil, transport).Once()
	f.qualifier.On("Qualify", mock.Anything, mock.Anything, mock.Anything).Return(nil, transport).Once()
	f.webhooks.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(nil, transport).Once()
	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", transport).Once()
	f.sms.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", transport).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, false, 5).Return().Once()

	outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), scenarioLead())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	require.Len(t, outcome.Errors, 5)
	for i, step := range []string{StepStore, StepQualification, StepWebhook, StepEmail, StepSMS} {
		assert.Regexp(t, "^"+step+": remote unreachable", outcome.Errors[i])
	}
	f.assertAll(t)
}

func TestProcessNewLead_InsightUpdateFailureIsNotAnError(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(&models.Record{ID: "rec123"}, nil).Once()
	f.qualifier.On("Qualify", mock.Anything, mock.Anything, mock.Anything).Return(qualification(5), nil).Once()
	f.store.On("Update", mock.Anything, "rec123", mock.Anything).Return(nil, apperrors.NewProtocolError("airtable", 500, "oops")).Once()
	f.webhooks.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(&webhook.Ack{StatusCode: 200}, nil).Once()
	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("msg-1", nil).Once()
	f.sms.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("text-1", nil).Once()
	f.followUps.On("ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("redis down")).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, true, 0).Return().Once()

	outcome, err := f.service(t, nil).ProcessNewLead(context.Background(), scenarioLead())
	require.NoError(t, err)

	assert.True(t, outcome.Qualified)
	assert.Empty(t, outcome.Errors)
	assert.Empty(t, outcome.FollowUps)
	f.assertAll(t)
}

func TestProcessNewLead_InvalidLeadMakesNoCalls(t *testing.T) {
	f := newFixture()
	svc := f.service(t, nil)

	tests := []struct {
		name string
		lead *models.Lead
	}{
		{"nil", nil},
		{"missing name", &models.Lead{Email: "a@b.co"}},
		{"missing email", &models.Lead{Name: "A"}},
		{"blank name", &models.Lead{Name: "   ", Email: "a@b.co"}},
		{"negative value", &models.Lead{Name: "A", Email: "a@b.co", EstimatedValue: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := svc.ProcessNewLead(context.Background(), tt.lead)
			require.Error(t, err)
			assert.Nil(t, outcome)
			assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
		})
	}

	// every mock has no expectations, so any call would have panicked
	f.assertAll(t)
}

func TestProcessNewLead_PersonalizesFromConfig(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(&models.Record{ID: "rec1"}, nil).Once()
	f.qualifier.On("Qualify", mock.Anything, mock.MatchedBy(func(cfg clientconfig.ClientConfig) bool {
		return cfg.Industry == "realestate"
	}), mock.Anything).Return(nil, apperrors.NewParseError("qualification", "bad")).Once()
	f.webhooks.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(&webhook.Ack{StatusCode: 200}, nil).Once()
	f.email.On("Send", mock.Anything, mock.Anything, "welcome", mock.MatchedBy(func(vars map[string]string) bool {
		return vars["brandName"] == "RealEstate Pro" && vars["firstName"] == "John"
	})).Return("msg-1", nil).Once()
	f.sms.On("Send", mock.Anything, mock.Anything, "welcome", mock.MatchedBy(func(vars map[string]string) bool {
		return vars["brandName"] == "RealEstate Pro"
	})).Return("text-1", nil).Once()
	f.recorder.On("RecordWorkflow", mock.Anything, mock.Anything, true, 1).Return().Once()

	svc := f.service(t, nil)
	svc.deps.Configs = staticConfig{cfg: clientconfig.IndustryConfig("realestate")}

	_, err := svc.ProcessNewLead(context.Background(), scenarioLead())
	require.NoError(t, err)
	f.assertAll(t)
}

// ==========================
// Follow-up planning
// ==========================

func TestPlanFollowUps_Boundaries(t *testing.T) {
	assert.Len(t, PlanFollowUps(10), 2)
	assert.Len(t, PlanFollowUps(8), 2)
	assert.Equal(t, 24*time.Hour, PlanFollowUps(6)[0].Delay)
	assert.Equal(t, "nurture", PlanFollowUps(5)[0].TemplateID)
	assert.Equal(t, "nurture", PlanFollowUps(1)[0].TemplateID)
}
