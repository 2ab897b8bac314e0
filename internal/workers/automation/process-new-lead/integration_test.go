package processnewlead

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/airtable"
	"lead-automation/internal/common/completion"
	"lead-automation/internal/common/email"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/sms"
	"lead-automation/internal/common/webhook"
	"lead-automation/internal/models"
	qualifylead "lead-automation/internal/workers/automation/qualify-lead"
)

// ==========================
// Fake remote services
// ==========================

type remotes struct {
	mu       sync.Mutex
	created  []map[string]interface{}
	patched  []map[string]interface{}
	prompts  []string
	emails   []map[string]interface{}
	texts    []map[string]interface{}
	events   []webhook.Envelope
	failText bool
}

func (r *remotes) handler(t *testing.T) http.Handler {
	decode := func(req *http.Request, into interface{}) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(into))
	}
	reply := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /airtable/appBase/Leads", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Records []struct {
				Fields map[string]interface{} `json:"fields"`
			} `json:"records"`
		}
		decode(req, &body)
		r.mu.Lock()
		r.created = append(r.created, body.Records[0].Fields)
		r.mu.Unlock()
		reply(w, `{"records":[{"id":"recINT1","fields":{}}]}`)
	})
	mux.HandleFunc("PATCH /airtable/appBase/Leads/recINT1", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Fields map[string]interface{} `json:"fields"`
		}
		decode(req, &body)
		r.mu.Lock()
		r.patched = append(r.patched, body.Fields)
		r.mu.Unlock()
		reply(w, `{"id":"recINT1","fields":{}}`)
	})
	mux.HandleFunc("POST /openai/chat/completions", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Messages []completion.Message `json:"messages"`
		}
		decode(req, &body)
		r.mu.Lock()
		r.prompts = append(r.prompts, body.Messages[len(body.Messages)-1].Content)
		r.mu.Unlock()
		content, _ := json.Marshal(`{"score": 8, "qualification": "Hot Lead", "reasoning": "Clear budget", "nextAction": "Call today", "priority": "High"}`)
		reply(w, `{"choices":[{"message":{"role":"assistant","content":`+string(content)+`}}]}`)
	})
	mux.HandleFunc("POST /brevo/smtp/email", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		decode(req, &body)
		r.mu.Lock()
		r.emails = append(r.emails, body)
		r.mu.Unlock()
		reply(w, `{"messageId":"<msg-1@brevo>"}`)
	})
	mux.HandleFunc("POST /textbelt/text", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		decode(req, &body)
		r.mu.Lock()
		r.texts = append(r.texts, body)
		fail := r.failText
		r.mu.Unlock()
		if fail {
			reply(w, `{"success":false,"error":"Out of quota"}`)
			return
		}
		reply(w, `{"success":true,"textId":12345,"quotaRemaining":40}`)
	})
	mux.HandleFunc("POST /hooks/lead", func(w http.ResponseWriter, req *http.Request) {
		var env webhook.Envelope
		decode(req, &env)
		r.mu.Lock()
		r.events = append(r.events, env)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newIntegrationService(t *testing.T, fake *remotes, followUps *MockScheduler) *Service {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	log := logger.NewTestLogger(t)
	configs := clientconfig.NewProvider(clientconfig.NewMemoryStore(), log)
	_, _, err := configs.SwitchClient(context.Background(), "realestate", "")
	require.NoError(t, err)

	store := airtable.NewClient(airtable.Config{BaseURL: srv.URL + "/airtable", BaseID: "appBase", Token: "pat", Timeout: 2 * time.Second})
	completer := completion.NewClient(completion.Config{BaseURL: srv.URL + "/openai", APIKey: "sk", Timeout: 2 * time.Second})
	qualifier := qualifylead.NewService(completer, completion.Options{MaxTokens: 200, Temperature: 0.3}, log)

	return NewService(ServiceDependencies{
		Store:     store,
		Qualifier: qualifier,
		Webhooks:  webhook.NewDispatcher(map[string]string{webhook.EventLeadCapture: srv.URL + "/hooks/lead"}, "", 2*time.Second),
		Email:     email.NewSender(email.NewBrevoProvider(srv.URL+"/brevo", "key", 2*time.Second), "Team", "team@x.com", log),
		SMS:       sms.NewSender(sms.NewTextbeltProvider(srv.URL+"/textbelt", "key", 2*time.Second), log),
		FollowUps: followUps,
		Configs:   configs,
		Logger:    log,
		Now:       func() time.Time { return fixedNow },
	})
}

// ==========================
// End-to-end runs
// ==========================

func TestIntegration_FullRunAgainstFakeServices(t *testing.T) {
	fake := &remotes{}
	followUps := new(MockScheduler)
	followUps.On("ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	svc := newIntegrationService(t, fake, followUps)
	lead := &models.Lead{
		Name:           "Maria Lopez",
		Email:          "maria@example.com",
		Phone:          "+1 (555) 987-6543",
		Message:        "Looking for a 3-bed house near downtown",
		Source:         "Website",
		EstimatedValue: 450000,
	}

	outcome, err := svc.ProcessNewLead(context.Background(), lead)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, "recINT1", outcome.LeadID)
	assert.Len(t, outcome.FollowUps, 2)

	fake.mu.Lock()
	defer fake.mu.Unlock()

	require.Len(t, fake.created, 1)
	assert.Equal(t, "Maria Lopez", fake.created[0]["Full Name"])
	assert.Equal(t, "New", fake.created[0]["Status"])

	require.Len(t, fake.patched, 1)
	assert.Equal(t, float64(8), fake.patched[0]["Lead Score"])

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "real estate lead qualification AI")
	assert.Contains(t, fake.prompts[0], "- Name: Maria Lopez")

	require.Len(t, fake.events, 1)
	assert.Equal(t, webhook.EventLeadCapture, fake.events[0].Type)
	assert.Equal(t, "mobile_app", fake.events[0].Source)

	require.Len(t, fake.emails, 1)
	assert.Contains(t, fake.emails[0]["htmlContent"], "Maria")

	require.Len(t, fake.texts, 1)
	assert.Equal(t, "+15559876543", fake.texts[0]["phone"])
	assert.Contains(t, fake.texts[0]["message"], "RealEstate Pro")

	followUps.AssertExpectations(t)
}

func TestIntegration_TextbeltRefusalIsCollected(t *testing.T) {
	fake := &remotes{failText: true}
	followUps := new(MockScheduler)
	followUps.On("ScheduleFollowUp", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newIntegrationService(t, fake, followUps)

	outcome, err := svc.ProcessNewLead(context.Background(), &models.Lead{
		Name: "Maria Lopez", Email: "maria@example.com", Phone: "+15559876543",
	})
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.False(t, outcome.SMSSent)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "SMS: textbelt rejected the request: Out of quota", outcome.Errors[0])
}
