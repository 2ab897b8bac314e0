package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lead-automation/internal/common/logger"
	"lead-automation/internal/models"
)

type MockFollowUpHandler struct {
	mock.Mock
}

func (m *MockFollowUpHandler) Deliver(ctx context.Context, payload FollowUpPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func TestFollowUpTask_RoundTrip(t *testing.T) {
	in := FollowUpPayload{
		LeadID:     "rec1",
		Channel:    models.ChannelEmail,
		TemplateID: "followUp",
		Lead:       models.Lead{Name: "John Doe", Email: "john@x.com"},
	}

	task, err := NewFollowUpTask(in)
	require.NoError(t, err)
	assert.Equal(t, TaskFollowUpDeliver, task.Type())

	out, err := ParseFollowUpPayload(task)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWorker_HandleFollowUp(t *testing.T) {
	handler := new(MockFollowUpHandler)
	w := &Worker{handler: handler, logger: logger.NewTestLogger(t)}

	payload := FollowUpPayload{LeadID: "rec1", Channel: models.ChannelSMS, TemplateID: "followUp"}
	handler.On("Deliver", mock.Anything, payload).Return(nil).Once()

	task, err := NewFollowUpTask(payload)
	require.NoError(t, err)
	require.NoError(t, w.handleFollowUp(context.Background(), task))
	handler.AssertExpectations(t)
}

func TestWorker_HandleFollowUp_SkipsRetry(t *testing.T) {
	handler := new(MockFollowUpHandler)
	handler.On("Deliver", mock.Anything, mock.Anything).Return(fmt.Errorf("provider down"))
	w := &Worker{handler: handler, logger: logger.NewNoOpLogger()}

	task, err := NewFollowUpTask(FollowUpPayload{Channel: models.ChannelEmail, TemplateID: "nurture"})
	require.NoError(t, err)

	err = w.handleFollowUp(context.Background(), task)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, asynq.SkipRetry))

	err = w.handleFollowUp(context.Background(), asynq.NewTask(TaskFollowUpDeliver, []byte("{")))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, asynq.SkipRetry))
}

func TestLogScheduler(t *testing.T) {
	s := NewLogScheduler(logger.NewTestLogger(t))
	err := s.ScheduleFollowUp(context.Background(), FollowUpPayload{LeadID: "rec1"}, time.Now().Add(time.Hour))
	assert.NoError(t, err)
}
