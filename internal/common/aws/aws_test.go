package aws

import (
	"context"
	"fmt"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-automation/internal/common/errors"
)

type MockSESAPI struct {
	SendEmailFunc    func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
	GetSendQuotaFunc func(ctx context.Context, params *ses.GetSendQuotaInput) (*ses.GetSendQuotaOutput, error)
}

func (m *MockSESAPI) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params)
}

func (m *MockSESAPI) GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, _ ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error) {
	return m.GetSendQuotaFunc(ctx, params)
}

type MockSNSAPI struct {
	PublishFunc          func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
	GetSMSAttributesFunc func(ctx context.Context, params *sns.GetSMSAttributesInput) (*sns.GetSMSAttributesOutput, error)
}

func (m *MockSNSAPI) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params)
}

func (m *MockSNSAPI) GetSMSAttributes(ctx context.Context, params *sns.GetSMSAttributesInput, _ ...func(*sns.Options)) (*sns.GetSMSAttributesOutput, error) {
	return m.GetSMSAttributesFunc(ctx, params)
}

func TestSESClient_SendHTML(t *testing.T) {
	api := &MockSESAPI{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
			assert.Equal(t, []string{"john@x.com"}, params.Destination.ToAddresses)
			assert.Equal(t, "Brand <noreply@brand.com>", awssdk.ToString(params.Source))
			assert.Equal(t, "Hello", awssdk.ToString(params.Message.Subject.Data))
			assert.Equal(t, "<p>hi</p>", awssdk.ToString(params.Message.Body.Html.Data))
			return &ses.SendEmailOutput{MessageId: awssdk.String("ses-1")}, nil
		},
	}

	id, err := NewSESClientWithAPI(api).SendHTML(context.Background(), "Brand <noreply@brand.com>", "john@x.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
}

func TestSESClient_ErrorFolding(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
	}{
		{"api error", &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified"}, apperrors.ErrCodeProtocol},
		{"network error", fmt.Errorf("dial tcp: i/o timeout"), apperrors.ErrCodeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockSESAPI{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
					return nil, tt.err
				},
			}
			_, err := NewSESClientWithAPI(api).SendHTML(context.Background(), "a@b.co", "c@d.co", "s", "b")
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
}

func TestSESClient_SendQuota(t *testing.T) {
	api := &MockSESAPI{
		GetSendQuotaFunc: func(ctx context.Context, params *ses.GetSendQuotaInput) (*ses.GetSendQuotaOutput, error) {
			return &ses.GetSendQuotaOutput{Max24HourSend: 200, SentLast24Hours: 12}, nil
		},
	}
	max24h, sent, err := NewSESClientWithAPI(api).SendQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200.0, max24h)
	assert.Equal(t, 12.0, sent)
}

func TestSNSClient_PublishSMS(t *testing.T) {
	api := &MockSNSAPI{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			assert.Equal(t, "+15551234567", awssdk.ToString(params.PhoneNumber))
			assert.Equal(t, "Transactional", awssdk.ToString(params.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
			return &sns.PublishOutput{MessageId: awssdk.String("sns-1")}, nil
		},
	}
	id, err := NewSNSClientWithAPI(api).PublishSMS(context.Background(), "+15551234567", "hi")
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)
}

func TestSNSClient_SMSAttributes(t *testing.T) {
	api := &MockSNSAPI{
		GetSMSAttributesFunc: func(ctx context.Context, params *sns.GetSMSAttributesInput) (*sns.GetSMSAttributesOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AuthorizationError", Message: "denied"}
		},
	}
	_, err := NewSNSClientWithAPI(api).SMSAttributes(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProtocol, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "AuthorizationError")
}
