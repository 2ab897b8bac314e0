package sms

import (
	"context"

	"github.com/nyaruka/phonenumbers"

	apperrors "lead-automation/internal/common/errors"
)

// SNSAPI is satisfied by *aws.SNSClient.
type SNSAPI interface {
	PublishSMS(ctx context.Context, phoneE164, message string) (string, error)
	SMSAttributes(ctx context.Context) (map[string]string, error)
}

// SNSProvider sends through Amazon SNS, which requires E.164 numbers.
type SNSProvider struct {
	client        SNSAPI
	defaultRegion string
}

func NewSNSProvider(client SNSAPI, defaultRegion string) *SNSProvider {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &SNSProvider{client: client, defaultRegion: defaultRegion}
}

func (p *SNSProvider) Name() string { return "sns" }

func (p *SNSProvider) Deliver(ctx context.Context, phone, message string) (string, error) {
	e164, err := ToE164(phone, p.defaultRegion)
	if err != nil {
		return "", err
	}
	return p.client.PublishSMS(ctx, e164, message)
}

func (p *SNSProvider) CheckConnectivity(ctx context.Context) error {
	_, err := p.client.SMSAttributes(ctx)
	return err
}

// ToE164 parses phone in defaultRegion and formats it as E.164.
func ToE164(phone, defaultRegion string) (string, error) {
	num, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil {
		return "", apperrors.NewValidationError("invalid phone number", err.Error())
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", apperrors.NewValidationError("invalid phone number", phone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
