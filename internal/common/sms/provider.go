package sms

import "context"

// Provider delivers one text to an already normalized phone number.
type Provider interface {
	Name() string
	Deliver(ctx context.Context, phone, message string) (string, error)
	CheckConnectivity(ctx context.Context) error
}
