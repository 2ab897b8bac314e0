package email

import "context"

// Envelope is one fully rendered message ready for delivery.
type Envelope struct {
	FromName  string
	FromEmail string
	To        string
	ToName    string
	Subject   string
	HTML      string
}

// Provider delivers a rendered message and returns the provider's message id.
type Provider interface {
	Name() string
	Deliver(ctx context.Context, env Envelope) (string, error)
	CheckConnectivity(ctx context.Context) error
}
