package email

import (
	"context"
	"fmt"
)

// SESAPI is satisfied by *aws.SESClient.
type SESAPI interface {
	SendHTML(ctx context.Context, from, to, subject, html string) (string, error)
	SendQuota(ctx context.Context) (max24h, sent float64, err error)
}

// SESProvider sends through Amazon SES.
type SESProvider struct {
	client SESAPI
}

func NewSESProvider(client SESAPI) *SESProvider {
	return &SESProvider{client: client}
}

func (p *SESProvider) Name() string { return "ses" }

func (p *SESProvider) Deliver(ctx context.Context, env Envelope) (string, error) {
	from := env.FromEmail
	if env.FromName != "" {
		from = fmt.Sprintf("%s <%s>", env.FromName, env.FromEmail)
	}
	return p.client.SendHTML(ctx, from, env.To, env.Subject, env.HTML)
}

func (p *SESProvider) CheckConnectivity(ctx context.Context) error {
	_, _, err := p.client.SendQuota(ctx)
	return err
}
