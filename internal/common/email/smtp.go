package email

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	apperrors "lead-automation/internal/common/errors"
)

const smtpService = "smtp"

// SMTPProvider delivers over a direct SMTP connection.
type SMTPProvider struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
}

func NewSMTPProvider(host string, port int, username, password string, timeout time.Duration) *SMTPProvider {
	return &SMTPProvider{host: host, port: port, username: username, password: password, timeout: timeout}
}

func (s *SMTPProvider) Name() string { return smtpService }

func (s *SMTPProvider) Deliver(ctx context.Context, env Envelope) (string, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(env.FromName, env.FromEmail); err != nil {
		return "", apperrors.NewValidationError("invalid sender address", err.Error())
	}
	if err := msg.AddToFormat(env.ToName, env.To); err != nil {
		return "", apperrors.NewValidationError("invalid recipient address", err.Error())
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, env.HTML)

	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), s.host)
	msg.SetMessageIDWithValue(messageID)

	client, err := s.client()
	if err != nil {
		return "", apperrors.NewTransportError(smtpService, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", foldSMTPError(err)
	}
	return messageID, nil
}

// CheckConnectivity opens and closes an authenticated session.
func (s *SMTPProvider) CheckConnectivity(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return apperrors.NewTransportError(smtpService, err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return foldSMTPError(err)
	}
	_ = client.Close()
	return nil
}

func (s *SMTPProvider) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(s.timeout),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}
	return gomail.NewClient(s.host, opts...)
}

// foldSMTPError separates server rejections (the server answered) from dial failures.
func foldSMTPError(err error) error {
	var sendErr *gomail.SendError
	if stderrors.As(err, &sendErr) {
		return apperrors.NewProtocolError(smtpService, 550, sendErr.Error())
	}
	return apperrors.NewTransportError(smtpService, err)
}
