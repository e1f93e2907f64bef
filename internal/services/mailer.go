package services

import (
	"context"
	"fmt"
	"log"

	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

// Mailer delivers a rendered email and returns the provider's message id
type Mailer interface {
	Send(ctx context.Context, email models.Email) (string, error)
}

// EmailDispatcher hands an email off for delivery. Implementations may send
// inline or enqueue the message for a worker.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, email models.Email) (string, error)
}

type resendMailer struct {
	client *resend.Client
	from   string
}

// NewMailer returns a Resend-backed mailer, or a logging mailer when no API key is configured
func NewMailer(apiKey, from string) Mailer {
	if apiKey == "" {
		log.Printf("WARN: RESEND_API_KEY not set, outbound email will be logged only")
		return &logMailer{}
	}
	return &resendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *resendMailer) Send(ctx context.Context, email models.Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}

type logMailer struct{}

func (m *logMailer) Send(ctx context.Context, email models.Email) (string, error) {
	id := "dev-" + uuid.NewString()
	log.Printf("[EMAIL] id=%s to=%v subject=%q (%d bytes)", id, email.To, email.Subject, len(email.HTML))
	return id, nil
}

type directDispatcher struct {
	mailer Mailer
}

// NewDirectDispatcher sends every email inline through mailer
func NewDirectDispatcher(mailer Mailer) EmailDispatcher {
	return &directDispatcher{mailer: mailer}
}

func (d *directDispatcher) Dispatch(ctx context.Context, email models.Email) (string, error) {
	return d.mailer.Send(ctx, email)
}
