package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"clubforms-backend/internal/logger"
)

// mailSender is the part of *sendgrid.Client used here.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return newSendGridEmailService(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridEmailService(client mailSender, fromEmail, fromName string) *sendGridEmailService {
	return &sendGridEmailService{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (s *sendGridEmailService) SendSubmissionConfirmation(ctx context.Context, to, ownerName string) error {
	subject := fmt.Sprintf("Your response to %s was received", ownerName)
	plainText := fmt.Sprintf("Thanks for your response to %s. We have received it.", ownerName)
	htmlContent := fmt.Sprintf("<p>Thanks for your response to <strong>%s</strong>. We have received it.</p>", html.EscapeString(ownerName))

	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail("", to), plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err)
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

type noopEmailService struct{}

// NewNoopEmailService is used when no SendGrid key is configured.
func NewNoopEmailService() EmailService { return noopEmailService{} }

func (noopEmailService) SendSubmissionConfirmation(context.Context, string, string) error { return nil }
