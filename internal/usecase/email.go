// Package usecase orchestrates the three one-shot send flows on top of the
// provider integrations, mapping every failure onto the error taxonomy.
package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"acs-messenger/internal/domain"
	"acs-messenger/internal/integrations/acs"
)

// Built-in sample content used when no subject/body is configured.
const (
	sampleEmailSubject   = "Test Email"
	sampleEmailPlainText = "Hello world via email."
	sampleEmailHTML      = "<html><body><h1>Hello world via email.</h1></body></html>"
)

// EmailSender is the slice of the ACS email client this flow needs.
type EmailSender interface {
	Send(ctx context.Context, msg domain.EmailMessage) (string, error)
	WaitForCompletion(ctx context.Context, operationID string) (domain.EmailResult, error)
}

type EmailService struct {
	sender EmailSender
}

type EmailInput struct {
	SenderAddress    string
	RecipientAddress string
	Subject          string
	PlainText        string
	HTML             string
}

func NewEmailService(sender EmailSender) (*EmailService, error) {
	if sender == nil {
		return nil, errors.New("usecase: email sender must not be nil")
	}
	return &EmailService{sender: sender}, nil
}

// Send submits one email and blocks until the provider reports a terminal
// send status.
func (s *EmailService) Send(ctx context.Context, in EmailInput) (domain.EmailResult, error) {
	sender := strings.TrimSpace(in.SenderAddress)
	recipient := strings.TrimSpace(in.RecipientAddress)
	if sender == "" || recipient == "" {
		return domain.EmailResult{}, newError(ErrorValidation, "missing_address", nil)
	}

	msg := domain.EmailMessage{
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Subject:          in.Subject,
		PlainText:        in.PlainText,
		HTML:             in.HTML,
	}
	if msg.Subject == "" {
		msg.Subject = sampleEmailSubject
	}
	if msg.PlainText == "" {
		msg.PlainText = sampleEmailPlainText
		if msg.HTML == "" {
			msg.HTML = sampleEmailHTML
		}
	}

	operationID, err := s.sender.Send(ctx, msg)
	if err != nil {
		return domain.EmailResult{}, mapACSError("email_send_rejected", err)
	}

	result, err := s.sender.WaitForCompletion(ctx, operationID)
	if err != nil {
		return result, mapACSError("email_send_not_completed", err)
	}
	return result, nil
}

// mapACSError sorts an ACS client failure into the taxonomy: 401/403 means
// the connection string credential was rejected, anything else provider-side
// is transport.
func mapACSError(reason string, err error) *Error {
	var apiErr *acs.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return newError(ErrorAuth, reason, err)
		}
		return newError(ErrorTransport, reason, err)
	}
	return newError(ErrorTransport, reason, err)
}
