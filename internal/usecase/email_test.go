package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"acs-messenger/internal/domain"
	"acs-messenger/internal/integrations/acs"
)

// fakeEmailSender is an EmailSender stub recording the submitted message.
type fakeEmailSender struct {
	sent      domain.EmailMessage
	sendCalls int
	waitCalls int
	sendErr   error
	waitErr   error
	result    domain.EmailResult
}

func (f *fakeEmailSender) Send(_ context.Context, msg domain.EmailMessage) (string, error) {
	f.sendCalls++
	f.sent = msg
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "op-123", nil
}

func (f *fakeEmailSender) WaitForCompletion(_ context.Context, operationID string) (domain.EmailResult, error) {
	f.waitCalls++
	if f.waitErr != nil {
		return f.result, f.waitErr
	}
	if f.result.OperationID == "" {
		f.result.OperationID = operationID
	}
	return f.result, nil
}

func TestEmailSend_Succeeds(t *testing.T) {
	sender := &fakeEmailSender{result: domain.EmailResult{Status: domain.EmailStatusSucceeded}}
	svc, err := NewEmailService(sender)
	require.NoError(t, err)

	result, err := svc.Send(context.Background(), EmailInput{
		SenderAddress:    "donotreply@example.com",
		RecipientAddress: "user@example.com",
		Subject:          "Greetings",
		PlainText:        "hi",
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Equal(t, "op-123", result.OperationID)
	require.Equal(t, "Greetings", sender.sent.Subject)
	require.Equal(t, "hi", sender.sent.PlainText)
}

func TestEmailSend_SampleContentDefaults(t *testing.T) {
	sender := &fakeEmailSender{result: domain.EmailResult{Status: domain.EmailStatusSucceeded}}
	svc, _ := NewEmailService(sender)

	_, err := svc.Send(context.Background(), EmailInput{
		SenderAddress:    "donotreply@example.com",
		RecipientAddress: "user@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Test Email", sender.sent.Subject)
	require.Equal(t, "Hello world via email.", sender.sent.PlainText)
	require.Contains(t, sender.sent.HTML, "Hello world via email.")
}

func TestEmailSend_MissingAddresses_NoSendCall(t *testing.T) {
	sender := &fakeEmailSender{}
	svc, _ := NewEmailService(sender)

	_, err := svc.Send(context.Background(), EmailInput{SenderAddress: "donotreply@example.com"})
	requireCode(t, err, ErrorValidation)
	require.Zero(t, sender.sendCalls)
}

func TestEmailSend_AuthRejection(t *testing.T) {
	sender := &fakeEmailSender{sendErr: &acs.APIError{StatusCode: http.StatusUnauthorized}}
	svc, _ := NewEmailService(sender)

	_, err := svc.Send(context.Background(), EmailInput{
		SenderAddress:    "donotreply@example.com",
		RecipientAddress: "user@example.com",
	})
	requireCode(t, err, ErrorAuth)
	require.Zero(t, sender.waitCalls)
}

func TestEmailSend_TransportFailure(t *testing.T) {
	sender := &fakeEmailSender{
		result:  domain.EmailResult{OperationID: "op-123", Status: domain.EmailStatusFailed},
		waitErr: errors.New("acs: email operation op-123 ended Failed"),
	}
	svc, _ := NewEmailService(sender)

	result, err := svc.Send(context.Background(), EmailInput{
		SenderAddress:    "donotreply@example.com",
		RecipientAddress: "user@example.com",
	})
	requireCode(t, err, ErrorTransport)
	require.Equal(t, domain.EmailStatusFailed, result.Status)
}
