package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"acs-messenger/internal/domain"
	"acs-messenger/internal/integrations/acs"
)

// fakeSMSSender is an SMSSender stub echoing one result per recipient.
type fakeSMSSender struct {
	calls   int
	from    string
	to      []string
	message string
	err     error
	failing map[string]bool
}

func (f *fakeSMSSender) Send(_ context.Context, from string, to []string, message string) ([]domain.SMSResult, error) {
	f.calls++
	f.from, f.to, f.message = from, to, message
	if f.err != nil {
		return nil, f.err
	}
	results := make([]domain.SMSResult, 0, len(to))
	for _, number := range to {
		results = append(results, domain.SMSResult{
			To:         number,
			MessageID:  "m-" + number,
			Successful: !f.failing[number],
		})
	}
	return results, nil
}

func TestSMSSend_OneResultPerRecipient(t *testing.T) {
	sender := &fakeSMSSender{failing: map[string]bool{"+1800BAD": true}}
	svc, err := NewSMSService(sender)
	require.NoError(t, err)

	results, err := svc.Send(context.Background(), SMSInput{
		From:    "+18005550100",
		To:      []string{"+18005550101", "+1800BAD", "+18005550102"},
		Message: "hi",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.True(t, results[0].Successful)
	require.False(t, results[1].Successful)
	require.True(t, results[2].Successful)
	require.True(t, AnyFailed(results))
}

func TestSMSSend_AllSuccessful(t *testing.T) {
	sender := &fakeSMSSender{}
	svc, _ := NewSMSService(sender)

	results, err := svc.Send(context.Background(), SMSInput{
		From: "+18005550100",
		To:   []string{"+18005550101"},
	})
	require.NoError(t, err)
	require.False(t, AnyFailed(results))
	// Built-in sample body when none is configured.
	require.NotEmpty(t, sender.message)
}

func TestSMSSend_TrimsAndValidatesRecipients(t *testing.T) {
	sender := &fakeSMSSender{}
	svc, _ := NewSMSService(sender)

	_, err := svc.Send(context.Background(), SMSInput{From: "+18005550100", To: []string{" ", ""}})
	requireCode(t, err, ErrorValidation)
	require.Zero(t, sender.calls)

	_, err = svc.Send(context.Background(), SMSInput{To: []string{"+18005550101"}})
	requireCode(t, err, ErrorValidation)
	require.Zero(t, sender.calls)

	_, err = svc.Send(context.Background(), SMSInput{
		From: "+18005550100",
		To:   []string{" +18005550101 "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"+18005550101"}, sender.to)
}

func TestSMSSend_AuthFailureIsFatal(t *testing.T) {
	sender := &fakeSMSSender{err: &acs.APIError{StatusCode: http.StatusUnauthorized}}
	svc, _ := NewSMSService(sender)

	_, err := svc.Send(context.Background(), SMSInput{
		From: "+18005550100",
		To:   []string{"+18005550101"},
	})
	requireCode(t, err, ErrorAuth)
}
