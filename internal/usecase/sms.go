package usecase

import (
	"context"
	"errors"
	"strings"

	"acs-messenger/internal/domain"
)

const sampleSMSMessage = "Hello World 👋🏻 via SMS"

// SMSSender is the slice of the ACS SMS client this flow needs.
type SMSSender interface {
	Send(ctx context.Context, from string, to []string, message string) ([]domain.SMSResult, error)
}

type SMSService struct {
	sender SMSSender
}

type SMSInput struct {
	From    string
	To      []string
	Message string
}

func NewSMSService(sender SMSSender) (*SMSService, error) {
	if sender == nil {
		return nil, errors.New("usecase: sms sender must not be nil")
	}
	return &SMSService{sender: sender}, nil
}

// Send submits one message to every recipient in a single provider call.
// The returned slice carries one independently-tagged entry per recipient;
// recipient-level failures (malformed number) live there, while a non-nil
// error means the submission as a whole did not happen.
func (s *SMSService) Send(ctx context.Context, in SMSInput) ([]domain.SMSResult, error) {
	from := strings.TrimSpace(in.From)
	if from == "" {
		return nil, newError(ErrorValidation, "missing_from_number", nil)
	}
	to := make([]string, 0, len(in.To))
	for _, number := range in.To {
		if number = strings.TrimSpace(number); number != "" {
			to = append(to, number)
		}
	}
	if len(to) == 0 {
		return nil, newError(ErrorValidation, "missing_recipients", nil)
	}

	message := in.Message
	if message == "" {
		message = sampleSMSMessage
	}

	results, err := s.sender.Send(ctx, from, to, message)
	if err != nil {
		return nil, mapACSError("sms_send_rejected", err)
	}
	return results, nil
}

// AnyFailed reports whether at least one per-recipient entry was
// unsuccessful; the process exit code depends on it.
func AnyFailed(results []domain.SMSResult) bool {
	for _, r := range results {
		if !r.Successful {
			return true
		}
	}
	return false
}
