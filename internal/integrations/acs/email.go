package acs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"acs-messenger/internal/domain"
)

const (
	emailAPIVersion = "2023-03-31"

	defaultPollInterval    = 2 * time.Second
	defaultMaxPollAttempts = 20
)

// emailRequest is the submission shape for the /emails:send endpoint.
type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Recipients    emailRecipients `json:"recipients"`
	Content       emailContent    `json:"content"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailContent struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plainText"`
	HTML      string `json:"html,omitempty"`
}

// emailOperation is the status shape returned both by the submission and by
// the operation poll endpoint.
type emailOperation struct {
	ID     string              `json:"id"`
	Status string              `json:"status"`
	Error  *CommunicationError `json:"error"`
}

// EmailClient submits email through an ACS resource and polls the resulting
// long-running operation to a terminal status.
type EmailClient struct {
	conn            ConnectionString
	httpClient      *http.Client
	pollInterval    time.Duration
	maxPollAttempts int
}

type EmailOption func(*EmailClient)

func WithEmailHTTPClient(httpClient *http.Client) EmailOption {
	return func(c *EmailClient) {
		c.httpClient = httpClient
	}
}

// WithPollInterval overrides the delay between status polls.
func WithPollInterval(d time.Duration) EmailOption {
	return func(c *EmailClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxPollAttempts bounds how many status polls are made before giving up.
func WithMaxPollAttempts(n int) EmailOption {
	return func(c *EmailClient) {
		if n > 0 {
			c.maxPollAttempts = n
		}
	}
}

// NewEmailClient creates an EmailClient from a parsed connection string.
func NewEmailClient(conn ConnectionString, opts ...EmailOption) (*EmailClient, error) {
	if conn.endpoint == nil {
		return nil, errors.New("acs: email client needs a parsed connection string")
	}
	c := &EmailClient{
		conn:            conn,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		pollInterval:    defaultPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send submits one message and returns the provider operation id to poll.
func (c *EmailClient) Send(ctx context.Context, msg domain.EmailMessage) (string, error) {
	if msg.SenderAddress == "" || msg.RecipientAddress == "" {
		return "", errors.New("acs: email sender and recipient addresses are required")
	}

	body, err := json.Marshal(emailRequest{
		SenderAddress: msg.SenderAddress,
		Recipients:    emailRecipients{To: []emailAddress{{Address: msg.RecipientAddress}}},
		Content: emailContent{
			Subject:   msg.Subject,
			PlainText: msg.PlainText,
			HTML:      msg.HTML,
		},
	})
	if err != nil {
		return "", fmt.Errorf("acs: marshal email request: %w", err)
	}

	u := buildEndpointURL(c.conn.Endpoint(), emailAPIVersion, "emails:send")
	req, err := c.conn.newSignedRequest(ctx, http.MethodPost, u, body)
	if err != nil {
		return "", err
	}
	operationID := newUUID()
	req.Header.Set("Operation-Id", operationID)
	req.Header.Set(clientRequestHeader, newUUID())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("acs: email send request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusAccepted {
		return "", readAPIError(res, u.String())
	}

	var op emailOperation
	if err := decodeBody(res.Body, &op); err != nil {
		return "", fmt.Errorf("acs: decode email send response: %w", err)
	}
	if op.ID != "" {
		operationID = op.ID
	}
	return operationID, nil
}

// WaitForCompletion polls the operation until a terminal status or until the
// attempt bound is hit. A Failed or Canceled terminal status is returned as
// an error alongside the result.
func (c *EmailClient) WaitForCompletion(ctx context.Context, operationID string) (domain.EmailResult, error) {
	if operationID == "" {
		return domain.EmailResult{}, errors.New("acs: operation id is required")
	}

	result := domain.EmailResult{OperationID: operationID}
	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		op, err := c.getOperation(ctx, operationID)
		if err != nil {
			return result, err
		}
		result.Status = op.Status

		switch op.Status {
		case domain.EmailStatusSucceeded:
			return result, nil
		case domain.EmailStatusFailed, domain.EmailStatusCanceled:
			if op.Error != nil {
				return result, fmt.Errorf("acs: email operation %s ended %s: %w", operationID, op.Status, op.Error)
			}
			return result, fmt.Errorf("acs: email operation %s ended %s", operationID, op.Status)
		}
	}
	return result, fmt.Errorf("acs: email operation %s still not terminal after %d polls", operationID, c.maxPollAttempts)
}

func (c *EmailClient) getOperation(ctx context.Context, operationID string) (emailOperation, error) {
	u := buildEndpointURL(c.conn.Endpoint(), emailAPIVersion, "emails", "operations", operationID)
	req, err := c.conn.newSignedRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return emailOperation{}, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return emailOperation{}, fmt.Errorf("acs: email status request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return emailOperation{}, readAPIError(res, u.String())
	}

	var op emailOperation
	if err := decodeBody(res.Body, &op); err != nil {
		return emailOperation{}, fmt.Errorf("acs: decode email status response: %w", err)
	}
	return op, nil
}

func decodeBody(r io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(v)
}

var newUUID = func() string {
	return uuid.NewString()
}
