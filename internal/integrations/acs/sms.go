package acs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"acs-messenger/internal/domain"
)

const smsAPIVersion = "2021-03-07"

// smsRequest is the submission shape for the /sms endpoint. One call carries
// every recipient; the provider answers with one result entry each.
type smsRequest struct {
	From           string          `json:"from"`
	SMSRecipients  []smsRecipient  `json:"smsRecipients"`
	Message        string          `json:"message"`
	SMSSendOptions *smsSendOptions `json:"smsSendOptions,omitempty"`
}

type smsRecipient struct {
	To                     string `json:"to"`
	RepeatabilityRequestID string `json:"repeatabilityRequestId,omitempty"`
	RepeatabilityFirstSent string `json:"repeatabilityFirstSent,omitempty"`
}

type smsSendOptions struct {
	EnableDeliveryReport bool `json:"enableDeliveryReport"`
}

type smsResponse struct {
	Value []smsResultEntry `json:"value"`
}

type smsResultEntry struct {
	To             string `json:"to"`
	MessageID      string `json:"messageId"`
	HTTPStatusCode int    `json:"httpStatusCode"`
	Successful     bool   `json:"successful"`
	ErrorMessage   string `json:"errorMessage"`
}

// SMSClient submits SMS through an ACS resource.
type SMSClient struct {
	conn       ConnectionString
	httpClient *http.Client
}

type SMSOption func(*SMSClient)

func WithSMSHTTPClient(httpClient *http.Client) SMSOption {
	return func(c *SMSClient) {
		c.httpClient = httpClient
	}
}

// NewSMSClient creates an SMSClient from a parsed connection string.
func NewSMSClient(conn ConnectionString, opts ...SMSOption) (*SMSClient, error) {
	if conn.endpoint == nil {
		return nil, errors.New("acs: sms client needs a parsed connection string")
	}
	c := &SMSClient{
		conn:       conn,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send submits one message to every recipient in a single call and returns
// one result per recipient, in request order. Recipient-level failures (for
// example a malformed number) live in the individual entries, not in err.
func (c *SMSClient) Send(ctx context.Context, from string, to []string, message string) ([]domain.SMSResult, error) {
	if from == "" {
		return nil, errors.New("acs: sms from number is required")
	}
	if len(to) == 0 {
		return nil, errors.New("acs: sms needs at least one recipient")
	}

	firstSent := time.Now().UTC().Format(http.TimeFormat)
	recipients := make([]smsRecipient, 0, len(to))
	for _, number := range to {
		recipients = append(recipients, smsRecipient{
			To:                     number,
			RepeatabilityRequestID: newUUID(),
			RepeatabilityFirstSent: firstSent,
		})
	}

	body, err := json.Marshal(smsRequest{
		From:           from,
		SMSRecipients:  recipients,
		Message:        message,
		SMSSendOptions: &smsSendOptions{EnableDeliveryReport: false},
	})
	if err != nil {
		return nil, fmt.Errorf("acs: marshal sms request: %w", err)
	}

	u := buildEndpointURL(c.conn.Endpoint(), smsAPIVersion, "sms")
	req, err := c.conn.newSignedRequest(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(clientRequestHeader, newUUID())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acs: sms send request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusAccepted {
		return nil, readAPIError(res, u.String())
	}

	var payload smsResponse
	if err := decodeBody(res.Body, &payload); err != nil {
		return nil, fmt.Errorf("acs: decode sms response: %w", err)
	}
	if len(payload.Value) != len(to) {
		return nil, fmt.Errorf("acs: sms response has %d entries for %d recipients", len(payload.Value), len(to))
	}

	results := make([]domain.SMSResult, 0, len(payload.Value))
	for _, entry := range payload.Value {
		results = append(results, domain.SMSResult{
			To:             entry.To,
			MessageID:      entry.MessageID,
			Successful:     entry.Successful,
			HTTPStatusCode: entry.HTTPStatusCode,
			ErrorMessage:   entry.ErrorMessage,
		})
	}
	return results, nil
}
