package acs

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"
)

const (
	msDateHeader        = "x-ms-date"
	msContentHashHeader = "x-ms-content-sha256"
	clientRequestHeader = "x-ms-client-request-id"
)

func decodeAccessKey(accessKey string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(accessKey)
	if err != nil {
		return nil, fmt.Errorf("acs: access key is not valid base64: %w", err)
	}
	return key, nil
}

func buildEndpointURL(base *url.URL, apiVersion string, elem ...string) *url.URL {
	u := base.JoinPath(elem...)
	query := u.Query()
	query.Set("api-version", apiVersion)
	u.RawQuery = query.Encode()
	return u
}

// newSignedRequest builds a request carrying the ACS HMAC-SHA256 headers:
// the string to sign is "METHOD\npath?query\ndate;host;content-sha256".
// See: https://learn.microsoft.com/en-us/azure/communication-services/tutorials/hmac-header-tutorial
func (cs ConnectionString) newSignedRequest(
	ctx context.Context,
	method string,
	u *url.URL,
	body []byte,
) (*http.Request, error) {
	if u == nil {
		return nil, fmt.Errorf("acs: url for signed request can not be nil")
	}

	// DO NOT USE 'time.RFC1123' : https://github.com/golang/go/issues/13781
	date := time.Now().UTC().Format(http.TimeFormat)
	contentHash := computeContentHash(body)
	pathAndQuery := fmt.Sprintf("%s?%s", u.EscapedPath(), u.RawQuery)

	stringToSign := fmt.Sprintf("%s\n%s\n%s;%s;%s", method, pathAndQuery, date, u.Host, contentHash)
	signature, err := cs.computeSignature(stringToSign)
	if err != nil {
		return nil, fmt.Errorf("acs: failed to build request signature: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("acs: failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(msDateHeader, date)
	request.Header.Set(msContentHashHeader, contentHash)
	request.Header.Set("Authorization", fmt.Sprintf(
		"HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature=%s",
		signature,
	))
	return request, nil
}

func computeContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (cs ConnectionString) computeSignature(toSign string) (string, error) {
	if !utf8.ValidString(toSign) {
		return "", fmt.Errorf("string to sign is not valid utf-8")
	}
	mac := hmac.New(sha256.New, cs.decodedKey)
	if _, err := mac.Write([]byte(toSign)); err != nil {
		return "", fmt.Errorf("failed to write to MAC: %w", err)
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// CommunicationError is the machine-readable error envelope returned by ACS
// endpoints. Code is the stable handle; Microsoft may add new codes.
type CommunicationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target"`
}

func (e *CommunicationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[target:%s] %s - %s", e.Target, e.Code, e.Message)
	}
	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

type communicationErrorResponse struct {
	Error CommunicationError `json:"error"`
}

// APIError captures a non-success ACS response with status-aware context.
type APIError struct {
	StatusCode int
	URL        string
	Err        *CommunicationError
	Body       string
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acs: unexpected status %d from %s: %v", e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("acs: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

func (e *APIError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// readAPIError drains a non-success response into an *APIError, decoding the
// ACS error envelope when the body carries one.
func readAPIError(res *http.Response, url string) *APIError {
	buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	apiErr := &APIError{StatusCode: res.StatusCode, URL: url, Body: string(buf)}

	var envelope communicationErrorResponse
	if err := json.Unmarshal(buf, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Err = &envelope.Error
	}
	return apiErr
}
