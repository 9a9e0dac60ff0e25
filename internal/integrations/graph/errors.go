package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// codeAuthorizationDenied is what Graph returns when the token's permission
// set lacks read access for the attempted operation.
const codeAuthorizationDenied = "Authorization_RequestDenied"

// ErrDuplicateMembers marks a 1:1 chat whose two members resolve to the same
// directory identity. This is an input problem, never retried.
var ErrDuplicateMembers = errors.New("graph: chat members must be two distinct identities")

type graphErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type graphErrorResponse struct {
	Error graphErrorBody `json:"error"`
}

// APIError is a non-success Graph response with its odata error envelope.
type APIError struct {
	StatusCode int
	URL        string
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("graph: status %d from %s: %s: %s", e.StatusCode, e.URL, e.Code, e.Message)
	}
	return fmt.Sprintf("graph: status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

// AuthorizationDenied reports whether the token lacked a required permission
// scope for the operation.
func (e *APIError) AuthorizationDenied() bool {
	return e.Code == codeAuthorizationDenied || e.StatusCode == http.StatusForbidden
}

// DuplicateMembers reports whether the provider rejected a chat because both
// members were the same identity.
func (e *APIError) DuplicateMembers() bool {
	return strings.Contains(strings.ToLower(e.Message), "duplicate")
}

func readAPIError(res *http.Response, endpoint string) *APIError {
	buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	apiErr := &APIError{StatusCode: res.StatusCode, URL: endpoint, Body: string(buf)}

	var envelope graphErrorResponse
	if err := json.Unmarshal(buf, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
