package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://graph.microsoft.com"

// TokenSource yields a bearer token for Graph calls. *Credential satisfies
// it; tests substitute a stub.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client drives the three Graph routes the Teams flow needs: user lookup,
// 1:1 chat creation, and chat message posting.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Graph client backed by the given token source.
func NewClient(tokens TokenSource, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("graph: token source must not be nil")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type userResponse struct {
	ID string `json:"id"`
}

// ResolveUser looks a user principal name up in the directory and returns
// the user's object id. The UPN is path-escaped to support characters like
// '#' in external guest accounts.
func (c *Client) ResolveUser(ctx context.Context, upn string) (string, error) {
	upn = strings.TrimSpace(upn)
	if upn == "" {
		return "", errors.New("graph: user principal name must not be empty")
	}

	endpoint := c.baseURL + "/v1.0/users/" + url.PathEscape(upn) + "?$select=id"
	raw, err := c.doJSON(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("graph: resolve user %q: %w", upn, err)
	}

	var payload userResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("graph: decode user response: %w", err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("graph: user %q resolved without an object id", upn)
	}
	return payload.ID, nil
}

type chatRequest struct {
	ChatType string       `json:"chatType"`
	Members  []chatMember `json:"members"`
}

type chatMember struct {
	ODataType string   `json:"@odata.type"`
	Roles     []string `json:"roles"`
	UserBind  string   `json:"user@odata.bind"`
}

type chatResponse struct {
	ID string `json:"id"`
}

// CreateOneOnOneChat creates (or lets the provider dedupe onto) a 1:1 chat
// between the two directory identities and returns the chat id. Identical
// member ids are rejected before the call; the provider's own
// duplicate-member rejection surfaces as *APIError.
func (c *Client) CreateOneOnOneChat(ctx context.Context, senderID, recipientID string) (string, error) {
	if senderID == "" || recipientID == "" {
		return "", errors.New("graph: both chat member ids are required")
	}
	if senderID == recipientID {
		return "", ErrDuplicateMembers
	}

	body, err := json.Marshal(chatRequest{
		ChatType: "oneOnOne",
		Members: []chatMember{
			{
				ODataType: "#microsoft.graph.aadUserConversationMember",
				Roles:     []string{"owner"},
				UserBind:  fmt.Sprintf("https://graph.microsoft.com/v1.0/users('%s')", senderID),
			},
			{
				ODataType: "#microsoft.graph.aadUserConversationMember",
				Roles:     []string{"owner"},
				UserBind:  fmt.Sprintf("https://graph.microsoft.com/v1.0/users('%s')", recipientID),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("graph: marshal chat request: %w", err)
	}

	raw, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/v1.0/chats", body)
	if err != nil {
		return "", fmt.Errorf("graph: create chat: %w", err)
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("graph: decode chat response: %w", err)
	}
	if payload.ID == "" {
		return "", errors.New("graph: chat created without an id")
	}
	return payload.ID, nil
}

type chatMessageRequest struct {
	Body chatMessageBody `json:"body"`
}

type chatMessageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type chatMessageResponse struct {
	ID string `json:"id"`
}

// PostMessage posts an html-bodied message into the chat and returns the
// provider-assigned message id.
func (c *Client) PostMessage(ctx context.Context, chatID, content string) (string, error) {
	if chatID == "" {
		return "", errors.New("graph: chat id must not be empty")
	}

	body, err := json.Marshal(chatMessageRequest{
		Body: chatMessageBody{ContentType: "html", Content: content},
	})
	if err != nil {
		return "", fmt.Errorf("graph: marshal chat message: %w", err)
	}

	endpoint := c.baseURL + "/v1.0/chats/" + url.PathEscape(chatID) + "/messages"
	raw, err := c.doJSON(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("graph: post message: %w", err)
	}

	var payload chatMessageResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("graph: decode chat message response: %w", err)
	}
	if payload.ID == "" {
		return "", errors.New("graph: message posted without an id")
	}
	return payload.ID, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, readAPIError(res, endpoint)
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
