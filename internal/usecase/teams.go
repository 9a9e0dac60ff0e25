package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"acs-messenger/internal/domain"
	"acs-messenger/internal/integrations/graph"
)

const permissionGuidance = "grant the app User.Read.All and Chat.ReadWrite Graph permissions (with admin consent in app mode) and rerun"

// ChatClient is the slice of the Graph client this flow needs.
type ChatClient interface {
	ResolveUser(ctx context.Context, upn string) (string, error)
	CreateOneOnOneChat(ctx context.Context, senderID, recipientID string) (string, error)
	PostMessage(ctx context.Context, chatID, content string) (string, error)
}

type TeamsService struct {
	chats ChatClient
}

type TeamsInput struct {
	SenderUPN    string
	RecipientUPN string
	Message      string
}

func NewTeamsService(chats ChatClient) (*TeamsService, error) {
	if chats == nil {
		return nil, errors.New("usecase: chat client must not be nil")
	}
	return &TeamsService{chats: chats}, nil
}

// Send resolves both principals, creates (or reuses, provider permitting) the
// 1:1 chat between them, and posts the message body verbatim. Sender and
// recipient must be distinct identities; that is checked on the UPNs before
// any network call and again on the resolved object ids.
func (s *TeamsService) Send(ctx context.Context, in TeamsInput) (domain.ChatMessageRef, error) {
	senderUPN := strings.TrimSpace(in.SenderUPN)
	recipientUPN := strings.TrimSpace(in.RecipientUPN)
	if senderUPN == "" || recipientUPN == "" {
		return domain.ChatMessageRef{}, newError(ErrorValidation, "missing_upn", nil)
	}
	if strings.EqualFold(senderUPN, recipientUPN) {
		return domain.ChatMessageRef{}, newError(ErrorValidation, "duplicate_chat_members", graph.ErrDuplicateMembers)
	}
	if in.Message == "" {
		return domain.ChatMessageRef{}, newError(ErrorValidation, "empty_message", nil)
	}

	senderID, err := s.chats.ResolveUser(ctx, senderUPN)
	if err != nil {
		return domain.ChatMessageRef{}, mapGraphError("resolve_sender_failed", err)
	}
	recipientID, err := s.chats.ResolveUser(ctx, recipientUPN)
	if err != nil {
		return domain.ChatMessageRef{}, mapGraphError("resolve_recipient_failed", err)
	}
	if senderID == recipientID {
		return domain.ChatMessageRef{}, newError(ErrorValidation, "duplicate_chat_members", graph.ErrDuplicateMembers)
	}

	chatID, err := s.chats.CreateOneOnOneChat(ctx, senderID, recipientID)
	if err != nil {
		return domain.ChatMessageRef{}, mapGraphError("create_chat_failed", err)
	}

	messageID, err := s.chats.PostMessage(ctx, chatID, in.Message)
	if err != nil {
		return domain.ChatMessageRef{}, mapGraphError("post_message_failed", err)
	}
	return domain.ChatMessageRef{ChatID: chatID, MessageID: messageID}, nil
}

// mapGraphError sorts a Graph failure into the taxonomy. Authorization
// denials get the concrete missing-permission remediation attached since the
// fix is always on the app registration, not in this process.
func mapGraphError(reason string, err error) *Error {
	var authErr *graph.AuthError
	if errors.As(err, &authErr) {
		return newError(ErrorAuth, reason, err)
	}
	if errors.Is(err, graph.ErrDuplicateMembers) {
		return newError(ErrorValidation, "duplicate_chat_members", err)
	}

	var apiErr *graph.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.AuthorizationDenied():
			return newError(ErrorAuthorization, reason, fmt.Errorf("%w; %s", err, permissionGuidance))
		case apiErr.DuplicateMembers():
			return newError(ErrorValidation, "duplicate_chat_members", err)
		case apiErr.StatusCode == http.StatusUnauthorized:
			return newError(ErrorAuth, reason, err)
		}
		return newError(ErrorTransport, reason, err)
	}
	return newError(ErrorTransport, reason, err)
}
