// Package graph talks to the Microsoft Graph chat and directory routes used
// by the Teams flow, with token acquisition through azidentity.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"acs-messenger/internal/config"
)

// appScope is the resource-wide scope for the client-credentials grant; the
// effective permissions are whatever the app registration was granted.
const appScope = "https://graph.microsoft.com/.default"

// delegatedScopes are requested in device-code mode so the signed-in user can
// resolve other users by UPN and write 1:1 chats.
var delegatedScopes = []string{"User.Read.All", "Chat.ReadWrite"}

// Credential pairs a token source with the scopes its grant variant
// supports. Built exactly once at startup; the mode never changes mid-run.
type Credential struct {
	mode   config.AuthMode
	cred   azcore.TokenCredential
	scopes []string
}

// NewAppCredential builds the client-credentials (app-only) variant.
func NewAppCredential(tenantID, clientID string, clientSecret config.Secret) (*Credential, error) {
	if clientSecret.IsZero() {
		return nil, errors.New("graph: app mode requires a client secret")
	}
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret.Reveal(), nil)
	if err != nil {
		return nil, fmt.Errorf("graph: create client secret credential: %w", err)
	}
	return &Credential{
		mode:   config.AuthModeApp,
		cred:   cred,
		scopes: []string{appScope},
	}, nil
}

// NewDelegatedCredential builds the device-code variant. prompt receives the
// provider's verification instructions (URL plus user code) and must show
// them to the user; token acquisition then blocks until sign-in completes or
// the code expires.
func NewDelegatedCredential(tenantID, clientID string, prompt func(message string)) (*Credential, error) {
	cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
		TenantID: tenantID,
		ClientID: clientID,
		UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
			if prompt != nil {
				prompt(msg.Message)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("graph: create device code credential: %w", err)
	}
	return &Credential{
		mode:   config.AuthModeDelegated,
		cred:   cred,
		scopes: delegatedScopes,
	}, nil
}

// Mode reports which grant variant this credential uses.
func (c *Credential) Mode() config.AuthMode { return c.mode }

// Token acquires a bearer token for the credential's scopes. Failures are
// wrapped as *AuthError with variant-specific remediation guidance; they are
// configuration problems and are never retried here.
func (c *Credential) Token(ctx context.Context) (string, error) {
	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: c.scopes})
	if err != nil {
		return "", &AuthError{Mode: c.mode, Guidance: guidanceFor(c.mode, err), Err: err}
	}
	return tok.Token, nil
}

// AuthError is a fatal token acquisition failure.
type AuthError struct {
	Mode     config.AuthMode
	Guidance string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("graph: %s auth failed (%s): %v", e.Mode, e.Guidance, e.Err)
	}
	return fmt.Sprintf("graph: %s auth failed: %v", e.Mode, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func guidanceFor(mode config.AuthMode, err error) string {
	msg := strings.ToLower(err.Error())
	switch mode {
	case config.AuthModeApp:
		switch {
		case strings.Contains(msg, "aadsts7000215") || strings.Contains(msg, "invalid client secret"):
			return "the configured client secret is invalid"
		case strings.Contains(msg, "aadsts65001") || strings.Contains(msg, "consent") || strings.Contains(msg, "not granted for"):
			return "admin consent for the application Graph permissions has not been granted"
		}
	case config.AuthModeDelegated:
		if strings.Contains(msg, "expired") || strings.Contains(msg, "timed out") {
			return "the device code expired before sign-in completed; rerun and finish sign-in sooner"
		}
	}
	return ""
}
