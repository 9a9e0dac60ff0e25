// Package config loads the per-flow settings from the process environment,
// optionally seeded from a .env file. Each Load* function reads only the keys
// its flow recognizes and fails before any network call if a required key is
// absent.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys recognized across the three flows.
const (
	KeyConnectionStringEmail = "CONNECTION_STRING_EMAIL"
	KeySenderAddress         = "SENDER_ADDRESS"
	KeyRecipientAddress      = "RECIPIENT_ADDRESS"

	KeyConnectionStringSMS = "CONNECTION_STRING_SMS"
	KeySMSFrom             = "SMS_FROM"
	KeySMSTo               = "SMS_TO"

	KeyTeamsClientID       = "TEAMS_CLIENT_ID"
	KeyTeamsClientSecret   = "TEAMS_CLIENT_SECRET"
	KeyTeamsTenantID       = "TEAMS_TENANT_ID"
	KeyTeamsSenderUPN      = "TEAMS_SENDER_UPN"
	KeyTeamsRecipientUPN   = "TEAMS_RECIPIENT_UPN"
	KeyTeamsDefaultMessage = "TEAMS_DEFAULT_MESSAGE"
	KeyTeamsAuthMode       = "TEAMS_AUTH_MODE"
)

const defaultTeamsMessage = "Hello from ACS Lab"

// AuthMode selects how the Teams flow acquires its Graph token.
type AuthMode string

const (
	// AuthModeApp uses the client-credentials grant (no user interaction).
	AuthModeApp AuthMode = "app"
	// AuthModeDelegated uses the device-code grant on behalf of a signed-in user.
	AuthModeDelegated AuthMode = "delegated"
)

// LoadDotenv seeds the environment from a .env file when one exists.
// A missing file is not an error; explicit environment always wins.
func LoadDotenv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on system env vars")
	}
}

// Email holds the settings for the email flow.
type Email struct {
	ConnectionString Secret
	SenderAddress    string
	RecipientAddress string
}

// LoadEmail reads the email flow settings from the environment.
func LoadEmail() (Email, error) {
	conn, err := requireEnv(KeyConnectionStringEmail)
	if err != nil {
		return Email{}, err
	}
	sender, err := requireEnv(KeySenderAddress)
	if err != nil {
		return Email{}, err
	}
	recipient, err := requireEnv(KeyRecipientAddress)
	if err != nil {
		return Email{}, err
	}
	return Email{
		ConnectionString: Secret(conn),
		SenderAddress:    sender,
		RecipientAddress: recipient,
	}, nil
}

// SMS holds the settings for the SMS flow.
type SMS struct {
	ConnectionString Secret
	From             string
	To               []string
}

// LoadSMS reads the SMS flow settings from the environment. SMS_TO is a
// comma-separated list; surrounding whitespace per entry is trimmed.
func LoadSMS() (SMS, error) {
	conn, err := requireEnv(KeyConnectionStringSMS)
	if err != nil {
		return SMS{}, err
	}
	from, err := requireEnv(KeySMSFrom)
	if err != nil {
		return SMS{}, err
	}
	rawTo, err := requireEnv(KeySMSTo)
	if err != nil {
		return SMS{}, err
	}
	to := splitList(rawTo)
	if len(to) == 0 {
		return SMS{}, fmt.Errorf("config: key %s contains no recipients", KeySMSTo)
	}
	return SMS{
		ConnectionString: Secret(conn),
		From:             from,
		To:               to,
	}, nil
}

// Teams holds the settings for the Teams flow.
type Teams struct {
	TenantID       string
	ClientID       string
	ClientSecret   Secret
	SenderUPN      string
	RecipientUPN   string
	DefaultMessage string
	AuthMode       AuthMode
}

// LoadTeams reads the Teams flow settings from the environment.
// TEAMS_CLIENT_SECRET is required only in app mode; TEAMS_AUTH_MODE defaults
// to app and accepts app or delegated, case-insensitively.
func LoadTeams() (Teams, error) {
	tenantID, err := requireEnv(KeyTeamsTenantID)
	if err != nil {
		return Teams{}, err
	}
	clientID, err := requireEnv(KeyTeamsClientID)
	if err != nil {
		return Teams{}, err
	}
	senderUPN, err := requireEnv(KeyTeamsSenderUPN)
	if err != nil {
		return Teams{}, err
	}
	recipientUPN, err := requireEnv(KeyTeamsRecipientUPN)
	if err != nil {
		return Teams{}, err
	}

	mode, err := parseAuthMode(os.Getenv(KeyTeamsAuthMode))
	if err != nil {
		return Teams{}, err
	}

	var secret string
	if mode == AuthModeApp {
		secret, err = requireEnv(KeyTeamsClientSecret)
		if err != nil {
			return Teams{}, err
		}
	} else {
		secret = os.Getenv(KeyTeamsClientSecret)
	}

	message := os.Getenv(KeyTeamsDefaultMessage)
	if strings.TrimSpace(message) == "" {
		message = defaultTeamsMessage
	}

	return Teams{
		TenantID:       tenantID,
		ClientID:       clientID,
		ClientSecret:   Secret(secret),
		SenderUPN:      senderUPN,
		RecipientUPN:   recipientUPN,
		DefaultMessage: message,
		AuthMode:       mode,
	}, nil
}

func parseAuthMode(raw string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(AuthModeApp):
		return AuthModeApp, nil
	case string(AuthModeDelegated):
		return AuthModeDelegated, nil
	default:
		return "", fmt.Errorf("config: key %s must be %q or %q, got %q",
			KeyTeamsAuthMode, AuthModeApp, AuthModeDelegated, raw)
	}
}

func requireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("config: required key %s is not set", key)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
