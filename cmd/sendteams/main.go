package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"acs-messenger/internal/config"
	"acs-messenger/internal/integrations/graph"
	"acs-messenger/internal/usecase"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	// ---- Configuration (read only here) ----
	config.LoadDotenv()
	cfg, err := config.LoadTeams()
	if err != nil {
		slog.Error("invalid teams configuration", "err", err)
		return 1
	}

	// One optional positional argument overrides the configured default
	// message, verbatim.
	message := cfg.DefaultMessage
	if len(args) > 0 {
		message = args[0]
	}

	// ---- Credential (selected once, never switched mid-run) ----
	cred, err := newCredential(cfg)
	if err != nil {
		slog.Error("failed to create graph credential", "err", err)
		return 1
	}

	// ---- Flow ----
	client, err := graph.NewClient(cred)
	if err != nil {
		slog.Error("failed to create graph client", "err", err)
		return 1
	}
	svc, err := usecase.NewTeamsService(client)
	if err != nil {
		slog.Error("failed to create teams service", "err", err)
		return 1
	}
	ref, err := svc.Send(ctx, usecase.TeamsInput{
		SenderUPN:    cfg.SenderUPN,
		RecipientUPN: cfg.RecipientUPN,
		Message:      message,
	})
	if err != nil {
		slog.Error("teams send failed", "err", err)
		return 1
	}

	fmt.Printf("Message sent. Message id: %s (chat: %s)\n", ref.MessageID, ref.ChatID)
	return 0
}

func newCredential(cfg config.Teams) (*graph.Credential, error) {
	if cfg.AuthMode == config.AuthModeDelegated {
		// The prompt carries the verification URL and user code; the flow
		// then blocks until the user signs in or the code expires.
		return graph.NewDelegatedCredential(cfg.TenantID, cfg.ClientID, func(message string) {
			fmt.Println(message)
		})
	}
	return graph.NewAppCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret)
}
