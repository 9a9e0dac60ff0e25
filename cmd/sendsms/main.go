package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"acs-messenger/internal/config"
	"acs-messenger/internal/integrations/acs"
	"acs-messenger/internal/usecase"
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	// ---- Configuration (read only here) ----
	config.LoadDotenv()
	cfg, err := config.LoadSMS()
	if err != nil {
		slog.Error("invalid sms configuration", "err", err)
		return 1
	}

	// ---- Clients ----
	conn, err := acs.ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		slog.Error("invalid sms connection string", "err", err)
		return 1
	}
	client, err := acs.NewSMSClient(conn)
	if err != nil {
		slog.Error("failed to create sms client", "err", err)
		return 1
	}

	// ---- Flow ----
	svc, err := usecase.NewSMSService(client)
	if err != nil {
		slog.Error("failed to create sms service", "err", err)
		return 1
	}
	results, err := svc.Send(ctx, usecase.SMSInput{
		From: cfg.From,
		To:   cfg.To,
	})
	if err != nil {
		slog.Error("sms send failed", "err", err)
		return 1
	}

	for _, r := range results {
		if r.Successful {
			fmt.Printf("Message sent to %s: %s\n", r.To, r.MessageID)
		} else {
			fmt.Printf("Message to %s failed (status %d): %s\n", r.To, r.HTTPStatusCode, r.ErrorMessage)
		}
	}
	if usecase.AnyFailed(results) {
		return 1
	}
	return 0
}
