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
	cfg, err := config.LoadEmail()
	if err != nil {
		slog.Error("invalid email configuration", "err", err)
		return 1
	}

	// ---- Clients ----
	conn, err := acs.ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		slog.Error("invalid email connection string", "err", err)
		return 1
	}
	client, err := acs.NewEmailClient(conn)
	if err != nil {
		slog.Error("failed to create email client", "err", err)
		return 1
	}

	// ---- Flow ----
	svc, err := usecase.NewEmailService(client)
	if err != nil {
		slog.Error("failed to create email service", "err", err)
		return 1
	}
	result, err := svc.Send(ctx, usecase.EmailInput{
		SenderAddress:    cfg.SenderAddress,
		RecipientAddress: cfg.RecipientAddress,
	})
	if err != nil {
		slog.Error("email send failed", "err", err)
		return 1
	}

	fmt.Printf("Message sent: %s (status: %s)\n", result.OperationID, result.Status)
	return 0
}
