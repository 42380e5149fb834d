package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashureev/talentscout/internal/config"
	"github.com/ashureev/talentscout/internal/engine"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/interview"
	"github.com/ashureev/talentscout/internal/questions"
	"github.com/ashureev/talentscout/internal/sentiment"
	"github.com/ashureev/talentscout/internal/store"
	"github.com/ashureev/talentscout/internal/terminal"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Run an interview in this terminal",
		Long:  "Runs one in-memory interview in the terminal. Type /restart after the interview ends to start over, Ctrl-D to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))
			slog.SetDefault(logger)

			eng := engine.New(
				intake.DefaultSchema(),
				questions.Default(),
				sentiment.NewAnnotator(nil, logger),
				engine.WithExitKeyword(cfg.Session.ExitKeyword),
				engine.WithLogger(logger),
			)
			svc := interview.NewService(eng, store.NewMemory(), nil, nil, logger)

			_, err = terminal.NewClient(svc, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
