package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/ashureev/talentscout/internal/sentiment"
)

func newSentimentServerCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "sentiment-server",
		Short: "Serve the built-in lexicon scorer over gRPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
			slog.SetDefault(logger)

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			srv := grpc.NewServer()
			sentiment.RegisterScorerServer(srv, sentiment.NewLexiconScorer())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				slog.Info("Stopping sentiment server")
				srv.GracefulStop()
			}()

			slog.Info("Sentiment server listening", "addr", lis.Addr().String())
			if err := srv.Serve(lis); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":50051", "gRPC listen address")
	return cmd
}
