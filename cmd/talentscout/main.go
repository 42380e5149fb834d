// TalentScout - conversational candidate intake server and terminal client.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is injected via ldflags at build time.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "talentscout",
		Short:   "Conversational intake assistant for technical candidates",
		Long:    "TalentScout collects candidate details, validates them, asks technical questions matched to the declared tech stack and hands finished interviews off for review.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				slog.Debug("No .env file found, using environment variables")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newChatCmd(), newSentimentServerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
