// Command hackwreck runs the HackWreck API server and its command-line and
// terminal clients.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/hackwreck/internal/config"
	"github.com/okian/hackwreck/pkg/client"
	"github.com/okian/hackwreck/pkg/logger"
)

var (
	cfg        *config.Config
	outputFlag string
	apiURLFlag string
	timeoutArg time.Duration
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "hackwreck",
	Short: "Catalogue hackathon projects and learn what wins",
	Long: `HackWreck archives hackathon repositories with an AI-assigned winning
score and compares new ideas against past winners.

Run "hackwreck serve" for the API, "hackwreck tui" for the interactive shell,
or any client command against a running server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		if apiURLFlag != "" {
			loaded.APIBaseURL = apiURLFlag
		}
		if timeoutArg > 0 {
			loaded.RequestTimeoutMS = int(timeoutArg / time.Millisecond)
		}
		cfg = loaded

		if err := logger.InitWithOptions(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
			return err
		}
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		return checkOutput(outputFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api", "", "API base URL (default from HACKWRECK_API_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeoutArg, "timeout", 0, "Client request timeout (0 waits indefinitely)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(wreckMeCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newClient builds an API client from the loaded configuration.
func newClient() *client.Client {
	return client.New(client.Config{
		BaseURL:    cfg.APIBaseURL,
		SearchPath: cfg.SearchPath,
		StatsPath:  cfg.StatsPath,
		Timeout:    cfg.RequestTimeout(),
	}, client.WithLogger(logger.Get().Named("client")))
}
