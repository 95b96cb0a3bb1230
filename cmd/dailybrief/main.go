package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/longregen/dailybrief/internal/adapters/metrics"
	"github.com/longregen/dailybrief/internal/adapters/tracing"
	"github.com/longregen/dailybrief/internal/config"
	"github.com/longregen/dailybrief/internal/llm"
	"github.com/longregen/dailybrief/internal/logger"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "dailybrief",
		Short: "dailybrief - AI-generated daily digests and prompt optimization",
		Long: `dailybrief generates themed digests with a generative model and delivers
them by email or SMS. It can also optimize the TV guide prompt by scoring
prompt variants with the same model.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			appLog, err = logger.New(cfg.Log.Mode, cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			shutdownTracing, err = tracing.InitTracer("dailybrief", cfg.Tracing.Enabled, os.Stderr)
			if err != nil {
				appLog.Warn("Tracing disabled", "error", err)
			}

			llmClient := llm.NewClient(
				cfg.LLM.URL,
				cfg.LLM.APIKey,
				cfg.LLM.Model,
				cfg.LLM.MaxOutputTokens,
				cfg.LLM.Temperature,
				llm.WithRequestsPerMinute(cfg.LLM.RequestsPerMinute),
			)
			generator = llm.NewService(llmClient, cfg.LLM.Timeout, appLog)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			finish(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $DAILYBRIEF_CONFIG or ~/.config/dailybrief/config.yaml)")

	rootCmd.AddCommand(
		optimizeCmd(),
		eventsCmd(),
		gamesCmd(),
		tvCmd(),
		shiftCmd(),
		configCmd(),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// PersistentPostRun is skipped when RunE fails
		finish(context.Background())
		os.Exit(1)
	}
}

// finish flushes metrics and spans once per process.
func finish(ctx context.Context) {
	if finished {
		return
	}
	finished = true
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil && appLog != nil {
			appLog.Warn("Failed to write metrics textfile", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}
	if shutdownTracing != nil {
		_ = shutdownTracing(context.WithoutCancel(ctx))
	}
	if appLog != nil {
		appLog.Sync()
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dailybrief %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)
		},
	}
}
