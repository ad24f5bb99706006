package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/digest/internal/api"
	"github.com/MikeSquared-Agency/digest/internal/config"
	"github.com/MikeSquared-Agency/digest/internal/hermes"
	"github.com/MikeSquared-Agency/digest/internal/openai"
	"github.com/MikeSquared-Agency/digest/internal/pipeline"
	"github.com/MikeSquared-Agency/digest/internal/progress"
	"github.com/MikeSquared-Agency/digest/internal/retry"
	"github.com/MikeSquared-Agency/digest/internal/slack"
	"github.com/MikeSquared-Agency/digest/internal/store"
	"github.com/MikeSquared-Agency/digest/internal/summarizer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "digest <connection-string> <api-key> <snapshot-id>",
		Short:         "Summarize multi-entry tickets of a work-log snapshot",
		Args:          exactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setupLogging(cfg.LogLevel)

			snapshotID, err := parseSnapshotID(args[2])
			if err != nil {
				cmd.PrintErrln("Error:", err)
				slog.Error("invalid arguments", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := run(ctx, cfg, args[0], args[1], snapshotID)
			if err != nil {
				slog.Error("digest failed", "error", err)
				return err
			}
			printSummary(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

// exactArgs is cobra.ExactArgs that also prints the error and usage to stderr.
func exactArgs(n int) cobra.PositionalArgs {
	check := cobra.ExactArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			cmd.PrintErr(cmd.UsageString())
			return err
		}
		return nil
	}
}

func parseSnapshotID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snapshot id %q is not an integer", s)
	}
	return id, nil
}

func run(ctx context.Context, cfg config.Config, connString, apiKey string, snapshotID int64) (*pipeline.Report, error) {
	logger := slog.Default()
	runID := uuid.New()
	slog.Info("digest starting", "run_id", runID.String(), "snapshot_id", snapshotID, "model", cfg.Model)

	// Database
	db, err := store.New(ctx, connString)
	if err != nil {
		return nil, &pipeline.FatalError{Stage: "connect database", Err: err}
	}
	defer db.Close()
	slog.Info("database connected")

	// OpenAI client
	llm := openai.NewClient(apiKey, cfg.Model,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithTimeout(cfg.RequestTimeout),
		openai.WithRequestsPerMinute(cfg.RequestsPerMinute),
	)
	policy := retry.Default()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	sum := summarizer.New(llm, policy, logger)

	tracker := progress.NewTracker(runID.String(), snapshotID)
	opts := []pipeline.Option{
		pipeline.WithRunID(runID),
		pipeline.WithTracker(tracker),
	}

	// Status server (optional)
	if cfg.StatusPort > 0 {
		srv := api.NewServer(cfg.StatusPort, tracker.Current)
		go func() {
			if err := srv.Start(); err != nil {
				slog.Error("status server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// NATS/Hermes (optional)
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			slog.Warn("failed to connect to NATS, running without events", "error", err)
		} else {
			defer hermesClient.Close()
			opts = append(opts, pipeline.WithNotifiers(pipeline.EventNotifier(hermesClient)))
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	// Slack poster (optional)
	if cfg.SlackEnabled() {
		poster := slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger)
		opts = append(opts, pipeline.WithNotifiers(pipeline.PostNotifier(poster)))
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	batch := summarizer.NewBatch(sum, tracker, logger)
	p := pipeline.New(db, db, batch, logger, opts...)
	return p.Run(ctx, snapshotID)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
