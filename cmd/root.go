package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/promptshot/internal/config"
	"github.com/dmorgan81/promptshot/internal/inject"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "promptshot",
	Short: "Generate images from text prompts",
	Long: `promptshot sends a text prompt to a Stable Diffusion XL inference endpoint and
shows the result. It retries while the model warms up and offers a web page,
a terminal UI, a one-shot command and an AWS Lambda entry point.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type loggerFunc func(w io.Writer, level slog.Level) *slog.Logger

// setup loads the configuration, applies overrides and builds the injector.
// The returned context is canceled on SIGINT or SIGTERM.
func setup(cmd *cobra.Command, w io.Writer, newLogger loggerFunc, override func(*config.Config)) (context.Context, context.CancelFunc, *do.Injector, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(w, log.ParseLevel(cfg.LogLevel))
	ctx := log.NewContext(cmd.Context(), logger)
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	logger.Debug("configuration loaded",
		"generator", cfg.Generator,
		"attempts", cfg.Attempts,
		"retry_delay", cfg.RetryDelay,
		"bucket", cfg.Bucket,
		"output_dir", cfg.OutputDir,
	)
	return ctx, cancel, inject.Setup(ctx, cfg), nil
}
