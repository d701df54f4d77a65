// @title         Agora Comments API
// @version       0.1.0
// @description   Threaded page comments with moderation

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agora/internal/core/version"
	"agora/internal/platform/logger"

	"github.com/spf13/cobra"
)

func main() {
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = version.Service
	}
	logger.Init(opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "agora",
		Short:         "Threaded page comments service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), migrateCommand(), countCommand(), activityCommand())

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("agora failed")
		stop()
		os.Exit(1)
	}
}
