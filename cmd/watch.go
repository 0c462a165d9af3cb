package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtrans/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Translate expression files again whenever they are written",
	Run: func(cmd *cobra.Command, args []string) {
		dirs := args
		if len(dirs) == 0 {
			dirs = []string{"."}
		}

		eng, _, err := loadEngine(cmd, false)
		if err != nil {
			logger.Fatal("Failed to initialize translation engine", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := engine.NewWatcher(eng, logger, func(_ string, results []engine.Result) {
			printResults(os.Stdout, results, true)
		}, dirs...)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		logger.Info("watching", zap.Strings("dirs", dirs))

		<-ctx.Done()
		if err := w.Stop(); err != nil {
			logger.Error("Error stopping watcher", zap.Error(err))
		}
	},
}
