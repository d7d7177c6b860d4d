package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rinwao/hakobu/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop folder and auto-submit new files",
	Long: `Watch a directory for new audio and image files and submit each one
once its writes settle. Submitted files move into a "submitted"
subdirectory. The directory defaults to watch_dir from the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var watchSettle time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "How long a file must be quiet before submission")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := fileCfg.WatchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no directory given and watch_dir is not configured")
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	cfg := watcher.DefaultConfig()
	cfg.Dir = dir
	cfg.SettleDelay = watchSettle

	w, err := watcher.New(cfg, orch, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
