package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rinwao/hakobu/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the periodic status refresher",
	Long: `Start the HTTP and WebSocket API and the background refresh loop.

The refresh loop re-checks every pending asset at the configured interval
and publishes status transitions to WebSocket subscribers on /ws/events.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.NewServer(server.Config{
		ListenAddr: appCfg.ListenAddr,
		AppConfig:  appCfg,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.Orchestrator().StartScheduler(ctx)

	httpSrv := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	fmt.Printf("hakobu API listening on %s\n", appCfg.ListenAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
