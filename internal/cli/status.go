package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <asset-id>",
	Short: "Re-check an asset's moderation status now",
	Long: `Probe the platform's external signals for the given asset and print
the inferred status. The stored record is updated when the status changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	status, err := orch.CheckStatus(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	fmt.Fprintln(os.Stdout, status)
	return nil
}
