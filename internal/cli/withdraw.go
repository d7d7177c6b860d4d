package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rinwao/hakobu/internal/platform"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <asset-id>",
	Short: "Remove an asset from the platform",
	Long: `Attempt to remove the asset from the platform and delete the local
record. An asset the platform no longer knows is treated as already gone.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithdraw,
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	if err := orch.WithdrawAsset(cmd.Context(), args[0]); err != nil {
		var werr *platform.WithdrawalError
		if errors.As(err, &werr) && werr.Kind == platform.FailureNotFound {
			fmt.Printf("Asset %s was already gone; local record removed\n", args[0])
			return nil
		}
		return fmt.Errorf("withdrawal failed: %w", err)
	}

	fmt.Printf("Withdrew asset %s\n", args[0])
	return nil
}
