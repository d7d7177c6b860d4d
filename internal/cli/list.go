package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rinwao/hakobu/internal/platform"
)

var (
	listStatus string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked assets",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status: pending, accepted or declined")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum records to show (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	var status platform.Status
	if listStatus != "" {
		status = platform.Status(listStatus)
		switch status {
		case platform.StatusPending, platform.StatusAccepted, platform.StatusDeclined:
		default:
			return fmt.Errorf("invalid status %q", listStatus)
		}
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer orch.Close()

	assets, err := orch.ListAssets(cmd.Context(), status, listLimit)
	if err != nil {
		return err
	}

	if len(assets) == 0 {
		fmt.Println("No assets tracked")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTATUS\tNAME\tSUBMITTED\tLAST CHECKED")
	for _, a := range assets {
		lastChecked := "-"
		if !a.LastCheckedAt.IsZero() {
			lastChecked = a.LastCheckedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Kind, a.Status, a.DisplayName,
			a.SubmittedAt.Format("2006-01-02 15:04:05"), lastChecked)
	}
	return w.Flush()
}
