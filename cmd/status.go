package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/internal/store"
)

var (
	statusFilter string
	statusLimit  int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List campaign runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		runs, err := e.Store.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(statusFilter),
			Limit:  statusLimit,
		})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs found.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %-9s  %-30s  %s\n",
				r.ID, r.Status, r.Campaign.Title, r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFilter, "status", "", "filter by status (queued, running, complete, failed)")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(statusCmd)
}
