package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/discovery"
	"github.com/matchbox-ai/outreach-cli/internal/export"
	"github.com/matchbox-ai/outreach-cli/internal/intake"
	"github.com/matchbox-ai/outreach-cli/internal/model"
)

var (
	discoverBrief string
	discoverXLSX  string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find creators matching a campaign brief",
	Long:  "Extracts campaign context from a free-form brief, searches hashtags for the campaign category, filters profiles by eligibility and bio relevance, and saves the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		brief, err := os.ReadFile(discoverBrief)
		if err != nil {
			return eris.Wrapf(err, "read brief %s", discoverBrief)
		}

		campaign, err := intake.ExtractCampaign(ctx, e.AI, string(brief))
		if err != nil {
			return err
		}
		fmt.Printf("Campaign: %s (%s)\n", campaign.Title, campaign.Category)

		run, err := e.Store.CreateRun(ctx, *campaign)
		if err != nil {
			return err
		}
		if err := e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			return err
		}

		pipeline := discovery.NewPipeline(e.Search, e.AI, cfg.Discovery, discovery.Reporter{
			Status: func(msg string) { fmt.Println(msg) },
		})
		creators, err := pipeline.Discover(ctx, *campaign)
		if err != nil {
			_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return err
		}

		if err := e.Store.SaveCreators(ctx, run.ID, creators); err != nil {
			return err
		}
		if err := e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete); err != nil {
			return err
		}

		if discoverXLSX != "" {
			if err := export.WriteCreatorsXLSX(discoverXLSX, creators); err != nil {
				return err
			}
			fmt.Printf("Wrote %d creators to %s\n", len(creators), discoverXLSX)
		}

		zap.L().Info("discovery run complete",
			zap.String("run_id", run.ID),
			zap.Int("creators", len(creators)),
		)
		fmt.Printf("Run %s: %d creators found\n", run.ID, len(creators))
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverBrief, "brief", "", "path to the campaign brief text file (required)")
	discoverCmd.Flags().StringVar(&discoverXLSX, "xlsx", "", "also write creators to this XLSX file")
	discoverCmd.MarkFlagRequired("brief")
	rootCmd.AddCommand(discoverCmd)
}
