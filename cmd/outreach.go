package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/internal/outreach"
)

var (
	outreachRunID string
	outreachMax   int
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Send outreach for an already-discovered run and monitor replies",
	Long:  "Loads the creators saved by a previous discover run, emails the top matches, then monitors the mailbox for replies until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		run, err := e.Store.GetRun(ctx, outreachRunID)
		if err != nil {
			return err
		}
		creators, err := e.Store.ListCreators(ctx, run.ID)
		if err != nil {
			return err
		}
		if len(creators) == 0 {
			return eris.Errorf("run %s has no saved creators; run discover first", run.ID)
		}

		if err := e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			return err
		}

		tracker := outreach.NewTracker(e.Mail, e.Templates, pollInterval())
		tracker.SetRecorder(e.Store)

		sent := sendOutreach(ctx, e, tracker, run.ID, run.Campaign, creators, outreachMax)
		if sent == 0 {
			_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return eris.New("all outreach sends failed")
		}

		tracker.Start(ctx)
		defer tracker.Stop()

		coordinator := outreach.NewCoordinator(
			tracker,
			outreach.NewClassifier(e.AI),
			e.Escalator,
			e.Store,
			func(msg string) { fmt.Println(msg) },
		)

		fmt.Printf("Monitoring %d outreach emails. Press Ctrl-C to stop.\n", sent)
		coordinator.Run(ctx)

		return e.Store.UpdateRunStatus(cmd.Context(), run.ID, model.RunStatusComplete)
	},
}

func init() {
	outreachCmd.Flags().StringVar(&outreachRunID, "run", "", "run ID from a previous discover (required)")
	outreachCmd.Flags().IntVar(&outreachMax, "max-outreach", 4, "maximum number of creators to email")
	outreachCmd.MarkFlagRequired("run")
	rootCmd.AddCommand(outreachCmd)
}
