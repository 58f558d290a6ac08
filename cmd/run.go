package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/discovery"
	"github.com/matchbox-ai/outreach-cli/internal/intake"
	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/internal/outreach"
)

var (
	runBrief       string
	runMaxOutreach int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full campaign: discovery, outreach, and reply handling",
	Long:  "Discovers creators for the brief, emails the top matches, then monitors the mailbox for replies until interrupted. Replies are classified and either surfaced, closed out, or escalated to a negotiation call.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		brief, err := os.ReadFile(runBrief)
		if err != nil {
			return eris.Wrapf(err, "read brief %s", runBrief)
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
		if len(creators) == 0 {
			_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete)
			fmt.Println("No eligible creators found; nothing to send.")
			return nil
		}

		tracker := outreach.NewTracker(e.Mail, e.Templates, pollInterval())
		tracker.SetRecorder(e.Store)

		sent := sendOutreach(ctx, e, tracker, run.ID, *campaign, creators, runMaxOutreach)
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

// sendOutreach composes and sends one email per creator, up to the
// max-outreach limit. Individual compose or send failures skip that creator.
func sendOutreach(ctx context.Context, e *env, tracker *outreach.Tracker, runID string, campaign model.CampaignContext, creators []model.CreatorRecord, limit int) int {
	if limit <= 0 || limit > len(creators) {
		limit = len(creators)
	}

	sent := 0
	for _, creator := range creators[:limit] {
		subject, body, err := outreach.ComposeEmail(ctx, e.AI, campaign, creator)
		if err != nil {
			zap.L().Warn("email compose failed",
				zap.String("creator", creator.Username),
				zap.Error(err),
			)
			fmt.Printf("Could not draft an email for %s; skipping.\n", creator.Username)
			continue
		}

		att, err := tracker.Send(ctx, outreach.SendRequest{
			Recipient: creator.PublicEmail,
			Subject:   subject,
			Body:      body,
			Timeout:   outreachTimeout(),
			Creator:   creator,
			Campaign:  campaign,
		})
		if err != nil {
			zap.L().Warn("outreach send failed",
				zap.String("creator", creator.Username),
				zap.Error(err),
			)
			fmt.Printf("Could not send to %s; skipping.\n", creator.PublicEmail)
			continue
		}

		if err := e.Store.LogOutreach(ctx, model.OutreachRecord{
			AttemptID: att.ID,
			RunID:     runID,
			Recipient: att.Recipient,
			Subject:   att.Subject,
			Status:    model.OutreachStatusSent,
		}); err != nil {
			zap.L().Warn("failed to persist outreach record", zap.Error(err))
		}

		fmt.Printf("Sent outreach to %s (%s)\n", creator.Username, creator.PublicEmail)
		sent++
	}
	return sent
}

func init() {
	runCmd.Flags().StringVar(&runBrief, "brief", "", "path to the campaign brief text file (required)")
	runCmd.Flags().IntVar(&runMaxOutreach, "max-outreach", 4, "maximum number of creators to email")
	runCmd.MarkFlagRequired("brief")
	rootCmd.AddCommand(runCmd)
}
