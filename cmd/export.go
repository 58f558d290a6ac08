package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/matchbox-ai/outreach-cli/internal/export"
	"github.com/matchbox-ai/outreach-cli/pkg/notion"
)

var (
	exportRunID    string
	exportXLSX     string
	exportLogXLSX  string
	exportToNotion bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a run's creators and outreach log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		creators, err := e.Store.ListCreators(ctx, exportRunID)
		if err != nil {
			return err
		}
		if len(creators) == 0 {
			return eris.Errorf("run %s has no creators", exportRunID)
		}

		if exportXLSX != "" {
			if err := export.WriteCreatorsXLSX(exportXLSX, creators); err != nil {
				return err
			}
			fmt.Printf("Wrote %d creators to %s\n", len(creators), exportXLSX)
		}

		if exportLogXLSX != "" {
			recs, err := e.Store.ListOutreach(ctx, exportRunID)
			if err != nil {
				return err
			}
			if err := export.WriteOutreachXLSX(exportLogXLSX, recs); err != nil {
				return err
			}
			fmt.Printf("Wrote %d outreach records to %s\n", len(recs), exportLogXLSX)
		}

		if exportToNotion {
			if cfg.Notion.Token == "" {
				return eris.New("notion.token is required for notion export")
			}
			exporter := export.NewNotionExporter(notion.NewClient(cfg.Notion.Token), cfg.Notion.CreatorDB)
			written, err := exporter.ExportCreators(ctx, creators)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d creators to Notion\n", written)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run ID to export (required)")
	exportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "write creators to this XLSX file")
	exportCmd.Flags().StringVar(&exportLogXLSX, "log-xlsx", "", "write the outreach log to this XLSX file")
	exportCmd.Flags().BoolVar(&exportToNotion, "notion", false, "export creators to the configured Notion database")
	exportCmd.MarkFlagRequired("run")
	rootCmd.AddCommand(exportCmd)
}
