package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/entity-resolver/pkg/notion"
)

var notionImportCmd = &cobra.Command{
	Use:   "notion-import <csv-path>",
	Short: "Seed a Notion database from a CSV file, one page per unique URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
			return eris.New("notion-import: notion.token and notion.database_id are required")
		}

		client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
		created, err := notion.ImportCSV(cmd.Context(), client, cfg.Notion.DatabaseID, args[0])
		if err != nil {
			return eris.Wrap(err, "notion-import: import csv")
		}

		zap.L().Info("notion-import: complete", zap.Int("pages_created", created))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notionImportCmd)
}
