package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/entity-resolver/internal/runtimecfg"
)

var cfg *runtimecfg.Config

var rootCmd = &cobra.Command{
	Use:   "entity-resolver",
	Short: "Entity resolution engine for matching company records across two data sources",
	Long:  "Compares companies from two catalogs field-by-field, scores candidate pairs by weighted criteria, and files accepted matches to a sink.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := runtimecfg.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := runtimecfg.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
