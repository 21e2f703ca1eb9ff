package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/entity-resolver/internal/driver"
	"github.com/sells-group/entity-resolver/internal/matchengine"
	"github.com/sells-group/entity-resolver/internal/runtimecfg"
	"github.com/sells-group/entity-resolver/internal/sink"
	"github.com/sells-group/entity-resolver/internal/source"
	"github.com/sells-group/entity-resolver/pkg/notion"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Compare two company catalogs and write accepted matches to a sink",
	Long: `Loads companies from two configured sources, compares every pair with the
weighted criteria set, and writes matches scoring at or above the accept
threshold to the configured sink.

Examples:
  entity-resolver match --source-a ./alpha.csv --source-b ./beta.csv --sink-path ./matches.csv
  entity-resolver match --threshold 0.8 --strict=false`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("match"); err != nil {
			return err
		}
		applyMatchFlagOverrides(cmd)

		srcA, err := buildSource(cfg.SourceA)
		if err != nil {
			return eris.Wrap(err, "match: source a")
		}
		srcB, err := buildSource(cfg.SourceB)
		if err != nil {
			return eris.Wrap(err, "match: source b")
		}

		matcher := matchengine.NewCompanyMatcher(nil, cfg.Match.Strict)
		sourcesMatcher := matchengine.NewSourcesMatcher(srcA, srcB, matcher, cfg.Match.WorkerAmount)
		defer sourcesMatcher.Stop()

		sk, closeSink, err := buildSink(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "match: sink")
		}
		defer closeSink()

		drv := driver.New(sourcesMatcher, sk, driver.Config{
			Threshold:       cfg.Match.Threshold,
			ReviewThreshold: cfg.Match.ReviewThreshold,
			TimeoutSeconds:  cfg.Match.TimeoutSeconds,
			FlushEvery:      cfg.Match.FlushEvery,
		})

		if cfg.Notion.Enabled {
			if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
				return eris.New("match: notion.enabled requires notion.token and notion.database_id")
			}
			client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
			drv.WithReviewSink(sink.NewNotionSink(client, cfg.Notion.DatabaseID))
		}

		stats, err := drv.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "match: run")
		}

		zap.L().Info("match run complete",
			zap.String("run_id", stats.RunID),
			zap.Int("evaluated", stats.Evaluated),
			zap.Int("accepted", stats.Accepted),
			zap.Int("below_threshold", stats.BelowThreshold),
			zap.Int("review_queued", stats.ReviewQueued),
			zap.Int("timed_out", stats.TimedOut),
			zap.Int("failed", stats.Failed),
		)
		return nil
	},
}

func init() {
	f := matchCmd.Flags()
	f.String("source-a", "", "path to the first company catalog")
	f.String("source-b", "", "path to the second company catalog")
	f.Float64("threshold", 0, "minimum score to accept a match (0.0-1.0)")
	f.Bool("strict", true, "count undetermined criteria against the denominator")
	f.Int("workers", 0, "number of concurrent comparison workers")
	f.String("sink-path", "", "output path for a csv sink")
	rootCmd.AddCommand(matchCmd)
}

func applyMatchFlagOverrides(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("source-a"); v != "" {
		cfg.SourceA.Path = v
	}
	if v, _ := cmd.Flags().GetString("source-b"); v != "" {
		cfg.SourceB.Path = v
	}
	if v, _ := cmd.Flags().GetFloat64("threshold"); v != 0 {
		cfg.Match.Threshold = v
	}
	if cmd.Flags().Changed("strict") {
		v, _ := cmd.Flags().GetBool("strict")
		cfg.Match.Strict = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v != 0 {
		cfg.Match.WorkerAmount = v
	}
	if v, _ := cmd.Flags().GetString("sink-path"); v != "" {
		cfg.Sink.Path = v
	}
}

func buildSource(sc runtimecfg.SourceConfig) (matchengine.Source, error) {
	switch sc.Kind {
	case "csv":
		return &source.CSVSource{Path: sc.Path, HasHeader: sc.HasHeader, Shorten: true}, nil
	case "sqlite":
		return source.NewSQLiteSource(sc.Path, sc.Table), nil
	case "ftp":
		return source.NewFTPCSVSource(sc.Path), nil
	case "xlsx":
		return &source.XLSXSource{Path: sc.Path, HasHeader: sc.HasHeader}, nil
	case "shapefile":
		return source.NewShapefileSource(sc.Path, sc.Table), nil
	case "notion":
		if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
			return nil, eris.New("match: notion source requires notion.token and notion.database_id")
		}
		client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
		return source.NewNotionSource(client, cfg.Notion.DatabaseID, sc.Table), nil
	default:
		return nil, eris.Errorf("match: unknown source kind %q", sc.Kind)
	}
}

func buildSink(ctx context.Context, c *runtimecfg.Config) (matchengine.Sink, func(), error) {
	switch c.Sink.Kind {
	case "csv":
		s, err := sink.NewCSVSink(c.Sink.Path)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		return buildPostgresSink(ctx, c)
	default:
		return nil, func() {}, eris.Errorf("match: unknown sink kind %q", c.Sink.Kind)
	}
}
