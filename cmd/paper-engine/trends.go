package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/trend"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Rank trending research topics",
	Long: `Trends collects candidate topics from SSRN, Google Trends, and the
configured static list, merges near-duplicates, and ranks them by score.
When every source fails a built-in fallback list is used. A YAML report is
written to the report directory.`,
	RunE: runTrends,
}

func init() {
	trendsCmd.Flags().Bool("json", false, "output ranked topics as JSON")
	trendsCmd.Flags().Int("top", 0, "number of topics to show (0 uses trend.top)")
	trendsCmd.Flags().String("report-dir", "", "directory for the trends report (default dirs.metadata)")

	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	top, _ := cmd.Flags().GetInt("top")
	if top <= 0 {
		top = cfg.Trend.Top
	}
	reportDir, _ := cmd.Flags().GetString("report-dir")
	if reportDir == "" {
		reportDir = cfg.Dirs.Metadata
	}

	ranking := trend.Rank(cmd.Context(), trend.NewSources(cfg.Trend, nil), cfg.Trend, os.Stderr)

	path, err := trend.SaveReport(reportDir, ranking, time.Now(), top)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	topics := ranking.Top(top)
	if asJSON {
		return trend.FormatJSON(topics, os.Stdout)
	}
	trend.FormatTable(topics, os.Stdout)
	if len(topics) > 0 {
		fmt.Fprintf(os.Stdout, "\nTo write a paper on the top topic:\n  paper-engine run %q\n", topics[0].Topic)
	}
	return nil
}
