package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past pipeline runs",
	Long: `History lists recorded runs, newest first, one row per track. Given a run
id it shows only the tracks of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of rows to show")
	historyCmd.Flags().Bool("json", false, "output rows as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []history.Entry
	if len(args) == 1 {
		entries, err = store.Run(cmd.Context(), args[0])
	} else {
		entries, err = store.Recent(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(args) == 1 && len(entries) == 0 {
		return fmt.Errorf("no run with id %s", args[0])
	}
	history.FormatTable(entries, os.Stdout)
	return nil
}
