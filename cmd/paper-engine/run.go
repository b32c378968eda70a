package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/generate"
	"github.com/pdiddy/paper-engine/internal/history"
	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/metadata"
	"github.com/pdiddy/paper-engine/internal/notify"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/internal/quality"
	"github.com/pdiddy/paper-engine/internal/render"
	"github.com/pdiddy/paper-engine/internal/runlog"
	"github.com/pdiddy/paper-engine/internal/trend"
	"github.com/pdiddy/paper-engine/internal/upload"
	"github.com/pdiddy/paper-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [topic words...]",
	Short: "Produce and distribute a paper",
	Long: `Run generates a paper on the given topic, renders it to PDF, checks its
quality, writes metadata, uploads it, and sends notifications. With no topic
the top-ranked trending topic is used. With --dual a second paper on a
narrower sub-topic is produced alongside the first.

Exits non-zero when any requested paper fails to complete.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("dual", false, "also produce a paper on a derived sub-topic")
	runCmd.Flags().Bool("no-upload", false, "skip the upload stage")
	runCmd.Flags().Bool("no-notify", false, "skip the notify stage")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dual, _ := cmd.Flags().GetBool("dual")
	noUpload, _ := cmd.Flags().GetBool("no-upload")
	noNotify, _ := cmd.Flags().GetBool("no-notify")

	logger := runlog.New(cfg.Dirs.Logs, os.Stderr)

	topic := types.Topic(strings.TrimSpace(strings.Join(args, " ")))
	if topic == "" {
		ranking := trend.Rank(ctx, trend.NewSources(cfg.Trend, nil), cfg.Trend, os.Stderr)
		top := ranking.Top(1)
		if len(top) == 0 {
			return fmt.Errorf("no topic given and no trending topic available")
		}
		topic = top[0].Topic
		logger.Info("selected trending topic %q (score %.2f)", topic, top[0].Score)
	}

	renderer, err := render.New(ctx, cfg.Render, cfg.Dirs.Output, os.Stderr)
	if err != nil {
		return fmt.Errorf("configuring renderer: %w", err)
	}

	deps := pipeline.Deps{
		Generator: generate.New(llm.New(cfg.Generation), cfg.Author, cfg.Dirs.Output, os.Stderr),
		Renderer:  renderer,
		Quality:   quality.New(cfg.Quality),
		Metadata:  metadata.New(cfg.Dirs.Metadata, os.Stderr),
		Log:       logger,
	}
	if !noUpload && cfg.Upload.Remote != "" {
		deps.Uploader = upload.New(cfg.Upload, os.Stderr)
	}
	if !noNotify {
		n, err := notify.New(cfg.Notify, nil, os.Stderr)
		if err != nil {
			return fmt.Errorf("configuring notifications: %w", err)
		}
		if len(n.Channels) > 0 {
			deps.Notifier = n
		}
	}

	result := pipeline.New(deps, cfg.Pipeline).Run(ctx, topic, dual)
	pipeline.FormatSummary(os.Stdout, result)

	if store, err := history.Open(cfg.History.DBPath); err != nil {
		logger.Warn("history unavailable: %v", err)
	} else {
		if err := store.Record(ctx, result); err != nil {
			logger.Warn("recording run history: %v", err)
		}
		store.Close()
	}

	if !result.Success {
		return fmt.Errorf("run %s failed", result.RunID)
	}
	return nil
}
