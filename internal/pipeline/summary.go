// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/paper-engine/pkg/types"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// FormatSummary writes the terminal run summary to w: duration, per-track
// state and artifacts, warnings, and the final verdict.
func FormatSummary(w io.Writer, r types.RunResult) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, headerStyle.Render("RUN SUMMARY"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run:      %s\n", r.RunID)
	fmt.Fprintf(w, "Topic:    %s\n", r.Topic)
	fmt.Fprintf(w, "Duration: %s\n", r.Duration().Round(time.Second))

	for _, tr := range r.Tracks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render("["+string(tr.Track)+"]"), stateLabel(tr))
		if tr.Topic != "" {
			fmt.Fprintf(w, "  topic:    %s\n", tr.Topic)
		}
		for _, s := range types.Stages {
			fmt.Fprintf(w, "  %-17s %s\n", s, statusLabel(tr.Stages[s]))
		}
		if tr.Artifact != nil {
			fmt.Fprintf(w, "  pdf:      %s\n", tr.Artifact.Filename)
		}
		if tr.Metadata != nil && tr.Metadata.RecordPath != "" {
			fmt.Fprintf(w, "  metadata: %s\n", tr.Metadata.RecordPath)
		}
		if tr.Uploaded {
			fmt.Fprintf(w, "  location: %s\n", tr.Location)
		}
		if tr.FatalError != "" {
			fmt.Fprintf(w, "  error:    %s\n", failureStyle.Render(tr.FatalError))
		}
		for _, issue := range tr.QualityIssues {
			fmt.Fprintf(w, "  quality:  %s\n", degradedStyle.Render(issue))
		}
		for _, warn := range tr.Warnings {
			fmt.Fprintf(w, "  warning:  %s\n", mutedStyle.Render(warn))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	if r.Success {
		fmt.Fprintln(w, successStyle.Render("RESULT: SUCCESS"))
	} else {
		fmt.Fprintln(w, failureStyle.Render("RESULT: FAILED"))
	}
	fmt.Fprintln(w, rule)
}

func stateLabel(tr *types.TrackResult) string {
	switch {
	case tr.State == types.StateAborted:
		return failureStyle.Render(string(tr.State))
	case tr.Degraded:
		return degradedStyle.Render(string(tr.State) + " (degraded)")
	case tr.State == types.StateDone:
		return successStyle.Render(string(tr.State))
	default:
		return string(tr.State)
	}
}

func statusLabel(s types.StageStatus) string {
	switch s {
	case types.StatusSucceeded:
		return successStyle.Render(string(s))
	case types.StatusFailed:
		return failureStyle.Render(string(s))
	case types.StatusDegraded:
		return degradedStyle.Render(string(s))
	default:
		return mutedStyle.Render(string(s))
	}
}
