// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Report is the persisted form of a ranking.
type Report struct {
	Date           string              `yaml:"date" json:"date"`
	UsedFallback   bool                `yaml:"used_fallback" json:"used_fallback"`
	RankedTopics   []types.ScoredTopic `yaml:"ranked_topics" json:"ranked_topics"`
	TopSuggestions []types.Topic       `yaml:"top_suggestions" json:"top_suggestions"`
	SourceErrors   []string            `yaml:"source_errors,omitempty" json:"source_errors,omitempty"`
}

// NewReport builds a report from the ranking without consuming it.
func NewReport(r *Ranking, now time.Time, top int) Report {
	ranked := r.Snapshot()
	rep := Report{
		Date:         now.Format("2006-01-02 15:04:05"),
		UsedFallback: r.UsedFallback,
		RankedTopics: ranked,
	}
	for i, t := range ranked {
		if top > 0 && i >= top {
			break
		}
		rep.TopSuggestions = append(rep.TopSuggestions, t.Topic)
	}
	for _, e := range r.SourceErrors {
		rep.SourceErrors = append(rep.SourceErrors, e.Error())
	}
	return rep
}

// SaveReport writes trends_report_<YYYYMMDD>.yaml into dir and returns its path.
func SaveReport(dir string, r *Ranking, now time.Time, top int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	data, err := yaml.Marshal(NewReport(r, now, top))
	if err != nil {
		return "", fmt.Errorf("marshaling trends report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("trends_report_%s.yaml", now.Format("20060102")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing trends report: %w", err)
	}
	return path, nil
}

// FormatTable writes ranked topics as a human-readable table to w.
func FormatTable(topics []types.ScoredTopic, w io.Writer) {
	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-6s  %s\n", "Rank", "Topic", "Score", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for i, t := range topics {
		fmt.Fprintf(w, "%-4d  %-60s  %-6.2f  %s\n",
			i+1, truncate(string(t.Topic), 60), t.Score, strings.Join(t.Sources, ","))
	}

	fmt.Fprintf(w, "\n%d topics\n", len(topics))
}

// FormatJSON writes ranked topics as indented JSON to w.
func FormatJSON(topics []types.ScoredTopic, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(topics)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
