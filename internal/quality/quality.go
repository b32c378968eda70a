// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality extracts the text of a rendered PDF with pdftotext and
// checks it against the publication rules: minimum length, required
// sections, no assistant phrases, and no unfilled template placeholders.
package quality

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-engine/internal/container"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// DefaultMinWords is used when the configured minimum is not positive.
const DefaultMinWords = 1500

// RequiredSections must each appear as a heading in the extracted text.
var RequiredSections = []string{"Abstract", "Introduction", "Methodology", "Analysis", "Discussion", "Conclusion"}

// forbiddenPhrases are matched case-insensitively against the extracted text.
var forbiddenPhrases = []string{
	"as an ai",
	"language model",
	"i cannot",
	"i don't have access",
	"it's important to note",
	"it is worth noting",
	"chatgpt",
	"openai",
}

// Checker implements pipeline.QualityChecker.
type Checker struct {
	Binary   string
	MinWords int
	Exec     container.Executor
}

var _ pipeline.QualityChecker = (*Checker)(nil)

// New returns a checker backed by the host pdftotext binary.
func New(cfg types.QualityConfig) *Checker {
	return &Checker{Binary: cfg.PdftotextBinary, MinWords: cfg.MinWords, Exec: container.OSExecutor{}}
}

// Check extracts the PDF text and evaluates every rule. An error means the
// text could not be extracted; rule violations are reported in the issues.
func (c *Checker) Check(ctx context.Context, art types.Artifact) (pipeline.QualityReport, error) {
	text, err := c.Extract(ctx, art.PDFPath)
	if err != nil {
		return pipeline.QualityReport{}, err
	}
	return Evaluate(text, c.minWords()), nil
}

// Extract runs `pdftotext <pdf> -` and returns its output.
func (c *Checker) Extract(ctx context.Context, pdfPath string) (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "pdftotext"
	}
	if _, err := c.Exec.LookPath(bin); err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", bin, err)
	}
	var out bytes.Buffer
	if err := c.Exec.RunPiped(ctx, bin, []string{pdfPath, "-"}, nil, &out); err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}
	return out.String(), nil
}

func (c *Checker) minWords() int {
	if c.MinWords > 0 {
		return c.MinWords
	}
	return DefaultMinWords
}

// Evaluate applies the rules to extracted text.
func Evaluate(text string, minWords int) pipeline.QualityReport {
	words := len(strings.Fields(text))
	report := pipeline.QualityReport{WordCount: words}

	if words == 0 {
		report.Issues = append(report.Issues, "no extractable text")
		return report
	}
	if words < minWords {
		report.Issues = append(report.Issues, fmt.Sprintf("word count %d below minimum %d", words, minWords))
	}

	headings := lineSet(text)
	for _, s := range RequiredSections {
		if !headings[strings.ToLower(s)] {
			report.Issues = append(report.Issues, "missing section: "+s)
		}
	}

	lower := strings.ToLower(text)
	for _, p := range forbiddenPhrases {
		if strings.Contains(lower, p) {
			report.Issues = append(report.Issues, fmt.Sprintf("contains %q", p))
		}
	}
	if strings.Contains(text, "{{") {
		report.Issues = append(report.Issues, "unfilled template placeholder")
	}

	report.Passed = len(report.Issues) == 0
	return report
}

// lineSet returns the lowercased trimmed lines of text.
func lineSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.ToLower(strings.TrimSpace(line)); line != "" {
			set[line] = true
		}
	}
	return set
}
