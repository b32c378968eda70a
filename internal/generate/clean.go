// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"html"
	"regexp"
	"strings"
)

// artifactPatterns match assistant boilerplate that must not reach a paper.
var artifactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as an ai[^.]*\.`),
	regexp.MustCompile(`(?i)i cannot[^.]*\.`),
	regexp.MustCompile(`(?i)i don't have[^.]*\.`),
	regexp.MustCompile(`(?i)as a language model[^.]*\.`),
	regexp.MustCompile(`(?i)it's important to note that\s*`),
	regexp.MustCompile(`(?i)it is worth noting that\s*`),
	regexp.MustCompile(`(?i)this (?:paper|study|research) was generated[^.]*\.?`),
}

var (
	excessBlankLines = regexp.MustCompile(`\n\s*\n(\s*\n)+`)
	sectionHeading   = regexp.MustCompile(`(?m)^\s*#{1,6}\s+.*$`)
)

// CleanArtifacts strips assistant boilerplate and collapses runs of blank
// lines to a single paragraph break.
func CleanArtifacts(text string) string {
	for _, re := range artifactPatterns {
		text = re.ReplaceAllString(text, "")
	}
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TruncateWords keeps at most max whitespace-separated words, ending the
// result with a period when it was cut.
func TruncateWords(text string, max int) string {
	words := strings.Fields(text)
	if max <= 0 || len(words) <= max {
		return strings.Join(words, " ")
	}
	out := strings.Join(words[:max], " ")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

// cleanLine trims whitespace and wrapping quotes from a one-line reply.
func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, "\"'“”*")
	return strings.TrimSpace(s)
}

// sectionHTML renders one section as an <h3> heading followed by one <p>
// per paragraph. Markdown headings echoed by the model are dropped.
func sectionHTML(name, text string) string {
	var b strings.Builder
	b.WriteString("<h3>" + html.EscapeString(name) + "</h3>\n")
	text = sectionHeading.ReplaceAllString(text, "")
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		b.WriteString("<p>" + html.EscapeString(para) + "</p>\n")
	}
	return b.String()
}
