// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate produces document records by prompting a chat model
// for each part of a paper, and persists every record as YAML.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// MaxAbstractWords caps the abstract length.
const MaxAbstractWords = 200

// Completer returns a model reply for one prompt. llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Section is one body section and the purpose given to the model.
type Section struct {
	Name    string
	Purpose string
}

// Sections are generated in this order.
var Sections = []Section{
	{"Introduction", "Introduce the research question, motivation, and contribution"},
	{"Methodology", "Describe the research approach, data sources, and analytical framework"},
	{"Analysis", "Present the main findings and empirical results"},
	{"Discussion", "Interpret the results and discuss implications"},
	{"Conclusion", "Summarize findings and suggest future research directions"},
}

// Generator implements pipeline.Generator on top of a chat model.
type Generator struct {
	LLM       Completer
	Author    types.AuthorConfig
	OutputDir string

	// Progress receives one line per generation step. Nil discards.
	Progress io.Writer

	now func() time.Time
}

var _ pipeline.Generator = (*Generator)(nil)

// New returns a generator writing records under outputDir.
func New(c Completer, author types.AuthorConfig, outputDir string, progress io.Writer) *Generator {
	return &Generator{LLM: c, Author: author, OutputDir: outputDir, Progress: progress}
}

// SubTopic asks the model for a narrower sub-niche of main.
func (g *Generator) SubTopic(ctx context.Context, main types.Topic) (types.Topic, error) {
	g.progress("identifying sub-niche of %q", main)
	sub, err := g.ask(ctx, subTopicTmpl, promptData{Topic: string(main)}, 0.7, 0)
	if err != nil {
		return "", fmt.Errorf("identifying sub-niche: %w", err)
	}
	sub = cleanLine(sub)
	if sub == "" {
		return "", fmt.Errorf("identifying sub-niche: empty reply")
	}
	return types.Topic(sub), nil
}

// Generate builds a full document record for req.Topic and writes it to
// OutputDir/paper_data_<track>_<date>.yaml.
func (g *Generator) Generate(ctx context.Context, req pipeline.GenerateRequest) (types.DocumentRecord, error) {
	now := g.clock()
	topic := string(req.Topic)
	if strings.TrimSpace(topic) == "" {
		return types.DocumentRecord{}, fmt.Errorf("empty topic")
	}
	track := req.Track
	if track == "" {
		track = types.TrackMain
	}

	g.progress("[%s] generating title", track)
	title, err := g.ask(ctx, titleTmpl, promptData{Topic: topic}, 0.8, 0)
	if err != nil {
		return types.DocumentRecord{}, fmt.Errorf("generating title: %w", err)
	}
	title = cleanLine(title)

	g.progress("[%s] generating subtitle", track)
	subtitle, err := g.ask(ctx, subtitleTmpl, promptData{Topic: topic, Title: title}, 0.7, 0)
	if err != nil {
		return types.DocumentRecord{}, fmt.Errorf("generating subtitle: %w", err)
	}
	subtitle = cleanLine(subtitle)

	g.progress("[%s] generating keywords", track)
	keywords, err := g.ask(ctx, keywordsTmpl, promptData{Topic: topic, Title: title}, 0.6, 0)
	if err != nil {
		return types.DocumentRecord{}, fmt.Errorf("generating keywords: %w", err)
	}

	g.progress("[%s] generating JEL codes", track)
	jel, err := g.ask(ctx, jelTmpl, promptData{Topic: topic, Title: title}, 0.5, 0)
	if err != nil {
		return types.DocumentRecord{}, fmt.Errorf("generating JEL codes: %w", err)
	}

	g.progress("[%s] generating abstract", track)
	abstract, err := g.ask(ctx, abstractTmpl, promptData{
		Topic: topic, Title: title, Subtitle: subtitle, MaxAbstract: MaxAbstractWords,
	}, 0.7, 300)
	if err != nil {
		return types.DocumentRecord{}, fmt.Errorf("generating abstract: %w", err)
	}
	abstract = TruncateWords(CleanArtifacts(abstract), MaxAbstractWords)

	var body strings.Builder
	for _, sec := range Sections {
		g.progress("[%s] generating %s", track, sec.Name)
		text, err := g.ask(ctx, sectionTmpl, promptData{
			Topic:    topic,
			Title:    title,
			Subtitle: subtitle,
			Author:   g.Author.Name,
			Section:  sec.Name,
			Purpose:  sec.Purpose,
		}, 0.7, 1200)
		if err != nil {
			return types.DocumentRecord{}, fmt.Errorf("generating %s: %w", sec.Name, err)
		}
		body.WriteString(sectionHTML(sec.Name, CleanArtifacts(text)))
	}

	doc := types.DocumentRecord{
		Title:       title,
		Subtitle:    subtitle,
		Author:      g.Author.Name,
		ORCID:       g.Author.ORCID,
		Affiliation: g.Author.Affiliation,
		Email:       g.Author.Email,
		Date:        now.Format("January 02, 2006"),
		DateShort:   now.Format("20060102"),
		Keywords:    normalizeList(keywords),
		JELCodes:    normalizeList(jel),
		Abstract:    abstract,
		Body:        body.String(),
		Topic:       req.Topic,
		Track:       track,
		ParentTopic: req.ParentTopic,
	}
	if doc.Title == "" || doc.Abstract == "" {
		return types.DocumentRecord{}, fmt.Errorf("model returned an incomplete document")
	}

	path, err := WriteRecord(g.OutputDir, doc)
	if err != nil {
		return types.DocumentRecord{}, err
	}
	g.progress("[%s] saved %s", track, path)
	return doc, nil
}

// RecordPath returns the YAML path of doc under dir.
func RecordPath(dir string, doc types.DocumentRecord) string {
	return filepath.Join(dir, fmt.Sprintf("paper_data_%s_%s.yaml", doc.Track, doc.DateShort))
}

// WriteRecord persists doc as YAML and returns the file path.
func WriteRecord(dir string, doc types.DocumentRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling document record: %w", err)
	}
	path := RecordPath(dir, doc)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing document record: %w", err)
	}
	return path, nil
}

// LoadRecord reads a document record written by WriteRecord.
func LoadRecord(path string) (types.DocumentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.DocumentRecord{}, fmt.Errorf("reading document record: %w", err)
	}
	var doc types.DocumentRecord
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.DocumentRecord{}, fmt.Errorf("parsing document record: %w", err)
	}
	return doc, nil
}

func (g *Generator) ask(ctx context.Context, t *template.Template, data promptData, temperature float64, maxTokens int) (string, error) {
	prompt, err := render(t, data)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return g.LLM.Complete(ctx, llm.Request{Prompt: prompt, Temperature: temperature, MaxTokens: maxTokens})
}

func (g *Generator) progress(format string, args ...any) {
	if g.Progress == nil {
		return
	}
	fmt.Fprintf(g.Progress, format+"\n", args...)
}

func (g *Generator) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// normalizeList turns a model's list reply into "a, b, c".
func normalizeList(s string) string {
	s = strings.ReplaceAll(s, "\n", ",")
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(listMarker.ReplaceAllString(p, ""))
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
