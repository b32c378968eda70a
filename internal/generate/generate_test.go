// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// --- stub completer ---

type stubLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	fail     string
	replies  map[string]string
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	kind := promptKind(req.Prompt)
	if kind == s.fail {
		return "", errors.New("upstream 500")
	}
	if r, ok := s.replies[kind]; ok {
		return r, nil
	}
	return defaultReplies[kind], nil
}

func promptKind(p string) string {
	switch {
	case strings.Contains(p, "You are writing a section"):
		for _, sec := range Sections {
			if strings.Contains(p, "Section: "+sec.Name) {
				return sec.Name
			}
		}
		return "section"
	case strings.Contains(p, "sub-niche"):
		return "subtopic"
	case strings.Contains(p, "contra-suggestive"):
		return "title"
	case strings.Contains(p, "compelling subtitle"):
		return "subtitle"
	case strings.Contains(p, "SEO-optimized keywords"):
		return "keywords"
	case strings.Contains(p, "JEL classification codes"):
		return "jel"
	case strings.Contains(p, "academic abstract"):
		return "abstract"
	}
	return "unknown"
}

var defaultReplies = map[string]string{
	"subtopic":     `"Order flow toxicity in Bitcoin exchanges"`,
	"title":        `"Efficient Inefficiency: Market Microstructure and Price Discovery Paradoxes"`,
	"subtitle":     "How Frictions Sharpen Prices",
	"keywords":     "market microstructure, price discovery\nliquidity",
	"jel":          "1. G14\n2. D82",
	"abstract":     strings.Repeat("word ", 250),
	"Introduction": "It is worth noting that prices move.\n\n\n\nR&D matters too.",
	"Methodology":  "## Methodology\nWe use order book data.",
	"Analysis":     "As an AI model, I think so. Spreads widen.",
	"Discussion":   "Implications follow.",
	"Conclusion":   "Future work remains.",
}

func testAuthor() types.AuthorConfig {
	return types.AuthorConfig{
		Name:        "Audrey Evans",
		ORCID:       "0009-0005-0663-7832",
		Affiliation: "Independent Researcher",
		Email:       "author@example.com",
	}
}

func testGenerator(t *testing.T, s *stubLLM) *Generator {
	t.Helper()
	g := New(s, testAuthor(), filepath.Join(t.TempDir(), "output"), nil)
	g.now = func() time.Time { return time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC) }
	return g
}

// --- Generate ---

func TestGenerateBuildsRecord(t *testing.T) {
	s := &stubLLM{}
	g := testGenerator(t, s)

	doc, err := g.Generate(context.Background(), pipeline.GenerateRequest{Topic: "market microstructure", Track: types.TrackMain})
	require.NoError(t, err)

	assert.Equal(t, "Efficient Inefficiency: Market Microstructure and Price Discovery Paradoxes", doc.Title)
	assert.Equal(t, "How Frictions Sharpen Prices", doc.Subtitle)
	assert.Equal(t, "Audrey Evans", doc.Author)
	assert.Equal(t, "0009-0005-0663-7832", doc.ORCID)
	assert.Equal(t, "January 01, 2025", doc.Date)
	assert.Equal(t, "20250101", doc.DateShort)
	assert.Equal(t, "market microstructure, price discovery, liquidity", doc.Keywords)
	assert.Equal(t, "G14, D82", doc.JELCodes)
	assert.Len(t, strings.Fields(doc.Abstract), MaxAbstractWords)
	assert.True(t, strings.HasSuffix(doc.Abstract, "."))
	assert.Equal(t, types.Topic("market microstructure"), doc.Topic)
	assert.Equal(t, types.TrackMain, doc.Track)
	assert.Empty(t, doc.ParentTopic)

	for _, sec := range Sections {
		assert.Contains(t, doc.Body, "<h3>"+sec.Name+"</h3>")
	}
	assert.Contains(t, doc.Body, "<p>prices move.</p>")
	assert.Contains(t, doc.Body, "<p>R&amp;D matters too.</p>")
	assert.Contains(t, doc.Body, "<p>We use order book data.</p>")
	assert.Contains(t, doc.Body, "<p>Spreads widen.</p>")
	assert.NotContains(t, doc.Body, "As an AI")
	assert.NotContains(t, doc.Body, "## Methodology")

	assert.Len(t, s.requests, 10, "title, subtitle, keywords, JEL, abstract, five sections")
}

func TestGeneratePersistsRecord(t *testing.T) {
	g := testGenerator(t, &stubLLM{})

	doc, err := g.Generate(context.Background(), pipeline.GenerateRequest{
		Topic:       "order flow toxicity",
		Track:       types.TrackDerived,
		ParentTopic: "market microstructure",
	})
	require.NoError(t, err)

	path := filepath.Join(g.OutputDir, "paper_data_derived_20250101.yaml")
	assert.Equal(t, path, RecordPath(g.OutputDir, doc))
	loaded, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
	assert.Equal(t, types.Topic("market microstructure"), loaded.ParentTopic)
}

func TestGenerateFailsOnModelError(t *testing.T) {
	for _, kind := range []string{"title", "abstract", "Discussion"} {
		t.Run(kind, func(t *testing.T) {
			g := testGenerator(t, &stubLLM{fail: kind})

			_, err := g.Generate(context.Background(), pipeline.GenerateRequest{Topic: "x", Track: types.TrackMain})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "upstream 500")

			_, statErr := os.Stat(filepath.Join(g.OutputDir, "paper_data_main_20250101.yaml"))
			assert.True(t, os.IsNotExist(statErr), "no record is written for a failed generation")
		})
	}
}

func TestGenerateRejectsEmptyTopic(t *testing.T) {
	g := testGenerator(t, &stubLLM{})
	_, err := g.Generate(context.Background(), pipeline.GenerateRequest{Topic: "  "})
	require.Error(t, err)
}

func TestGenerateRejectsBlankTitle(t *testing.T) {
	g := testGenerator(t, &stubLLM{replies: map[string]string{"title": `""`}})
	_, err := g.Generate(context.Background(), pipeline.GenerateRequest{Topic: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete document")
}

func TestGenerateReportsProgress(t *testing.T) {
	var buf strings.Builder
	g := testGenerator(t, &stubLLM{})
	g.Progress = &buf

	_, err := g.Generate(context.Background(), pipeline.GenerateRequest{Topic: "x", Track: types.TrackMain})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[main] generating title")
	assert.Contains(t, buf.String(), "[main] generating Conclusion")
	assert.Contains(t, buf.String(), "[main] saved ")
}

// --- SubTopic ---

func TestSubTopic(t *testing.T) {
	s := &stubLLM{}
	g := testGenerator(t, s)

	sub, err := g.SubTopic(context.Background(), "Cryptocurrency market microstructure")
	require.NoError(t, err)
	assert.Equal(t, types.Topic("Order flow toxicity in Bitcoin exchanges"), sub)
	require.Len(t, s.requests, 1)
	assert.Contains(t, s.requests[0].Prompt, `"Cryptocurrency market microstructure"`)
}

func TestSubTopicErrors(t *testing.T) {
	_, err := testGenerator(t, &stubLLM{fail: "subtopic"}).SubTopic(context.Background(), "x")
	require.Error(t, err)

	_, err = testGenerator(t, &stubLLM{replies: map[string]string{"subtopic": `  ""  `}}).SubTopic(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty reply")
}

// --- cleaning ---

func TestCleanArtifacts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"assistant disclaimer", "As an AI language model, I have limits. Prices fall.", "Prices fall."},
		{"refusal", "I cannot browse the web. Spreads widen.", "Spreads widen."},
		{"filler phrase", "It's important to note that liquidity dries up.", "liquidity dries up."},
		{"worth noting", "It is worth noting that volume rises.", "volume rises."},
		{"generated notice", "Results hold. This paper was generated automatically.", "Results hold."},
		{"blank line runs", "One.\n\n\n\nTwo.", "One.\n\nTwo."},
		{"clean text untouched", "Said the trader.", "Said the trader."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanArtifacts(tt.in))
		})
	}
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "a b c", TruncateWords("a  b\nc", 5))
	assert.Equal(t, "a b.", TruncateWords("a b c d", 2))
	assert.Equal(t, "a b.", TruncateWords("a b. c d", 2))
}

func TestNormalizeList(t *testing.T) {
	assert.Equal(t, "G11, D83, C91", normalizeList("G11, D83,C91"))
	assert.Equal(t, "liquidity, 2008 crisis", normalizeList("- liquidity\n- 2008 crisis"))
	assert.Equal(t, "G14, D82", normalizeList("1) G14\n2) D82\n"))
}
