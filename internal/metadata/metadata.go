// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata derives the metadata record for a generated paper and
// persists it three ways: a YAML record per track and date, one row in the
// append-only papers_log.csv, and a plain-text submission checklist.
package metadata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/internal/naming"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// LogFile is the CSV log name inside the metadata directory.
const LogFile = "papers_log.csv"

// maxEJournals caps the e-journal suggestions.
const maxEJournals = 3

// LogColumns is the CSV header, in column order.
var LogColumns = []string{
	"filename", "title", "subtitle", "author", "orcid", "email",
	"date", "date_short", "keywords", "jel_codes", "topic",
	"word_count", "ejournals", "abstract", "track",
}

// jelJournals maps a JEL code's leading letter to e-journals.
var jelJournals = map[byte][]string{
	'C': {"Econometrics", "Statistical Methods"},
	'D': {"Behavioral & Experimental Economics", "Microeconomics"},
	'E': {"Macroeconomics", "Monetary Economics"},
	'G': {"Financial Economics", "Corporate Finance", "Asset Pricing"},
	'L': {"Industrial Organization", "Business Economics"},
	'M': {"Management", "Marketing", "Accounting"},
}

// keywordJournals adds an e-journal when any of its keywords appear.
var keywordJournals = []struct {
	keywords []string
	journal  string
}{
	{[]string{"behavioral", "psychology"}, "Behavioral & Experimental Economics"},
	{[]string{"market", "trading"}, "Financial Markets"},
	{[]string{"investment", "portfolio"}, "Asset Pricing"},
}

// csvMu serialises appends to the CSV log within the process.
var csvMu sync.Mutex

// Extractor implements pipeline.MetadataExtractor.
type Extractor struct {
	Dir string

	// Progress receives one line per written file. Nil discards.
	Progress io.Writer
}

var _ pipeline.MetadataExtractor = (*Extractor)(nil)

// New returns an extractor writing under dir.
func New(dir string, progress io.Writer) *Extractor {
	return &Extractor{Dir: dir, Progress: progress}
}

// Extract builds the metadata record for doc and writes the record file,
// the CSV row, and the submission checklist.
func (e *Extractor) Extract(_ context.Context, doc types.DocumentRecord) (types.MetadataRecord, error) {
	words, err := WordCount(doc.Body)
	if err != nil {
		return types.MetadataRecord{}, err
	}
	rec := types.MetadataRecord{
		Filename:    naming.Filename(doc.Title, doc.DateShort),
		Title:       doc.Title,
		Subtitle:    doc.Subtitle,
		Author:      doc.Author,
		ORCID:       doc.ORCID,
		Affiliation: doc.Affiliation,
		Email:       doc.Email,
		Date:        doc.Date,
		DateShort:   doc.DateShort,
		Abstract:    doc.Abstract,
		Keywords:    doc.Keywords,
		JELCodes:    doc.JELCodes,
		Topic:       doc.Topic,
		Track:       doc.Track,
		ParentTopic: doc.ParentTopic,
		WordCount:   words,
		EJournals:   SuggestEJournals(doc.Keywords, doc.JELCodes),
	}

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return types.MetadataRecord{}, fmt.Errorf("creating metadata directory: %w", err)
	}

	path, err := writeRecord(e.Dir, rec)
	if err != nil {
		return types.MetadataRecord{}, err
	}
	rec.RecordPath = path
	e.progress("metadata: %s", path)

	logPath := filepath.Join(e.Dir, LogFile)
	if err := AppendLog(logPath, rec); err != nil {
		return types.MetadataRecord{}, err
	}
	e.progress("csv log: %s", logPath)

	info, err := writeSubmissionInfo(e.Dir, rec)
	if err != nil {
		return types.MetadataRecord{}, err
	}
	e.progress("submission info: %s", info)

	return rec, nil
}

// WordCount counts whitespace-separated words in the text nodes of an HTML
// fragment.
func WordCount(body string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("parsing body HTML: %w", err)
	}
	n := 0
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			n += len(strings.Fields(s.Text()))
		}
	})
	return n, nil
}

// SuggestEJournals maps JEL code letters and keyword rules to e-journals
// and returns the first three in sorted order, comma-separated.
func SuggestEJournals(keywords, jelCodes string) string {
	set := make(map[string]bool)
	for _, code := range strings.Split(jelCodes, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		for _, j := range jelJournals[code[0]] {
			set[j] = true
		}
	}

	lower := strings.ToLower(keywords)
	for _, rule := range keywordJournals {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				set[rule.journal] = true
				break
			}
		}
	}

	journals := make([]string, 0, len(set))
	for j := range set {
		journals = append(journals, j)
	}
	sort.Strings(journals)
	if len(journals) > maxEJournals {
		journals = journals[:maxEJournals]
	}
	return strings.Join(journals, ", ")
}

// RecordPath returns the YAML record path for rec under dir.
func RecordPath(dir string, rec types.MetadataRecord) string {
	return filepath.Join(dir, fmt.Sprintf("metadata_%s_%s.yaml", rec.Track, rec.DateShort))
}

func writeRecord(dir string, rec types.MetadataRecord) (string, error) {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	path := RecordPath(dir, rec)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	return path, nil
}

// LoadRecord reads a metadata record written by Extract.
func LoadRecord(path string) (types.MetadataRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.MetadataRecord{}, fmt.Errorf("reading metadata: %w", err)
	}
	var rec types.MetadataRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return types.MetadataRecord{}, fmt.Errorf("parsing metadata: %w", err)
	}
	rec.RecordPath = path
	return rec, nil
}

// AppendLog appends one row for rec to the CSV at path. The header is
// written only when the file is new or empty.
func AppendLog(path string, rec types.MetadataRecord) error {
	csvMu.Lock()
	defer csvMu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening CSV log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("checking CSV log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(LogColumns); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}
	if err := w.Write(logRow(rec)); err != nil {
		return fmt.Errorf("writing CSV row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV log: %w", err)
	}
	return nil
}

func logRow(rec types.MetadataRecord) []string {
	return []string{
		rec.Filename, rec.Title, rec.Subtitle, rec.Author, rec.ORCID, rec.Email,
		rec.Date, rec.DateShort, rec.Keywords, rec.JELCodes, string(rec.Topic),
		strconv.Itoa(rec.WordCount), rec.EJournals, rec.Abstract, string(rec.Track),
	}
}

// ReadLog returns the data rows of the CSV log, header excluded.
func ReadLog(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV log: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func (e *Extractor) progress(format string, args ...any) {
	if e.Progress == nil {
		return
	}
	fmt.Fprintf(e.Progress, format+"\n", args...)
}
