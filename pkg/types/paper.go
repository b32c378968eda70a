// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Track identifies one document-production line within a run.
type Track string

const (
	// TrackMain produces the paper on the selected topic.
	TrackMain Track = "main"
	// TrackDerived produces a paper on a sub-topic of the main topic.
	TrackDerived Track = "derived"
)

// DocumentRecord is the generated paper content. It is created once by the
// generator and never modified afterwards.
type DocumentRecord struct {
	// Title is the paper title, optionally with a subtitle after a colon.
	Title string `json:"title" yaml:"title"`

	// Subtitle is the separately generated subtitle line.
	Subtitle string `json:"subtitle" yaml:"subtitle"`

	// Author is the author's display name.
	Author string `json:"author" yaml:"author"`

	// ORCID is the author's ORCID identifier.
	ORCID string `json:"orcid" yaml:"orcid"`

	// Affiliation is the author's institutional affiliation.
	Affiliation string `json:"affiliation" yaml:"affiliation"`

	// Email is the author's contact address.
	Email string `json:"email" yaml:"email"`

	// Date is the long-form generation date (e.g. "January 02, 2025").
	Date string `json:"date" yaml:"date"`

	// DateShort is the fixed-width YYYYMMDD date token.
	DateShort string `json:"date_short" yaml:"date_short"`

	// Keywords is the comma-separated keyword list.
	Keywords string `json:"keywords" yaml:"keywords"`

	// JELCodes is the comma-separated JEL classification list (e.g. "G11, G14").
	JELCodes string `json:"jel_codes" yaml:"jel_codes"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Body is the paper body as HTML.
	Body string `json:"body" yaml:"body"`

	// Topic is the topic the paper was generated for.
	Topic Topic `json:"topic" yaml:"topic"`

	// Track is main or derived.
	Track Track `json:"track" yaml:"track"`

	// ParentTopic is the main topic a derived paper was split from.
	ParentTopic Topic `json:"parent_topic,omitempty" yaml:"parent_topic,omitempty"`
}

// Fields returns the record's template placeholders and their values in a
// stable order.
func (d DocumentRecord) Fields() [][2]string {
	return [][2]string{
		{"title", d.Title},
		{"subtitle", d.Subtitle},
		{"author", d.Author},
		{"orcid", d.ORCID},
		{"affiliation", d.Affiliation},
		{"email", d.Email},
		{"date", d.Date},
		{"date_short", d.DateShort},
		{"keywords", d.Keywords},
		{"jel_codes", d.JELCodes},
		{"abstract", d.Abstract},
		{"body", d.Body},
		{"topic", string(d.Topic)},
		{"track", string(d.Track)},
	}
}

// Artifact references the rendered files for one document.
type Artifact struct {
	// MarkupPath is the intermediate HTML file.
	MarkupPath string `json:"markup_path" yaml:"markup_path"`

	// PDFPath is the final distributable PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Filename is the derived short filename of the PDF.
	Filename string `json:"filename" yaml:"filename"`
}

// MetadataRecord holds derived facts about a DocumentRecord together with
// the record fields needed for distribution.
type MetadataRecord struct {
	Filename    string `json:"filename" yaml:"filename"`
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle" yaml:"subtitle"`
	Author      string `json:"author" yaml:"author"`
	ORCID       string `json:"orcid" yaml:"orcid"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Email       string `json:"email" yaml:"email"`
	Date        string `json:"date" yaml:"date"`
	DateShort   string `json:"date_short" yaml:"date_short"`
	Abstract    string `json:"abstract" yaml:"abstract"`
	Keywords    string `json:"keywords" yaml:"keywords"`
	JELCodes    string `json:"jel_codes" yaml:"jel_codes"`
	Topic       Topic  `json:"topic" yaml:"topic"`
	Track       Track  `json:"track" yaml:"track"`
	ParentTopic Topic  `json:"parent_topic,omitempty" yaml:"parent_topic,omitempty"`

	// WordCount is the number of words in the body once HTML is stripped.
	WordCount int `json:"word_count" yaml:"word_count"`

	// EJournals lists up to three suggested distribution channels.
	EJournals string `json:"ejournals" yaml:"ejournals"`

	// RecordPath is where the standalone record file was written.
	RecordPath string `json:"-" yaml:"-"`
}
