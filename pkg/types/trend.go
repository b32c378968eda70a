// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-engine pipeline:
// trend candidates and scores, document and metadata records, and run results.
package types

// Topic is a short natural-language subject for a paper.
type Topic string

// SourceKind classifies where a trend candidate came from.
type SourceKind int

const (
	// PrimarySource is a curated academic source (e.g. SSRN top downloads).
	PrimarySource SourceKind = iota
	// SecondarySource is a general-interest signal (e.g. search trends).
	SecondarySource
)

// String returns the lowercase source kind name.
func (k SourceKind) String() string {
	switch k {
	case PrimarySource:
		return "primary"
	case SecondarySource:
		return "secondary"
	default:
		return "unknown"
	}
}

// Candidate is one source's proposed topic and its raw relevance signal,
// before deduplication and scoring.
type Candidate struct {
	// Topic is the display text as returned by the source.
	Topic Topic `json:"topic" yaml:"topic"`

	// Source is the source kind.
	Source SourceKind `json:"source" yaml:"source"`

	// Origin is the name of the source that produced the candidate.
	Origin string `json:"origin" yaml:"origin"`

	// RawSignal is the source-specific relevance signal (non-negative).
	RawSignal float64 `json:"raw_signal" yaml:"raw_signal"`
}

// ScoredTopic is a deduplicated topic with its accumulated and adjusted score.
type ScoredTopic struct {
	// Topic is the first-seen display text.
	Topic Topic `json:"topic" yaml:"topic"`

	// BaseScore is the sum of raw signals of all merged candidates.
	BaseScore float64 `json:"base_score" yaml:"base_score"`

	// Score is BaseScore after the length, relevance, and recency modifiers.
	Score float64 `json:"score" yaml:"score"`

	// Sources lists the origins that proposed the topic, in first-seen order.
	Sources []string `json:"sources" yaml:"sources"`
}
