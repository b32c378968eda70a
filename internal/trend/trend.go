// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend scores and orders candidate paper topics pulled from
// several independent, partially unreliable sources.
//
// Candidates naming the same normalized topic are merged by summing their
// raw signals; the merged base score is then adjusted by the length,
// relevance, and recency modifiers in that order. Ranking never fails: when
// no source yields a candidate, a fixed fallback list is ranked instead.
package trend

import (
	"context"
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Source produces candidate topics. Each source (SSRN, Google Trends, a
// static list) implements this interface.
type Source interface {
	Name() string
	Kind() types.SourceKind
	Candidates(ctx context.Context) ([]types.Candidate, error)
}

const (
	defaultLengthThreshold = 60
	lengthPenalty          = 0.8
	relevanceStep          = 0.2
	fallbackOrigin         = "fallback"
)

// relevanceKeywords are matched case-insensitively as substrings of the
// topic text. Each keyword present adds relevanceStep to the modifier.
var relevanceKeywords = []string{
	"finance",
	"financial",
	"market",
	"economic",
	"investment",
	"investing",
	"risk",
	"monetary",
	"banking",
	"trading",
	"asset",
	"portfolio",
	"behavioral",
	"corporate",
	"credit",
	"inflation",
}

// FallbackTopics are ranked when every source fails or returns nothing.
var FallbackTopics = []types.Topic{
	"ESG investing and corporate performance",
	"Cryptocurrency market microstructure",
	"Machine learning in credit risk assessment",
	"Remote work and productivity",
	"Climate risk in financial markets",
	"Central bank digital currencies",
	"Private equity performance attribution",
	"Behavioral biases in retail investing",
}

// SourceError records a source that contributed zero candidates.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Kind reports the error classification.
func (e *SourceError) Kind() types.ErrorKind { return types.SourceUnavailable }

// Ranking is the result of one ranking run. Its topics are consumed through
// Topics or Top; the sequence is not restartable.
type Ranking struct {
	// Scores maps each normalized topic to its final score.
	Scores map[string]float64

	// SourceErrors lists the sources that failed, in source order.
	SourceErrors []*SourceError

	// UsedFallback is set when the fallback list was ranked.
	UsedFallback bool

	mu     sync.Mutex
	ranked []types.ScoredTopic
	next   int
}

// Topics returns the remaining ranked topics in descending score order.
// Each topic is yielded at most once across all iterations: a second range
// over a fully consumed ranking yields nothing.
func (r *Ranking) Topics() iter.Seq[types.ScoredTopic] {
	return func(yield func(types.ScoredTopic) bool) {
		for {
			r.mu.Lock()
			if r.next >= len(r.ranked) {
				r.mu.Unlock()
				return
			}
			t := r.ranked[r.next]
			r.next++
			r.mu.Unlock()

			if !yield(t) {
				return
			}
		}
	}
}

// Top takes the next k topics from the sequence.
func (r *Ranking) Top(k int) []types.ScoredTopic {
	if k <= 0 {
		return nil
	}
	out := make([]types.ScoredTopic, 0, k)
	for t := range r.Topics() {
		out = append(out, t)
		if len(out) == k {
			break
		}
	}
	return out
}

// Snapshot returns a copy of the full ranked list without consuming it.
func (r *Ranking) Snapshot() []types.ScoredTopic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.ScoredTopic, len(r.ranked))
	copy(out, r.ranked)
	return out
}

// Len returns the number of ranked topics.
func (r *Ranking) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ranked)
}

// Rank pulls candidates from every source concurrently, each under
// cfg.SourceTimeout, merges them by normalized topic, applies the score
// modifiers, and returns them in stable descending order. Failing sources
// are reported to w and recorded in SourceErrors.
func Rank(ctx context.Context, sources []Source, cfg types.TrendConfig, w io.Writer) *Ranking {
	type sourceResult struct {
		candidates []types.Candidate
		err        error
	}

	results := make([]sourceResult, len(sources))
	var wg sync.WaitGroup
	for i, s := range sources {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			sctx, cancel := sourceContext(ctx, cfg)
			defer cancel()
			c, err := s.Candidates(sctx)
			results[i] = sourceResult{candidates: c, err: err}
		}(i, s)
	}
	wg.Wait()

	r := &Ranking{}
	var all []types.Candidate
	for i, res := range results {
		s := sources[i]
		if res.err != nil {
			serr := &SourceError{Source: s.Name(), Err: res.err}
			r.SourceErrors = append(r.SourceErrors, serr)
			fmt.Fprintf(w, "warning: %v\n", serr)
			continue
		}
		fmt.Fprintf(w, "source %s: %d candidates\n", s.Name(), len(res.candidates))
		for _, c := range res.candidates {
			if c.Origin == "" {
				c.Origin = s.Name()
			}
			all = append(all, c)
		}
	}

	scored := score(merge(all), cfg.LengthThreshold)
	if len(scored) == 0 {
		fmt.Fprintf(w, "warning: no candidates from %d sources, ranking fallback topics\n", len(sources))
		r.UsedFallback = true
		scored = score(merge(fallbackCandidates()), cfg.LengthThreshold)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	r.Scores = make(map[string]float64, len(scored))
	for _, t := range scored {
		r.Scores[Normalize(string(t.Topic))] = t.Score
	}
	r.ranked = scored
	return r
}

func sourceContext(ctx context.Context, cfg types.TrendConfig) (context.Context, context.CancelFunc) {
	if cfg.SourceTimeout > 0 {
		return context.WithTimeout(ctx, cfg.SourceTimeout)
	}
	return context.WithCancel(ctx)
}

func fallbackCandidates() []types.Candidate {
	out := make([]types.Candidate, len(FallbackTopics))
	for i, t := range FallbackTopics {
		out[i] = types.Candidate{Topic: t, Source: types.PrimarySource, Origin: fallbackOrigin, RawSignal: 1.0}
	}
	return out
}

// merge folds candidates with the same normalized topic into one entry,
// summing raw signals and keeping the first-seen display text and order.
func merge(candidates []types.Candidate) []types.ScoredTopic {
	index := make(map[string]int)
	var merged []types.ScoredTopic

	for _, c := range candidates {
		key := Normalize(string(c.Topic))
		if key == "" {
			continue
		}
		signal := c.RawSignal
		if signal < 0 {
			signal = 0
		}

		if idx, ok := index[key]; ok {
			merged[idx].BaseScore += signal
			merged[idx].Sources = appendUnique(merged[idx].Sources, c.Origin)
			continue
		}

		index[key] = len(merged)
		merged = append(merged, types.ScoredTopic{
			Topic:     types.Topic(strings.TrimSpace(string(c.Topic))),
			BaseScore: signal,
			Sources:   appendUnique(nil, c.Origin),
		})
	}
	return merged
}

func score(topics []types.ScoredTopic, threshold int) []types.ScoredTopic {
	for i := range topics {
		text := string(topics[i].Topic)
		topics[i].Score = topics[i].BaseScore *
			lengthModifier(text, threshold) *
			relevanceModifier(text) *
			recencyModifier(text)
	}
	return topics
}

func lengthModifier(text string, threshold int) float64 {
	if threshold <= 0 {
		threshold = defaultLengthThreshold
	}
	if utf8.RuneCountInString(text) > threshold {
		return lengthPenalty
	}
	return 1.0
}

func relevanceModifier(text string) float64 {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range relevanceKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return 1.0 + relevanceStep*float64(n)
}

// recencyModifier is the hook for temporal decay. Topics carry no
// timestamp yet, so every topic gets 1.0.
func recencyModifier(string) float64 {
	return 1.0
}

// Normalize case-folds the topic, trims it, and collapses inner whitespace.
func Normalize(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
