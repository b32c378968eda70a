// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming derives paper filenames from titles. Rendering and metadata
// extraction both call Filename so the two never diverge.
package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// Brand is the author brand every distributable filename starts with.
const Brand = "Walter_Evans"

// Prefix is the required filename prefix.
const Prefix = Brand + "_"

// Untitled stands in for a title with no meaningful tokens.
const Untitled = "Untitled"

// stopWords are dropped from titles before the short title is built.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
}

// ShortTitle returns the underscore-joined short form of title: the first
// three meaningful tokens (two when fewer than three exist) of the part
// before the first colon. When the head has fewer than three meaningful
// tokens, tokens after the colon pad the selection.
func ShortTitle(title string) string {
	head, tail, _ := strings.Cut(title, ":")

	words := meaningful(head)
	if len(words) < 3 {
		words = append(words, meaningful(tail)...)
	}

	if len(words) > 3 {
		words = words[:3]
	}
	if len(words) == 0 {
		return Untitled
	}

	return strings.Join(words, "_")
}

// Filename returns Brand_ShortTitle_DateShort.pdf.
func Filename(title, dateShort string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", Brand, ShortTitle(title), dateShort)
}

// HasPrefix reports whether name carries the brand prefix.
func HasPrefix(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

// ValidatePrefix returns an error when name lacks the brand prefix.
func ValidatePrefix(name string) error {
	if !HasPrefix(name) {
		return fmt.Errorf("filename must start with %q: %s", Prefix, name)
	}
	return nil
}

// meaningful returns the cleaned tokens of s that are neither stop words
// nor empty after cleaning.
func meaningful(s string) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if stopWords[strings.ToLower(w)] {
			continue
		}
		if w = clean(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// clean keeps letters, digits, and underscores.
func clean(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
