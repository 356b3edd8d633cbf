// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil holds the small text helpers shared by the synthesis
// stages: normalization and deduplication, keyword matching, significant
// word overlap, sentence splitting, and truncation.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Normalize lowercases s, trims it, and collapses inner whitespace runs.
// Two strings that differ only by case or whitespace normalize equal.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Dedupe returns items with blank entries and normalized duplicates removed.
// The first occurrence wins and keeps its original spelling, trimmed.
func Dedupe(items []string) []string {
	trimmed := lo.FilterMap(items, func(s string, _ int) (string, bool) {
		t := strings.TrimSpace(s)
		return t, t != ""
	})
	return lo.UniqBy(trimmed, Normalize)
}

// DedupeBy removes entries whose normalized key is blank or already seen.
func DedupeBy[T any](items []T, key func(T) string) []T {
	kept := lo.Filter(items, func(it T, _ int) bool {
		return Normalize(key(it)) != ""
	})
	return lo.UniqBy(kept, func(it T) string { return Normalize(key(it)) })
}

// MatchKeywords returns the keywords contained in text, compared in lowercase.
// Keywords are returned in table order, each at most once.
func MatchKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	var hits []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(lower, k) {
			hits = append(hits, kw)
		}
	}
	return lo.Uniq(hits)
}

// ContainsAny reports whether text contains at least one keyword.
func ContainsAny(text string, keywords []string) bool {
	return len(MatchKeywords(text, keywords)) > 0
}

var wordPattern = regexp.MustCompile(`[\p{L}][\p{L}\-]*`)

// stopwords are dropped from significant-word comparisons.
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "among": true,
	"and": true, "are": true, "aspects": true, "based": true, "been": true,
	"before": true, "being": true, "between": true, "both": true, "but": true,
	"can": true, "considerations": true, "could": true, "does": true, "during": true,
	"each": true, "either": true, "every": true, "from": true, "have": true,
	"having": true, "however": true, "into": true, "like": true, "many": true,
	"more": true, "most": true, "much": true, "must": true, "other": true,
	"over": true, "same": true, "several": true, "should": true, "since": true,
	"some": true, "such": true, "than": true, "that": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "under": true, "until": true,
	"upon": true, "used": true, "using": true, "very": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"whose": true, "will": true, "with": true, "within": true, "without": true,
	"would": true, "your": true, "study": true, "studies": true, "patients": true,
	"reported": true, "report": true, "found": true, "shown": true, "show": true,
	"results": true, "result": true, "including": true, "include": true,
}

// Tokens returns the lowercase words of s in order, including short words.
func Tokens(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// SignificantWords returns the distinct lowercase words of at least minLen
// letters that are not stopwords, in first-appearance order.
func SignificantWords(s string, minLen int) []string {
	words := lo.Filter(Tokens(s), func(w string, _ int) bool {
		return utf8.RuneCountInString(w) >= minLen && !stopwords[w]
	})
	return lo.Uniq(words)
}

// IsStopword reports whether w is ignored in significant-word comparisons.
func IsStopword(w string) bool {
	return stopwords[strings.ToLower(w)]
}

// Overlaps reports whether a and b share a significant word of four or more letters.
func Overlaps(a, b string) bool {
	wa := SignificantWords(a, 4)
	if len(wa) == 0 {
		return false
	}
	wb := SignificantWords(b, 4)
	return lo.Some(wa, wb)
}

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// Sentences splits s into trimmed sentences on terminal punctuation followed by whitespace.
func Sentences(s string) []string {
	marked := sentenceEnd.ReplaceAllString(strings.TrimSpace(s), "$1\x00")
	parts := strings.Split(marked, "\x00")
	return lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		t := strings.Join(strings.Fields(p), " ")
		return t, t != ""
	})
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return strings.TrimSpace(string([]rune(s)[:n-3])) + "..."
}
