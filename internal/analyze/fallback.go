// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// DeepAnalysisUnavailableGap is the single knowledge gap reported by the
// fallback analysis.
const DeepAnalysisUnavailableGap = "Deep cross-source analysis unavailable: relationships were derived from shared terminology only."

const (
	// minTermLen is the shortest word counted as a domain term.
	minTermLen = 5

	sharedTermConfidence   = 0.3
	numericClaimConfidence = 0.4
)

type termCount struct {
	term    string
	total   int
	sources []string
}

// sharedTerms emits one similarity per domain term that appears in at
// least two sources and whose total occurrences reach ceil(factor * sources).
// Terms are ranked by count descending, then alphabetically.
func sharedTerms(groups []sourceGroup, factor float64, maxTerms int) []types.Relationship {
	if len(groups) < 2 {
		return []types.Relationship{}
	}
	threshold := int(math.Ceil(factor * float64(len(groups))))

	counts := make(map[string]*termCount)
	for _, g := range groups {
		for _, w := range textutil.Tokens(g.Text) {
			if utf8.RuneCountInString(w) < minTermLen || textutil.IsStopword(w) {
				continue
			}
			tc, ok := counts[w]
			if !ok {
				tc = &termCount{term: w}
				counts[w] = tc
			}
			tc.total++
			if len(tc.sources) == 0 || tc.sources[len(tc.sources)-1] != g.Source {
				tc.sources = append(tc.sources, g.Source)
			}
		}
	}

	var kept []*termCount
	for _, tc := range counts {
		if len(tc.sources) >= 2 && tc.total >= threshold {
			kept = append(kept, tc)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].total != kept[j].total {
			return kept[i].total > kept[j].total
		}
		return kept[i].term < kept[j].term
	})
	if maxTerms > 0 && len(kept) > maxTerms {
		kept = kept[:maxTerms]
	}

	out := make([]types.Relationship, 0, len(kept))
	for _, tc := range kept {
		out = append(out, types.Relationship{
			Kind:        types.RelSimilarity,
			Description: fmt.Sprintf("%d sources discuss %q (%d mentions).", len(tc.sources), tc.term, tc.total),
			Sources:     tc.sources,
			Terms:       []string{tc.term},
			Confidence:  sharedTermConfidence,
		})
	}
	return out
}

// percentClaim matches statements such as "incidence is 5%",
// "recurrence rate was about 12.5 %" or "incidence in older adults is 8%".
// The measure is the word before the verb or before a short prepositional
// phrase qualifying it.
var percentClaim = regexp.MustCompile(`\b([a-z][a-z\-]{3,})(?:\s+rates?)?(?:\s+(?:in|among|for|across|within|after)(?:\s+[a-z][a-z\-]*){1,3})?\s+(?:is|was|are|were|of|at|reaches|reached|=|:)\s+(?:approximately\s+|about\s+|around\s+|roughly\s+|nearly\s+)?(\d+(?:\.\d+)?)\s*%`)

type claimValue struct {
	value   string
	sources []string
}

// numericContradictions reports measures for which different sources state
// different percentages.
func numericContradictions(groups []sourceGroup) []types.Relationship {
	type measure struct {
		values  []*claimValue
		sources []string
	}
	measures := make(map[string]*measure)
	var order []string

	for _, g := range groups {
		for _, m := range percentClaim.FindAllStringSubmatch(strings.ToLower(g.Text), -1) {
			term, value := m[1], normalizeNumber(m[2])
			if textutil.IsStopword(term) {
				continue
			}
			ms, ok := measures[term]
			if !ok {
				ms = &measure{}
				measures[term] = ms
				order = append(order, term)
			}
			ms.sources = appendUnique(ms.sources, g.Source)

			var cv *claimValue
			for _, v := range ms.values {
				if v.value == value {
					cv = v
					break
				}
			}
			if cv == nil {
				cv = &claimValue{value: value}
				ms.values = append(ms.values, cv)
			}
			cv.sources = appendUnique(cv.sources, g.Source)
		}
	}

	out := []types.Relationship{}
	for _, term := range order {
		ms := measures[term]
		if len(ms.values) < 2 || len(ms.sources) < 2 {
			continue
		}
		parts := make([]string, len(ms.values))
		for i, v := range ms.values {
			parts[i] = fmt.Sprintf("%s%% (%s)", v.value, strings.Join(v.sources, "; "))
		}
		out = append(out, types.Relationship{
			Kind:        types.RelContradiction,
			Description: fmt.Sprintf("Sources report differing values for %s: %s.", term, strings.Join(parts, " versus ")),
			Sources:     ms.sources,
			Terms:       []string{term},
			Confidence:  numericClaimConfidence,
		})
	}
	return out
}

// normalizeNumber drops trailing fractional zeros so "5.0" and "5" compare equal.
func normalizeNumber(s string) string {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
