// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence selects the elements a section may be written from.
package evidence

import (
	"sort"
	"strings"

	"github.com/pdiddy/synthesis-engine/internal/sections"
	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// controversyWordLen is the minimum word length taken from a contradiction
// description when it carries no terms.
const controversyWordLen = 5

// Aggregator filters and ranks elements per section.
type Aggregator struct {
	table       *sections.Table
	maxEvidence int
}

// New returns an Aggregator. A nil table selects sections.Default();
// maxEvidence <= 0 leaves the ranked list uncapped.
func New(table *sections.Table, maxEvidence int) *Aggregator {
	if table == nil {
		table = sections.Default()
	}
	return &Aggregator{table: table, maxEvidence: maxEvidence}
}

// Keywords returns the keyword set for section. The Controversial Aspects
// section uses the terms of the contradiction records.
func (a *Aggregator) Keywords(section string, analysis types.RelationshipAnalysis) []string {
	if section == types.SectionControversy {
		if _, ok := a.table.Lookup(section); !ok {
			return contradictionKeywords(analysis.Contradictions)
		}
	}
	return a.table.Keywords(section)
}

func contradictionKeywords(contradictions []types.Relationship) []string {
	var kws []string
	for _, c := range contradictions {
		if len(c.Terms) > 0 {
			kws = append(kws, c.Terms...)
			continue
		}
		kws = append(kws, textutil.SignificantWords(c.Description, controversyWordLen)...)
	}
	return textutil.Dedupe(kws)
}

// Aggregate returns the evidence for section: ranked TEXT matches, TABLE
// matches as supporting data when TEXT matched, and IMAGE or DIAGRAM
// elements whose caption matched.
func (a *Aggregator) Aggregate(section string, elements []types.ContentElement, analysis types.RelationshipAnalysis) types.AggregatedEvidence {
	out := types.AggregatedEvidence{Section: section}
	keywords := a.Keywords(section, analysis)
	if len(keywords) == 0 {
		return out
	}

	var tables []types.EvidenceItem
	for _, e := range elements {
		switch e.Type {
		case types.ElementText:
			if hits := textutil.MatchKeywords(e.Content, keywords); len(hits) > 0 {
				out.Items = append(out.Items, types.EvidenceItem{Element: e, Hits: len(hits), Keywords: hits})
			}
		case types.ElementTable:
			if hits := textutil.MatchKeywords(e.Content, keywords); len(hits) > 0 {
				tables = append(tables, types.EvidenceItem{Element: e, Hits: len(hits), Keywords: hits})
			}
		case types.ElementImage, types.ElementDiagram:
			if textutil.ContainsAny(e.Caption(), keywords) {
				out.Images = append(out.Images, e)
			}
		}
	}

	out.Items = a.rank(out.Items)
	if len(out.Items) > 0 {
		out.Supporting = a.rank(tables)
	}
	return out
}

// FirstPerSource returns the first TEXT element of every source, in source
// order. Introduction and Conclusion use it when no keyword matched.
func FirstPerSource(elements []types.ContentElement) []types.EvidenceItem {
	seen := make(map[string]bool)
	var out []types.EvidenceItem
	for _, e := range elements {
		if e.Type != types.ElementText || seen[e.Source] || strings.TrimSpace(e.Content) == "" {
			continue
		}
		seen[e.Source] = true
		out = append(out, types.EvidenceItem{Element: e})
	}
	return out
}

// rank orders items by hits, then confidence, keeping input order for ties,
// and applies the evidence cap.
func (a *Aggregator) rank(items []types.EvidenceItem) []types.EvidenceItem {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Hits != items[j].Hits {
			return items[i].Hits > items[j].Hits
		}
		return items[i].Element.Confidence > items[j].Element.Confidence
	})
	if a.maxEvidence > 0 && len(items) > a.maxEvidence {
		items = items[:a.maxEvidence]
	}
	return items
}
