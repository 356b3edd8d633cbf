// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan chooses the ordered section list for one synthesis run.
//
// The plan starts from the section table's template and keeps anchors,
// sections with keyword coverage, and sections a unique insight points at.
// Topic exclusions, focus-area ordering, and the Controversial Aspects
// section are applied in that order. Plan is a pure function of its inputs.
package plan

import (
	"sort"
	"strings"

	"github.com/pdiddy/synthesis-engine/internal/sections"
	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Planner builds SectionPlans from a section table.
type Planner struct {
	table *sections.Table
}

// New returns a Planner over table. A nil table selects sections.Default().
func New(table *sections.Table) *Planner {
	if table == nil {
		table = sections.Default()
	}
	return &Planner{table: table}
}

// Coverage counts, per template section, the TEXT elements whose content and
// the IMAGE elements whose caption contain one of the section's keywords.
func (p *Planner) Coverage(elements []types.ContentElement) map[string]int {
	cov := make(map[string]int, len(p.table.Sections))
	for _, s := range p.table.Sections {
		n := 0
		for _, e := range elements {
			switch e.Type {
			case types.ElementText:
				if textutil.ContainsAny(e.Content, s.Keywords) {
					n++
				}
			case types.ElementImage:
				if textutil.ContainsAny(e.Caption(), s.Keywords) {
					n++
				}
			}
		}
		cov[s.Name] = n
	}
	return cov
}

// Plan returns the ordered section list for topic.
func (p *Planner) Plan(topic string, elements []types.ContentElement, analysis types.RelationshipAnalysis, focusAreas []string) types.SectionPlan {
	cov := p.Coverage(elements)

	var body []string
	for _, s := range p.table.Sections {
		switch s.Name {
		case types.SectionIntroduction, types.SectionConclusion, types.SectionReferences:
			continue
		}
		if p.table.Excluded(s.Name, topic) && !s.Anchor {
			continue
		}
		if s.Anchor || cov[s.Name] > 0 || insightPointsAt(analysis.UniqueInsights, s.Name) {
			body = append(body, s.Name)
		}
	}

	body = orderByFocus(body, focusAreas)

	if len(analysis.Contradictions) > p.table.ControversyThreshold && !contains(body, types.SectionControversy) {
		body = append(body, types.SectionControversy)
	}

	plan := make(types.SectionPlan, 0, len(body)+3)
	plan = append(plan, types.SectionIntroduction)
	plan = append(plan, body...)
	plan = append(plan, types.SectionConclusion, types.SectionReferences)
	return plan
}

// insightPointsAt reports whether a unique insight shares a significant word
// with the section name.
func insightPointsAt(insights []types.Relationship, section string) bool {
	for _, in := range insights {
		if textutil.Overlaps(in.Description+" "+strings.Join(in.Terms, " "), section) {
			return true
		}
	}
	return false
}

// orderByFocus moves sections matching a focus area to the front, ordered by
// the first focus area they match. Unmatched sections keep template order.
func orderByFocus(body, focusAreas []string) []string {
	if len(focusAreas) == 0 {
		return body
	}
	rank := func(name string) int {
		for i, f := range focusAreas {
			if focusMatches(name, f) {
				return i
			}
		}
		return len(focusAreas)
	}
	out := append([]string(nil), body...)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// focusMatches reports whether a focus area names the section: substring in
// either direction or a shared significant word.
func focusMatches(section, focus string) bool {
	s, f := textutil.Normalize(section), textutil.Normalize(focus)
	if f == "" {
		return false
	}
	return strings.Contains(s, f) || strings.Contains(f, s) || textutil.Overlaps(section, focus)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
