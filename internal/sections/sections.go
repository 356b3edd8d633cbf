// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections holds the data-driven section table shared by the
// structure planner and the evidence aggregator: the canonical section
// template, the section-to-keyword lookup, topic exclusion rules, and the
// thresholds that trigger custom sections.
//
// The built-in table is heuristic. Every value in it is tunable and may be
// replaced wholesale by a YAML file (see LoadFile).
package sections

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synthesis-engine/internal/textutil"
)

// Section is one entry of the canonical template.
type Section struct {
	// Name is the section heading.
	Name string `json:"name" yaml:"name"`

	// Keywords are matched as lowercase substrings of element text and image captions.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Anchor sections are always planned, with or without evidence.
	Anchor bool `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// Exclusion drops sections whose name contains SectionContains unless the
// topic contains one of UnlessTopic.
type Exclusion struct {
	SectionContains string   `json:"section_contains" yaml:"section_contains"`
	UnlessTopic     []string `json:"unless_topic" yaml:"unless_topic"`
}

// Table is the full section configuration.
type Table struct {
	// Sections is the canonical template in document order.
	Sections []Section `json:"sections" yaml:"sections"`

	// Exclusions are topic-conditional removal rules.
	Exclusions []Exclusion `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`

	// ControversyThreshold is the contradiction count that must be exceeded
	// before a Controversial Aspects section is inserted.
	ControversyThreshold int `json:"controversy_threshold" yaml:"controversy_threshold"`

	// MaxSectionContradictions caps the contradictions quoted per section prompt.
	MaxSectionContradictions int `json:"max_section_contradictions" yaml:"max_section_contradictions"`
}

// Names returns the template section names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Sections))
	for i, s := range t.Sections {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the named section.
func (t *Table) Lookup(name string) (Section, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Keywords returns the keywords of the named section, or nil.
func (t *Table) Keywords(name string) []string {
	s, ok := t.Lookup(name)
	if !ok {
		return nil
	}
	return s.Keywords
}

// IsAnchor reports whether the named section is an anchor.
func (t *Table) IsAnchor(name string) bool {
	s, ok := t.Lookup(name)
	return ok && s.Anchor
}

// Excluded reports whether an exclusion rule removes section for topic.
func (t *Table) Excluded(section, topic string) bool {
	lowerSection := strings.ToLower(section)
	for _, ex := range t.Exclusions {
		needle := strings.ToLower(strings.TrimSpace(ex.SectionContains))
		if needle == "" || !strings.Contains(lowerSection, needle) {
			continue
		}
		if !textutil.ContainsAny(topic, ex.UnlessTopic) {
			return true
		}
	}
	return false
}

// Validate checks the table for missing names, duplicates, and the
// Introduction, Conclusion, and References anchors.
func (t *Table) Validate() error {
	if len(t.Sections) == 0 {
		return fmt.Errorf("section table has no sections")
	}
	seen := make(map[string]bool, len(t.Sections))
	for i, s := range t.Sections {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("section %d: empty name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("section %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
	}
	for _, anchor := range anchorNames {
		s, ok := t.Lookup(anchor)
		if !ok || !s.Anchor {
			return fmt.Errorf("section table must contain anchor section %q", anchor)
		}
	}
	if t.ControversyThreshold < 0 {
		return fmt.Errorf("controversy_threshold %d must not be negative", t.ControversyThreshold)
	}
	return nil
}

// LoadFile reads a YAML section table from path and validates it.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading section table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing section table: %w", err)
	}
	if t.MaxSectionContradictions <= 0 {
		t.MaxSectionContradictions = defaultMaxSectionContradictions
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Marshal renders the table as YAML, suitable as a starting point for an override file.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}
