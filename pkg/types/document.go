// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Anchor section names. They are always planned regardless of evidence.
const (
	SectionIntroduction = "Introduction"
	SectionConclusion   = "Conclusion"
	SectionReferences   = "References"
)

// SectionControversy is the custom section inserted when sources
// contradict each other often enough.
const SectionControversy = "Controversial Aspects"

// SectionPlan is the ordered list of sections chosen for one run.
type SectionPlan []string

// Contains reports whether the plan includes the named section.
func (p SectionPlan) Contains(name string) bool {
	for _, s := range p {
		if s == name {
			return true
		}
	}
	return false
}

// EvidenceItem is one element selected as evidence for a section.
type EvidenceItem struct {
	Element ContentElement `json:"element" yaml:"element"`

	// Hits is the number of distinct section keywords the element contains.
	Hits int `json:"hits" yaml:"hits"`

	// Keywords lists the matched keywords.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// AggregatedEvidence is the evidence subset selected for one section.
type AggregatedEvidence struct {
	Section string `json:"section" yaml:"section"`

	// Items are the matching TEXT elements, best first.
	Items []EvidenceItem `json:"items" yaml:"items"`

	// Supporting are matching TABLE elements. Only populated when Items is non-empty.
	Supporting []EvidenceItem `json:"supporting,omitempty" yaml:"supporting,omitempty"`

	// Images are IMAGE elements whose caption matched a section keyword.
	Images []ContentElement `json:"images,omitempty" yaml:"images,omitempty"`
}

// HasText reports whether at least one TEXT element matched.
func (a AggregatedEvidence) HasText() bool {
	return len(a.Items) > 0
}

// Citations returns the distinct citations of all text and supporting evidence, in order.
func (a AggregatedEvidence) Citations() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, it := range a.Items {
		add(it.Element.Citation)
	}
	for _, it := range a.Supporting {
		add(it.Element.Citation)
	}
	for _, img := range a.Images {
		add(img.Citation)
	}
	return out
}

// DocumentStatus is the terminal state of a synthesis run.
type DocumentStatus string

const (
	StatusDraft        DocumentStatus = "DRAFT_INTERNAL_COMPREHENSIVE"
	StatusNoReferences DocumentStatus = "NO_REFERENCES"
	StatusError        DocumentStatus = "ERROR"
)

// ImageRef is an image attached to the compiled document.
type ImageRef struct {
	Path         string   `json:"path" yaml:"path"`
	Caption      string   `json:"caption" yaml:"caption"`
	Citation     string   `json:"citation" yaml:"citation"`
	FigureNumber string   `json:"figure_number,omitempty" yaml:"figure_number,omitempty"`
	Source       string   `json:"source,omitempty" yaml:"source,omitempty"`
	Draggable    bool     `json:"draggable" yaml:"draggable"`
	Sections     []string `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Quality holds per-run document quality counters.
type Quality struct {
	SectionsPlanned     int          `json:"sections_planned" yaml:"sections_planned"`
	SectionsGenerated   int          `json:"sections_generated" yaml:"sections_generated"`
	SectionsFallback    int          `json:"sections_fallback" yaml:"sections_fallback"`
	SectionsUnavailable int          `json:"sections_unavailable" yaml:"sections_unavailable"`
	SectionsOmitted     int          `json:"sections_omitted" yaml:"sections_omitted"`
	ImagesAttached      int          `json:"images_attached" yaml:"images_attached"`
	HedgesAdded         int          `json:"hedges_added" yaml:"hedges_added"`
	UnknownCitations    int          `json:"unknown_citations" yaml:"unknown_citations"`
	Coverage            float64      `json:"coverage" yaml:"coverage"`
	AnalysisMode        AnalysisMode `json:"analysis_mode,omitempty" yaml:"analysis_mode,omitempty"`
}

// DocumentMetadata holds the counts reported with a compiled document.
type DocumentMetadata struct {
	TotalSources        int     `json:"total_sources" yaml:"total_sources"`
	ContentElements     int     `json:"content_elements" yaml:"content_elements"`
	KnowledgeGaps       int     `json:"knowledge_gaps" yaml:"knowledge_gaps"`
	ContradictionsFound int     `json:"contradictions_found" yaml:"contradictions_found"`
	Quality             Quality `json:"quality" yaml:"quality"`
}

// SynthesizedDocument is the composite document produced by one run.
type SynthesizedDocument struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Topic string `json:"topic" yaml:"topic"`

	// Order lists the keys of Sections in document order.
	Order []string `json:"section_order" yaml:"section_order"`

	// Sections maps section name to prose.
	Sections map[string]string `json:"content" yaml:"content"`

	Images      []ImageRef           `json:"images" yaml:"images"`
	Analysis    RelationshipAnalysis `json:"analysis" yaml:"analysis"`
	Metadata    DocumentMetadata     `json:"metadata" yaml:"metadata"`
	Status      DocumentStatus       `json:"status" yaml:"status"`
	Error       string               `json:"error,omitempty" yaml:"error,omitempty"`
	GeneratedAt time.Time            `json:"generated_at" yaml:"generated_at"`
}

// OutputAnalysis is the analysis subset handed to downstream consumers.
type OutputAnalysis struct {
	Contradictions []Relationship `json:"contradictions" yaml:"contradictions"`
	KnowledgeGaps  []string       `json:"knowledge_gaps" yaml:"knowledge_gaps"`
	UniqueInsights []Relationship `json:"unique_insights" yaml:"unique_insights"`
}

// OutputDocument is the contract consumed by export and enrichment stages.
type OutputDocument struct {
	RunID              string            `json:"run_id" yaml:"run_id"`
	Topic              string            `json:"topic" yaml:"topic"`
	Content            map[string]string `json:"content" yaml:"content"`
	SectionOrder       []string          `json:"section_order" yaml:"section_order"`
	Images             []ImageRef        `json:"images" yaml:"images"`
	Analysis           OutputAnalysis    `json:"analysis" yaml:"analysis"`
	Metadata           DocumentMetadata  `json:"metadata" yaml:"metadata"`
	Status             DocumentStatus    `json:"status" yaml:"status"`
	Error              string            `json:"error,omitempty" yaml:"error,omitempty"`
	ReadyForEnrichment bool              `json:"ready_for_enrichment" yaml:"ready_for_enrichment"`
	GeneratedAt        time.Time         `json:"generated_at" yaml:"generated_at"`
}

// Output converts the document into the downstream contract.
// ReadyForEnrichment is true iff the analysis reports knowledge gaps.
func (d SynthesizedDocument) Output() OutputDocument {
	content := make(map[string]string, len(d.Sections))
	for k, v := range d.Sections {
		content[k] = v
	}
	images := d.Images
	if images == nil {
		images = []ImageRef{}
	}
	return OutputDocument{
		RunID:        d.RunID,
		Topic:        d.Topic,
		Content:      content,
		SectionOrder: d.Order,
		Images:       images,
		Analysis: OutputAnalysis{
			Contradictions: d.Analysis.Contradictions,
			KnowledgeGaps:  d.Analysis.KnowledgeGaps,
			UniqueInsights: d.Analysis.UniqueInsights,
		},
		Metadata:           d.Metadata,
		Status:             d.Status,
		Error:              d.Error,
		ReadyForEnrichment: len(d.Analysis.KnowledgeGaps) > 0,
		GeneratedAt:        d.GeneratedAt,
	}
}
