// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RelationshipKind classifies how sources relate to each other.
type RelationshipKind string

const (
	RelSimilarity    RelationshipKind = "similarity"
	RelDifference    RelationshipKind = "difference"
	RelComplementary RelationshipKind = "complementary"
	RelContradiction RelationshipKind = "contradiction"
	RelUniqueInsight RelationshipKind = "unique_insight"
)

// AnalysisMode records which path produced a RelationshipAnalysis.
type AnalysisMode string

const (
	// AnalysisGenerated means the generation capability produced the analysis.
	AnalysisGenerated AnalysisMode = "generated"

	// AnalysisFallback means the deterministic shared-term analysis was used.
	AnalysisFallback AnalysisMode = "fallback"

	// AnalysisEmpty means the generator answered but its response could not be parsed.
	AnalysisEmpty AnalysisMode = "empty"
)

// Relationship is one cross-source finding. Every list in a
// RelationshipAnalysis uses this shape.
type Relationship struct {
	// Kind is the relationship category.
	Kind RelationshipKind `json:"kind" yaml:"kind"`

	// Description states the finding in one or two sentences.
	Description string `json:"description" yaml:"description"`

	// Sources names the source labels involved.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Terms lists the key terms the finding is about (e.g. "incidence").
	Terms []string `json:"terms,omitempty" yaml:"terms,omitempty"`

	// Confidence is a float between 0.0 and 1.0.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// RelationshipAnalysis classifies how the sources of one run agree,
// disagree, complement each other, or leave gaps. It is read-only once built.
type RelationshipAnalysis struct {
	Similarities      []Relationship `json:"similarities" yaml:"similarities"`
	Differences       []Relationship `json:"differences" yaml:"differences"`
	ComplementaryInfo []Relationship `json:"complementary_info" yaml:"complementary_info"`
	Contradictions    []Relationship `json:"contradictions" yaml:"contradictions"`
	UniqueInsights    []Relationship `json:"unique_insights" yaml:"unique_insights"`

	// KnowledgeGaps lists topic aspects without supporting evidence.
	KnowledgeGaps []string `json:"knowledge_gaps" yaml:"knowledge_gaps"`

	// Mode records how the analysis was produced.
	Mode AnalysisMode `json:"mode" yaml:"mode"`
}

// IsEmpty reports whether no list holds any entry.
func (a RelationshipAnalysis) IsEmpty() bool {
	return len(a.Similarities) == 0 &&
		len(a.Differences) == 0 &&
		len(a.ComplementaryInfo) == 0 &&
		len(a.Contradictions) == 0 &&
		len(a.UniqueInsights) == 0 &&
		len(a.KnowledgeGaps) == 0
}

// Degraded reports whether the analysis did not come from the generation capability.
func (a RelationshipAnalysis) Degraded() bool {
	return a.Mode != AnalysisGenerated
}

// EmptyAnalysis returns an analysis whose lists are empty but non-nil.
func EmptyAnalysis(mode AnalysisMode) RelationshipAnalysis {
	return RelationshipAnalysis{
		Similarities:      []Relationship{},
		Differences:       []Relationship{},
		ComplementaryInfo: []Relationship{},
		Contradictions:    []Relationship{},
		UniqueInsights:    []Relationship{},
		KnowledgeGaps:     []string{},
		Mode:              mode,
	}
}
