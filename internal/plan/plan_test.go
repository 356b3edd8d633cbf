// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/synthesis-engine/internal/sections"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func text(content string) types.ContentElement {
	return types.ContentElement{Type: types.ElementText, Content: content, Source: "S", Citation: "S."}
}

func image(caption string) types.ContentElement {
	return types.ContentElement{
		Type:     types.ElementImage,
		Content:  caption,
		Source:   "S",
		Metadata: map[string]any{types.MetaCaption: caption},
	}
}

func contradictions(n int) []types.Relationship {
	out := make([]types.Relationship, n)
	for i := range out {
		out[i] = types.Relationship{Kind: types.RelContradiction, Description: "conflict"}
	}
	return out
}

var sample = []types.ContentElement{
	text("The incidence is 5% and prevalence is rising."),
	text("Treatment with medication is first-line therapy."),
	text("Patients present with symptoms of back pain."),
}

func TestPlan_AnchorsAlwaysPresent(t *testing.T) {
	got := New(nil).Plan("anything", nil, types.RelationshipAnalysis{}, nil)
	assert.Equal(t, types.SectionPlan{types.SectionIntroduction, types.SectionConclusion, types.SectionReferences}, got)
}

func TestPlan_CoverageInTemplateOrder(t *testing.T) {
	got := New(nil).Plan("spinal tumors", sample, types.RelationshipAnalysis{}, nil)
	assert.Equal(t, types.SectionPlan{
		types.SectionIntroduction,
		"Epidemiology",
		"Clinical Presentation",
		"Treatment",
		types.SectionConclusion,
		types.SectionReferences,
	}, got)
}

func TestPlan_Deterministic(t *testing.T) {
	p := New(nil)
	analysis := types.RelationshipAnalysis{Contradictions: contradictions(3)}
	focus := []string{"treatment", "epidemiology"}
	first := p.Plan("spinal tumors", sample, analysis, focus)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, p.Plan("spinal tumors", sample, analysis, focus))
	}
}

func TestPlan_ImageCaptionCounts(t *testing.T) {
	got := New(nil).Plan("spinal tumors", []types.ContentElement{image("Surgical approach diagram")}, types.RelationshipAnalysis{}, nil)
	assert.True(t, got.Contains("Surgical Management"))
}

func TestPlan_UniqueInsightRetainsSection(t *testing.T) {
	analysis := types.RelationshipAnalysis{
		UniqueInsights: []types.Relationship{{Kind: types.RelUniqueInsight, Description: "Only one source discusses prognosis after relapse."}},
	}
	got := New(nil).Plan("spinal tumors", nil, analysis, nil)
	assert.True(t, got.Contains("Prognosis"))
}

func TestPlan_PediatricExclusion(t *testing.T) {
	elems := []types.ContentElement{text("Children and adolescents are rarely affected.")}
	p := New(nil)

	assert.False(t, p.Plan("adult spinal tumors", elems, types.RelationshipAnalysis{}, nil).Contains("Pediatric Considerations"))
	assert.True(t, p.Plan("pediatric spinal tumors", elems, types.RelationshipAnalysis{}, nil).Contains("Pediatric Considerations"))
}

func TestPlan_FocusAreas(t *testing.T) {
	got := New(nil).Plan("spinal tumors", sample, types.RelationshipAnalysis{}, []string{"treatment options", "Epidemiology"})
	assert.Equal(t, types.SectionPlan{
		types.SectionIntroduction,
		"Treatment",
		"Epidemiology",
		"Clinical Presentation",
		types.SectionConclusion,
		types.SectionReferences,
	}, got)
}

func TestPlan_FocusCannotMoveAnchors(t *testing.T) {
	got := New(nil).Plan("spinal tumors", sample, types.RelationshipAnalysis{}, []string{"conclusion", "references"})
	assert.Equal(t, types.SectionIntroduction, got[0])
	assert.Equal(t, types.SectionReferences, got[len(got)-1])
	assert.Equal(t, types.SectionConclusion, got[len(got)-2])
}

func TestPlan_ControversialAspects(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"below threshold", 1, false},
		{"at threshold", 2, false},
		{"above threshold", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(nil).Plan("t", sample, types.RelationshipAnalysis{Contradictions: contradictions(tt.count)}, nil)
			assert.Equal(t, tt.want, got.Contains(types.SectionControversy))
			if tt.want {
				assert.Equal(t, types.SectionControversy, got[len(got)-3])
			}
		})
	}
}

func TestPlan_CustomTable(t *testing.T) {
	table := &sections.Table{
		Sections: []sections.Section{
			{Name: types.SectionIntroduction, Anchor: true},
			{Name: "Methods", Anchor: true},
			{Name: "Results", Keywords: []string{"outcome"}},
			{Name: types.SectionConclusion, Anchor: true},
			{Name: types.SectionReferences, Anchor: true},
		},
		ControversyThreshold: 0,
	}
	got := New(table).Plan("t", nil, types.RelationshipAnalysis{Contradictions: contradictions(1)}, nil)
	assert.Equal(t, types.SectionPlan{
		types.SectionIntroduction, "Methods", types.SectionControversy, types.SectionConclusion, types.SectionReferences,
	}, got)
}

func TestCoverage(t *testing.T) {
	cov := New(nil).Coverage(append(sample, image("MRI of the lumbar spine")))
	assert.Equal(t, 1, cov["Epidemiology"])
	assert.Equal(t, 1, cov["Imaging"])
	assert.Equal(t, 0, cov["Prognosis"])
}
