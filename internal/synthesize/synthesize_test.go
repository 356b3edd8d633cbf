// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/synthesis-engine/internal/oracle"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func text(source, content string) types.ContentElement {
	return types.ContentElement{
		Type:       types.ElementText,
		Content:    content,
		Source:     source,
		Citation:   source + " (2020). Review.",
		Confidence: 1,
	}
}

func image(source, caption, path string) types.ContentElement {
	return types.ContentElement{
		Type:       types.ElementImage,
		Content:    caption,
		Source:     source,
		Citation:   source + " (2021). Atlas.",
		Confidence: 1,
		Metadata: map[string]any{
			types.MetaCaption:      caption,
			types.MetaPath:         path,
			types.MetaFigureNumber: "1",
			types.MetaDraggable:    true,
		},
	}
}

var elements = []types.ContentElement{
	text("Smith", "Spinal meningioma is a slow-growing tumor. Incidence is 5% in adults. Most patients are women."),
	text("Jones", "Incidence is 5% in this cohort. Surgical resection was curative."),
	text("Lee", "A registry found incidence was 12%. Follow-up lasted ten years."),
}

var incidenceConflict = types.RelationshipAnalysis{
	Contradictions: []types.Relationship{{
		Kind:        types.RelContradiction,
		Description: "Sources report differing values for incidence: 5% versus 12%.",
		Terms:       []string{"incidence"},
	}},
}

func standalone(t *testing.T) *Synthesizer {
	return New(oracle.Null{}, nil, types.SynthesisConfig{}, zaptest.NewLogger(t))
}

func scripted(reply string, err error, prompts *[]string) oracle.Generator {
	return oracle.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return reply, err
	})
}

func TestUnavailableText(t *testing.T) {
	assert.Equal(t, "Information on Prognosis is not available in the provided references.", UnavailableText("Prognosis"))
}

func TestSynthesize_References(t *testing.T) {
	out := standalone(t).Synthesize(context.Background(), types.SectionReferences,
		append(elements, text("Smith", "duplicate source")), types.RelationshipAnalysis{}, "t")
	assert.Equal(t, KindReferences, out.Kind)
	assert.Equal(t, "1. Smith (2020). Review.\n2. Jones (2020). Review.\n3. Lee (2020). Review.", out.Text)

	empty := standalone(t).Synthesize(context.Background(), types.SectionReferences, nil, types.RelationshipAnalysis{}, "t")
	assert.Equal(t, KindUnavailable, empty.Kind)
	assert.Equal(t, UnavailableText(types.SectionReferences), empty.Text)
}

func TestSynthesize_OmittedWithoutEvidence(t *testing.T) {
	out := standalone(t).Synthesize(context.Background(), "Pathophysiology", elements, types.RelationshipAnalysis{}, "t")
	assert.Equal(t, KindOmitted, out.Kind)
	assert.Empty(t, out.Text)
	assert.False(t, out.HasEvidence)
}

func TestSynthesize_ImageOnlySection(t *testing.T) {
	img := image("Atlas", "Surgical approach diagram", "img/approach.png")
	out := standalone(t).Synthesize(context.Background(), "Surgical Management", []types.ContentElement{img}, types.RelationshipAnalysis{}, "t")

	assert.Equal(t, KindUnavailable, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, UnavailableText("Surgical Management")))
	assert.Contains(t, out.Text, "Relevant Images:\n- Figure 1: Surgical approach diagram [Atlas (2021). Atlas.] (img/approach.png)")
	require.Len(t, out.Images, 1)
}

func TestSynthesize_StandaloneFallback(t *testing.T) {
	out := standalone(t).Synthesize(context.Background(), "Epidemiology", elements, types.RelationshipAnalysis{}, "spinal meningioma")

	assert.Equal(t, KindFallback, out.Kind)
	assert.ErrorIs(t, out.Err, oracle.ErrUnavailable)
	assert.True(t, out.HasEvidence)
	assert.False(t, out.Hedged)
	assert.Equal(t, strings.Join([]string{
		"Incidence is 5% in adults. [Smith (2020). Review.]",
		"Incidence is 5% in this cohort. [Jones (2020). Review.]",
		"A registry found incidence was 12%. [Lee (2020). Review.]",
	}, "\n\n"), out.Text)
	assert.Zero(t, out.UnknownCitations)
}

func TestSynthesize_HedgeNote(t *testing.T) {
	out := standalone(t).Synthesize(context.Background(), "Epidemiology", elements, incidenceConflict, "t")
	assert.True(t, out.Hedged)
	assert.True(t, strings.HasSuffix(out.Text, "Note: the sources disagree on incidence, and reported values vary between references."))

	// Unrelated sections are not hedged.
	other := standalone(t).Synthesize(context.Background(), "Surgical Management", elements, incidenceConflict, "t")
	assert.Equal(t, KindFallback, other.Kind)
	assert.False(t, other.Hedged)
}

func TestSynthesize_HedgeNotSuppressedByOrdinaryWords(t *testing.T) {
	elems := []types.ContentElement{
		text("A", "The incidence is 5% across different age groups."),
		text("B", "The incidence is 5% in adults."),
		text("C", "The incidence is 12% in adults."),
	}
	out := standalone(t).Synthesize(context.Background(), "Epidemiology", elems, incidenceConflict, "t")
	assert.True(t, out.Hedged)
	assert.Contains(t, out.Text, "different age groups")
	assert.True(t, strings.HasSuffix(out.Text, "Note: the sources disagree on incidence, and reported values vary between references."))
}

func TestAcknowledges(t *testing.T) {
	c := incidenceConflict.Contradictions[0]
	tests := []struct {
		text string
		want bool
	}{
		{"Estimates of incidence disagree between registries.", true},
		{"Incidence figures conflict. Older series are smaller.", true},
		{"Reported incidence varies from 5% to 12%.", true},
		{"Incidence differs by region.", false},
		{"Incidence is 5% across different age groups.", false},
		{"Differential diagnosis includes schwannoma and various incidence figures.", false},
		{"The sources disagree. Incidence is 5%.", false},
		{"Registries disagree on recurrence.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, acknowledges(tt.text, c), tt.text)
	}

	assert.True(t, acknowledges("The sources disagree.", types.Relationship{Kind: types.RelContradiction}))
}

func TestSynthesize_Generated(t *testing.T) {
	var prompts []string
	reply := "## Epidemiology\n\nIncidence estimates disagree, ranging from 5% [Smith (2020)] to 12% [Lee (2020). Review.]. Older data [Brown 1999] vary."
	s := New(scripted(reply, nil, &prompts), nil, types.SynthesisConfig{}, zaptest.NewLogger(t))

	out := s.Synthesize(context.Background(), "Epidemiology", elements, incidenceConflict, "spinal meningioma")
	require.NoError(t, out.Err)
	assert.Equal(t, KindGenerated, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, "Incidence estimates disagree"))
	assert.False(t, out.Hedged)
	assert.Equal(t, 1, out.UnknownCitations)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `"Epidemiology" section`)
	assert.Contains(t, prompts[0], "[Smith (2020). Review.]")
	assert.Contains(t, prompts[0], "Known disagreements between sources:")
	assert.Contains(t, prompts[0], incidenceConflict.Contradictions[0].Description)
}

func TestSynthesize_GenerationFailuresFallBack(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"provider error", "", &oracle.ProviderError{Provider: "test", Err: errors.New("overloaded")}},
		{"blank output", "   \n", nil},
		{"heading only", "## Epidemiology\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(scripted(tt.reply, tt.err, nil), nil, types.SynthesisConfig{}, nil)
			out := s.Synthesize(context.Background(), "Epidemiology", elements, types.RelationshipAnalysis{}, "t")
			assert.Equal(t, KindFallback, out.Kind)
			require.Error(t, out.Err)
			assert.Contains(t, out.Text, "[Smith (2020). Review.]")
		})
	}
}

func TestSynthesize_IntroductionUsesLeadingText(t *testing.T) {
	out := standalone(t).Synthesize(context.Background(), types.SectionIntroduction, elements, types.RelationshipAnalysis{}, "t")
	assert.Equal(t, KindFallback, out.Kind)
	assert.False(t, out.HasEvidence)
	assert.Contains(t, out.Text, "Spinal meningioma is a slow-growing tumor. Incidence is 5% in adults. Most patients are women. [Smith (2020). Review.]")
	assert.Contains(t, out.Text, "[Lee (2020). Review.]")

	noText := standalone(t).Synthesize(context.Background(), types.SectionConclusion,
		[]types.ContentElement{image("Atlas", "Axial MRI", "mri.png")}, types.RelationshipAnalysis{}, "t")
	assert.Equal(t, KindUnavailable, noText.Kind)
	assert.Equal(t, UnavailableText(types.SectionConclusion), noText.Text)
}

func TestSynthesize_ImagesListedOnceUnlessReferenced(t *testing.T) {
	elems := append([]types.ContentElement{
		image("Atlas", "Surgical approach diagram", "a.png"),
		image("Atlas", "Operative field after resection", "b.png"),
	}, elements...)

	reply := "Resection was curative [Jones (2020). Review.]; see the surgical approach diagram."
	out := New(scripted(reply, nil, nil), nil, types.SynthesisConfig{}, nil).
		Synthesize(context.Background(), "Surgical Management", elems, types.RelationshipAnalysis{}, "t")

	assert.Equal(t, KindGenerated, out.Kind)
	assert.Len(t, out.Images, 2)
	assert.Contains(t, out.Text, "Relevant Images:\n- Figure 1: Operative field after resection")
	assert.NotContains(t, out.Text, "(a.png)")
}

func TestSynthesize_ControversyFallback(t *testing.T) {
	out := standalone(t).Synthesize(context.Background(), types.SectionControversy, elements, incidenceConflict, "t")
	assert.Equal(t, KindFallback, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, "The sources disagree on the following points:\n- Sources report differing values"))
	assert.False(t, out.Hedged)
}

func TestTrimHeading(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"## Epidemiology\nBody.", "Body."},
		{"**Epidemiology:**\n\nBody.", "Body."},
		{"\n\nepidemiology\nBody.", "Body."},
		{"Epidemiology is the study of disease.", "Epidemiology is the study of disease."},
		{"Body only.", "Body only."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimHeading(tt.in, "Epidemiology"), tt.in)
	}
}

func TestCountUnknownCitations(t *testing.T) {
	known := []string{"Smith (2020). Review.", "Jones & Lee (2019). Trial."}
	tests := []struct {
		text string
		want int
	}{
		{"Claim [Smith (2020). Review.].", 0},
		{"Claim [smith (2020)].", 0},
		{"Claim [Smith (2020); Jones & Lee (2019)].", 0},
		{"Claim [Brown (2018)].", 1},
		{"See [Figure] and [link](http://x) and [https://x/1].", 0},
		{"Claim [Brown 2018; Smith (2020)] and [Doe 2001].", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countUnknownCitations(tt.text, known), tt.text)
	}
}
