// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "spinal cord tumor", Normalize("  Spinal\tCord   TUMOR \n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Long-term outcomes", " long-term OUTCOMES ", "", "  ", "Pediatric data", "long-term  outcomes"})
	assert.Equal(t, []string{"Long-term outcomes", "Pediatric data"}, got)
}

func TestDedupeBy(t *testing.T) {
	type item struct{ desc string }
	got := DedupeBy([]item{{"A b"}, {"a  B"}, {" "}, {"c"}}, func(i item) string { return i.desc })
	assert.Equal(t, []item{{"A b"}, {"c"}}, got)
}

func TestMatchKeywords(t *testing.T) {
	kws := []string{"incidence", "Prevalence", "", "per 100,000", "incidence"}
	assert.Equal(t, []string{"incidence", "Prevalence"}, MatchKeywords("PREVALENCE and incidence rose", kws))
	assert.Equal(t, []string{"per 100,000"}, MatchKeywords("3 per 100,000 adults", kws))
	assert.Nil(t, MatchKeywords("", kws))
	assert.True(t, ContainsAny("Surgical approach diagram", []string{"approach"}))
	assert.False(t, ContainsAny("Surgical approach diagram", nil))
}

func TestSignificantWords(t *testing.T) {
	assert.Equal(t, []string{"surgical", "approach", "diagram"}, SignificantWords("The surgical approach: a diagram of the approach", 4))
	assert.True(t, IsStopword("Considerations"))
	assert.False(t, IsStopword("prognosis"))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Only one source discusses prognosis.", "Prognosis", true},
		{"Pediatric Considerations", "adult considerations", false},
		{"treatment options", "Treatment", true},
		{"an MRI", "MRI", false},
		{"", "anything", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Overlaps(tt.a, tt.b), "%q / %q", tt.a, tt.b)
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("Incidence is 5%. Is it rising? Yes!  It is.\nNew line here")
	assert.Equal(t, []string{"Incidence is 5%.", "Is it rising?", "Yes!", "It is.", "New line here"}, got)
	assert.Empty(t, Sentences("   "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "héllo", Truncate("héllo", 5))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))
}
