// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// analysisPromptTmpl asks the generator for a JSON relationship analysis of
// the digest. Only the digest may be used as evidence.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are a research synthesis analyst. Compare the {{.SourceCount}} sources below on the topic "{{.Topic}}" and classify how they relate.

Use only the text of the sources. Do not add outside knowledge.

Return a JSON object with these keys:
- similarities: findings two or more sources agree on
- differences: points where sources differ in scope, method, or emphasis
- complementary_info: details one source adds that another lacks
- contradictions: claims that directly conflict (for example different values for the same measure)
- unique_insights: findings present in only one source
- knowledge_gaps: aspects of the topic no source covers (plain strings)

Every entry except knowledge_gaps is an object with fields:
- description: one or two sentences stating the finding
- sources: the source titles involved, exactly as given
- terms: key terms the finding is about (for example "incidence")
- confidence: a float between 0.0 and 1.0

Respond with the JSON object only.

Example response:
{"similarities": [{"description": "Both sources report surgery as first-line treatment.", "sources": ["Source A", "Source B"], "terms": ["surgery"], "confidence": 0.8}], "differences": [], "complementary_info": [], "contradictions": [{"description": "Source A reports an incidence of 5% while Source C reports 12%.", "sources": ["Source A", "Source C"], "terms": ["incidence"], "confidence": 0.7}], "unique_insights": [], "knowledge_gaps": ["long-term outcomes in children"]}

Sources:
{{.Digest}}`))

type promptData struct {
	Topic       string
	SourceCount int
	Digest      string
}

func renderPrompt(topic string, sourceCount int, digest string) (string, error) {
	var buf bytes.Buffer
	if err := analysisPromptTmpl.Execute(&buf, promptData{Topic: topic, SourceCount: sourceCount, Digest: digest}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildDigest renders the grouped sources, capping each excerpt at perSource
// runes and the whole digest at total runes.
func buildDigest(groups []sourceGroup, perSource, total int) string {
	var b strings.Builder
	used := 0
	for _, g := range groups {
		header := fmt.Sprintf("### %s\nCitation: %s\n", g.Source, g.Citation)
		excerpt := textutil.Truncate(g.Text, perSource)
		block := header + excerpt + "\n\n"

		remaining := total - used
		if len([]rune(block)) > remaining {
			room := remaining - len([]rune(header)) - 2
			if room < minDigestExcerpt {
				break
			}
			block = header + textutil.Truncate(excerpt, room) + "\n\n"
		}
		b.WriteString(block)
		used += len([]rune(block))
	}
	return strings.TrimSpace(b.String())
}

// minDigestExcerpt is the smallest excerpt worth including when the digest budget runs low.
const minDigestExcerpt = 80

// entry accepts either a full relationship object or a bare string.
type entry struct {
	Description string   `json:"description"`
	Sources     []string `json:"sources"`
	Terms       []string `json:"terms"`
	Confidence  *float64 `json:"confidence"`
}

func (e *entry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Description = s
		return nil
	}
	type plain entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = entry(p)
	return nil
}

type analysisResponse struct {
	Similarities      []entry  `json:"similarities"`
	Differences       []entry  `json:"differences"`
	ComplementaryInfo []entry  `json:"complementary_info"`
	Contradictions    []entry  `json:"contradictions"`
	UniqueInsights    []entry  `json:"unique_insights"`
	KnowledgeGaps     []string `json:"knowledge_gaps"`
}

// defaultConfidence is used when the generator omits a confidence value.
const defaultConfidence = 0.5

// parseAnalysis extracts the outermost JSON object from reply, tolerating
// code fences and surrounding prose, and converts it to an analysis.
func parseAnalysis(reply string) (types.RelationshipAnalysis, error) {
	raw := stripFences(reply)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return types.RelationshipAnalysis{}, fmt.Errorf("no JSON object in response")
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return types.RelationshipAnalysis{}, fmt.Errorf("parsing analysis JSON: %w", err)
	}

	out := types.EmptyAnalysis(types.AnalysisGenerated)
	out.Similarities = convertEntries(resp.Similarities, types.RelSimilarity)
	out.Differences = convertEntries(resp.Differences, types.RelDifference)
	out.ComplementaryInfo = convertEntries(resp.ComplementaryInfo, types.RelComplementary)
	out.Contradictions = convertEntries(resp.Contradictions, types.RelContradiction)
	out.UniqueInsights = convertEntries(resp.UniqueInsights, types.RelUniqueInsight)
	out.KnowledgeGaps = textutil.Dedupe(resp.KnowledgeGaps)
	if out.KnowledgeGaps == nil {
		out.KnowledgeGaps = []string{}
	}
	return out, nil
}

func convertEntries(entries []entry, kind types.RelationshipKind) []types.Relationship {
	out := make([]types.Relationship, 0, len(entries))
	for _, e := range entries {
		desc := strings.TrimSpace(e.Description)
		if desc == "" {
			continue
		}
		conf := defaultConfidence
		if e.Confidence != nil {
			conf = clamp(*e.Confidence)
		}
		out = append(out, types.Relationship{
			Kind:        kind,
			Description: desc,
			Sources:     textutil.Dedupe(e.Sources),
			Terms:       textutil.Dedupe(e.Terms),
			Confidence:  conf,
		})
	}
	return textutil.DedupeBy(out, func(r types.Relationship) string { return r.Description })
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// stripFences removes a surrounding Markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
