// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"fmt"
	"strings"

	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// maxFallbackSentence caps a single quoted sentence in fallback prose.
const maxFallbackSentence = 600

type sourceParagraph struct {
	citation  string
	sentences []string
	seen      map[string]bool
}

// fallbackProse builds extractive prose from the evidence: for each source,
// in evidence order, up to maxSentences sentences that contain a section
// keyword, followed by the source's citation. Items that contain no keyword
// sentence (Introduction and Conclusion fallbacks) contribute their leading
// sentences instead.
func fallbackProse(section string, ev types.AggregatedEvidence, keywords []string, contradictions []types.Relationship, maxSentences int) string {
	index := make(map[string]int)
	var paras []*sourceParagraph

	for _, it := range ev.Items {
		e := it.Element
		i, ok := index[e.Source]
		if !ok {
			i = len(paras)
			index[e.Source] = i
			paras = append(paras, &sourceParagraph{citation: e.Citation, seen: make(map[string]bool)})
		}
		p := paras[i]

		sentences := textutil.Sentences(e.Content)
		picked := make([]string, 0, len(sentences))
		for _, s := range sentences {
			if textutil.ContainsAny(s, keywords) {
				picked = append(picked, s)
			}
		}
		if len(picked) == 0 {
			picked = sentences
		}
		for _, s := range picked {
			if len(p.sentences) >= maxSentences {
				break
			}
			key := textutil.Normalize(s)
			if p.seen[key] {
				continue
			}
			p.seen[key] = true
			p.sentences = append(p.sentences, textutil.Truncate(s, maxFallbackSentence))
		}
	}

	var blocks []string
	if section == types.SectionControversy && len(contradictions) > 0 {
		var b strings.Builder
		b.WriteString("The sources disagree on the following points:")
		for _, c := range contradictions {
			b.WriteString("\n- " + c.Description)
		}
		blocks = append(blocks, b.String())
	}

	for _, p := range paras {
		if len(p.sentences) == 0 {
			continue
		}
		para := strings.Join(p.sentences, " ")
		if p.citation != "" {
			para += " [" + p.citation + "]"
		}
		blocks = append(blocks, para)
	}

	if len(ev.Supporting) > 0 {
		var b strings.Builder
		b.WriteString("Supporting data:")
		for _, it := range ev.Supporting {
			label := it.Element.Caption()
			if label == "" {
				label = firstLine(it.Element.Content)
			}
			fmt.Fprintf(&b, "\n- %s [%s]", label, it.Element.Citation)
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
