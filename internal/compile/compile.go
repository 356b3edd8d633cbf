// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile assembles section outcomes into a SynthesizedDocument.
package compile

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/synthesis-engine/internal/synthesize"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Input is everything the compiler needs for one run. Outcomes[i] belongs
// to Plan[i].
type Input struct {
	Topic           string
	Plan            types.SectionPlan
	Outcomes        []synthesize.Outcome
	Analysis        types.RelationshipAnalysis
	TotalSources    int
	ContentElements int
}

// Compile builds the DRAFT document. Omitted sections are dropped; images
// are flattened across sections and deduplicated.
func Compile(in Input) types.SynthesizedDocument {
	doc := types.SynthesizedDocument{
		Topic:       in.Topic,
		Order:       []string{},
		Sections:    make(map[string]string, len(in.Plan)),
		Images:      []types.ImageRef{},
		Analysis:    in.Analysis,
		Status:      types.StatusDraft,
		GeneratedAt: time.Now().UTC(),
	}

	q := types.Quality{
		SectionsPlanned: len(in.Plan),
		AnalysisMode:    in.Analysis.Mode,
	}
	imageIndex := make(map[string]int)
	body, covered := 0, 0

	for i, section := range in.Plan {
		if i >= len(in.Outcomes) {
			break
		}
		out := in.Outcomes[i]

		if !isAnchor(section) {
			body++
			if out.HasEvidence {
				covered++
			}
		}

		switch out.Kind {
		case synthesize.KindOmitted:
			q.SectionsOmitted++
			continue
		case synthesize.KindGenerated:
			q.SectionsGenerated++
		case synthesize.KindFallback:
			q.SectionsFallback++
		case synthesize.KindUnavailable:
			q.SectionsUnavailable++
		}
		if out.Hedged {
			q.HedgesAdded++
		}
		q.UnknownCitations += out.UnknownCitations

		doc.Order = append(doc.Order, section)
		doc.Sections[section] = out.Text

		for _, img := range out.Images {
			key := imageKey(img)
			if j, ok := imageIndex[key]; ok {
				doc.Images[j].Sections = appendUnique(doc.Images[j].Sections, section)
				continue
			}
			imageIndex[key] = len(doc.Images)
			doc.Images = append(doc.Images, types.ImageRef{
				Path:         img.ImagePath(),
				Caption:      img.Caption(),
				Citation:     img.Citation,
				FigureNumber: img.FigureNumber(),
				Source:       img.Source,
				Draggable:    img.Draggable(),
				Sections:     []string{section},
			})
		}
	}

	q.ImagesAttached = len(doc.Images)
	if body > 0 {
		q.Coverage = float64(covered) / float64(body)
	}

	doc.Metadata = types.DocumentMetadata{
		TotalSources:        in.TotalSources,
		ContentElements:     in.ContentElements,
		KnowledgeGaps:       len(in.Analysis.KnowledgeGaps),
		ContradictionsFound: len(in.Analysis.Contradictions),
		Quality:             q,
	}
	return doc
}

// NoReferenceText is the Introduction note of a NO_REFERENCES document.
func NoReferenceText(topic string) string {
	return fmt.Sprintf("No usable references were provided for %q, so no synthesis was performed. Supply reference material on this topic and run the synthesis again.", strings.TrimSpace(topic))
}

// NoReferences returns the document for a run that extracted no content.
// sources is the number of references that passed validation.
func NoReferences(topic string, sources int) types.SynthesizedDocument {
	return types.SynthesizedDocument{
		Topic:       topic,
		Order:       []string{types.SectionIntroduction},
		Sections:    map[string]string{types.SectionIntroduction: NoReferenceText(topic)},
		Images:      []types.ImageRef{},
		Analysis:    types.EmptyAnalysis(types.AnalysisEmpty),
		Metadata:    types.DocumentMetadata{TotalSources: sources},
		Status:      types.StatusNoReferences,
		GeneratedAt: time.Now().UTC(),
	}
}

// Failed returns the ERROR document carrying err's message.
func Failed(topic string, err error) types.SynthesizedDocument {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return types.SynthesizedDocument{
		Topic:       topic,
		Order:       []string{},
		Sections:    map[string]string{},
		Images:      []types.ImageRef{},
		Analysis:    types.EmptyAnalysis(types.AnalysisEmpty),
		Status:      types.StatusError,
		Error:       msg,
		GeneratedAt: time.Now().UTC(),
	}
}

func isAnchor(section string) bool {
	switch section {
	case types.SectionIntroduction, types.SectionConclusion, types.SectionReferences:
		return true
	}
	return false
}

// imageKey identifies an image by path, or by caption and citation when it has no path.
func imageKey(img types.ContentElement) string {
	if p := img.ImagePath(); p != "" {
		return "path:" + p
	}
	return "caption:" + strings.ToLower(img.Caption()) + "|" + img.Citation
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
