// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesize writes the prose of one section from its aggregated
// evidence.
//
// Prose comes from the generation capability when one is bound and answers,
// and from a deterministic extractive writer otherwise. Either way the text
// is post-processed the same way: an echoed heading is trimmed, unreferenced
// images are listed, and a hedge note is appended when the sources disagree
// on the section's subject. A section with no evidence is either omitted or
// rendered as the standard unavailability sentence.
package synthesize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/synthesis-engine/internal/evidence"
	"github.com/pdiddy/synthesis-engine/internal/oracle"
	"github.com/pdiddy/synthesis-engine/internal/sections"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Kind classifies how a section's text was produced.
type Kind string

const (
	// KindGenerated means the generation capability wrote the prose.
	KindGenerated Kind = "generated"

	// KindFallback means the deterministic writer produced the prose.
	KindFallback Kind = "fallback"

	// KindUnavailable means the text is the unavailability sentence,
	// possibly followed by matched images.
	KindUnavailable Kind = "unavailable"

	// KindOmitted means the section has no evidence and is left out.
	KindOmitted Kind = "omitted"

	// KindReferences means the text is the deterministic reference list.
	KindReferences Kind = "references"
)

// Outcome is the result of synthesizing one section.
type Outcome struct {
	Section string
	Text    string
	Kind    Kind

	// Images are the image elements matched to the section.
	Images []types.ContentElement

	// HasEvidence reports whether TEXT evidence matched the section keywords.
	HasEvidence bool

	// Hedged reports whether a disagreement note was appended.
	Hedged bool

	// UnknownCitations counts inline citations that match no evidence citation.
	UnknownCitations int

	// Err is the generation failure that forced the fallback, if any.
	Err error
}

// UnavailableText is the standard sentence used for a section without evidence.
func UnavailableText(section string) string {
	return fmt.Sprintf("Information on %s is not available in the provided references.", section)
}

// Synthesizer writes section prose.
type Synthesizer struct {
	gen    oracle.Generator
	table  *sections.Table
	agg    *evidence.Aggregator
	cfg    types.SynthesisConfig
	logger *zap.Logger
}

// New returns a Synthesizer. A nil generator or table selects standalone
// mode or sections.Default() respectively.
func New(gen oracle.Generator, table *sections.Table, cfg types.SynthesisConfig, logger *zap.Logger) *Synthesizer {
	if table == nil {
		table = sections.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()
	return &Synthesizer{
		gen:    gen,
		table:  table,
		agg:    evidence.New(table, cfg.MaxEvidence),
		cfg:    cfg,
		logger: logger,
	}
}

// Synthesize produces the outcome for one planned section.
func (s *Synthesizer) Synthesize(ctx context.Context, section string, elements []types.ContentElement, analysis types.RelationshipAnalysis, topic string) Outcome {
	if section == types.SectionReferences {
		return s.references(elements)
	}

	ev := s.agg.Aggregate(section, elements, analysis)
	out := Outcome{Section: section, Images: ev.Images, HasEvidence: ev.HasText()}

	if !ev.HasText() {
		if section != types.SectionIntroduction && section != types.SectionConclusion {
			if len(ev.Images) == 0 {
				out.Kind = KindOmitted
				return out
			}
			out.Kind = KindUnavailable
			out.Text = UnavailableText(section) + "\n\n" + imageBlock(ev.Images)
			return out
		}
		ev.Items = evidence.FirstPerSource(elements)
		if len(ev.Items) == 0 {
			out.Kind = KindUnavailable
			out.Text = UnavailableText(section)
			if len(ev.Images) > 0 {
				out.Text += "\n\n" + imageBlock(ev.Images)
			}
			return out
		}
	}

	contradictions := s.relevantContradictions(section, analysis)
	keywords := s.agg.Keywords(section, analysis)

	text, err := s.generate(ctx, section, topic, ev, contradictions)
	if err == nil {
		text = trimHeading(text, section)
	}
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			err = errEmptyGeneration
		}
		out.Err = err
		out.Kind = KindFallback
		text = fallbackProse(section, ev, keywords, contradictions, s.cfg.FallbackSentences)
	} else {
		out.Kind = KindGenerated
	}

	if strings.TrimSpace(text) == "" {
		out.Kind = KindUnavailable
		text = UnavailableText(section)
	}
	if pending := unreferencedImages(text, ev.Images); len(pending) > 0 {
		text += "\n\n" + imageBlock(pending)
	}
	if pending := unacknowledged(text, contradictions); len(pending) > 0 {
		text += "\n\n" + hedgeNote(pending)
		out.Hedged = true
	}

	out.Text = strings.TrimSpace(text)
	out.UnknownCitations = countUnknownCitations(out.Text, ev.Citations())

	s.logger.Debug("section synthesized",
		zap.String("section", section),
		zap.String("kind", string(out.Kind)),
		zap.Int("evidence", len(ev.Items)),
		zap.Int("images", len(ev.Images)),
		zap.Bool("hedged", out.Hedged),
	)
	return out
}

var errEmptyGeneration = errors.New("generator returned no text")

// generate asks the generator for prose. A missing backend returns
// oracle.ErrUnavailable so the caller takes the fallback.
func (s *Synthesizer) generate(ctx context.Context, section, topic string, ev types.AggregatedEvidence, contradictions []types.Relationship) (string, error) {
	if !oracle.Available(s.gen) {
		return "", oracle.ErrUnavailable
	}

	prompt, err := renderPrompt(section, topic, ev, contradictions, s.cfg.ExcerptChars)
	if err != nil {
		return "", fmt.Errorf("rendering section prompt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Complete(callCtx, prompt)
	if err != nil {
		s.logger.Warn("section generation failed, using extractive fallback",
			zap.String("section", section),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return "", err
	}
	return text, nil
}

// relevantContradictions returns up to MaxSectionContradictions contradiction
// entries that concern the section. Every contradiction concerns the
// Controversial Aspects section.
func (s *Synthesizer) relevantContradictions(section string, analysis types.RelationshipAnalysis) []types.Relationship {
	limit := s.table.MaxSectionContradictions
	if limit <= 0 {
		limit = len(analysis.Contradictions)
	}

	var out []types.Relationship
	for _, c := range analysis.Contradictions {
		if len(out) >= limit {
			break
		}
		if section == types.SectionControversy || concerns(c, section, s.table.Keywords(section)) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Synthesizer) references(elements []types.ContentElement) Outcome {
	out := Outcome{Section: types.SectionReferences, Kind: KindReferences}
	out.Text = renderReferences(elements)
	if out.Text == "" {
		out.Kind = KindUnavailable
		out.Text = UnavailableText(types.SectionReferences)
	}
	return out
}

// renderReferences lists every distinct citation in first-appearance order.
func renderReferences(elements []types.ContentElement) string {
	seen := make(map[string]bool)
	var b strings.Builder
	n := 0
	for _, e := range elements {
		c := strings.TrimSpace(e.Citation)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, c)
	}
	return strings.TrimSpace(b.String())
}
