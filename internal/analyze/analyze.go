// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze classifies how the sources of one run relate to each
// other: shared findings, differences, complementary detail,
// contradictions, unique insights, and knowledge gaps.
//
// The primary path asks the generation capability for a JSON analysis of a
// bounded digest. When no backend is bound or the call fails, a
// deterministic shared-term analysis is used instead. Analyze never fails.
package analyze

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/synthesis-engine/internal/oracle"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Analyzer produces a RelationshipAnalysis for a set of elements.
type Analyzer struct {
	gen    oracle.Generator
	cfg    types.SynthesisConfig
	logger *zap.Logger
}

// New returns an Analyzer. A nil generator selects the fallback path; a nil
// logger is replaced by a no-op logger.
func New(gen oracle.Generator, cfg types.SynthesisConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{gen: gen, cfg: cfg.WithDefaults(), logger: logger}
}

// Analyze returns the relationship analysis for elements on topic.
// The returned analysis always has non-nil lists.
func (a *Analyzer) Analyze(ctx context.Context, topic string, elements []types.ContentElement) types.RelationshipAnalysis {
	groups := groupText(elements)
	if !oracle.Available(a.gen) {
		a.logger.Info("generation unavailable, using shared-term analysis", zap.Int("sources", len(groups)))
		return a.fallback(groups)
	}
	if len(groups) == 0 {
		a.logger.Debug("no text elements, analysis is empty")
		return types.EmptyAnalysis(types.AnalysisEmpty)
	}

	prompt, err := renderPrompt(topic, len(groups), buildDigest(groups, a.cfg.DigestSourceChars, a.cfg.DigestTotalChars))
	if err != nil {
		a.logger.Warn("rendering analysis prompt failed", zap.Error(err))
		return a.fallback(groups)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	reply, err := a.gen.Complete(callCtx, prompt)
	if err != nil {
		a.logger.Warn("analysis generation failed, using shared-term analysis",
			zap.Error(err),
			zap.Bool("provider_error", oracle.IsProviderError(err)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return a.fallback(groups)
	}

	analysis, err := parseAnalysis(reply)
	if err != nil {
		a.logger.Warn("analysis response unparsable, continuing with empty analysis", zap.Error(err))
		return types.EmptyAnalysis(types.AnalysisEmpty)
	}
	a.logger.Debug("analysis generated",
		zap.Int("contradictions", len(analysis.Contradictions)),
		zap.Int("knowledge_gaps", len(analysis.KnowledgeGaps)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return analysis
}

func (a *Analyzer) fallback(groups []sourceGroup) types.RelationshipAnalysis {
	out := types.EmptyAnalysis(types.AnalysisFallback)
	out.Similarities = sharedTerms(groups, a.cfg.FallbackTermFactor, a.cfg.FallbackMaxTerms)
	out.Contradictions = numericContradictions(groups)
	out.KnowledgeGaps = []string{DeepAnalysisUnavailableGap}
	return out
}

// sourceGroup is the concatenated TEXT content of one source.
type sourceGroup struct {
	Source   string
	Citation string
	Text     string
}

// groupText groups TEXT elements by source in first-appearance order.
func groupText(elements []types.ContentElement) []sourceGroup {
	index := make(map[string]int)
	var groups []sourceGroup
	for _, e := range elements {
		if e.Type != types.ElementText || e.Content == "" {
			continue
		}
		i, ok := index[e.Source]
		if !ok {
			i = len(groups)
			index[e.Source] = i
			groups = append(groups, sourceGroup{Source: e.Source, Citation: e.Citation})
		}
		if groups[i].Text != "" {
			groups[i].Text += "\n"
		}
		groups[i].Text += e.Content
	}
	return groups
}
