// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine is the public entry point of the synthesis pipeline.
//
// A run moves through EXTRACTING, ANALYZING, PLANNING, SYNTHESIZING, and
// COMPILING before settling in one of the document statuses. Section
// synthesis fans out over a bounded worker group. Synthesize never returns
// an error: every failure, including a panic, becomes an ERROR document.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/synthesis-engine/internal/analyze"
	"github.com/pdiddy/synthesis-engine/internal/compile"
	"github.com/pdiddy/synthesis-engine/internal/extract"
	"github.com/pdiddy/synthesis-engine/internal/oracle"
	"github.com/pdiddy/synthesis-engine/internal/plan"
	"github.com/pdiddy/synthesis-engine/internal/sections"
	"github.com/pdiddy/synthesis-engine/internal/synthesize"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// State is a step of the run state machine.
type State string

const (
	StateStart        State = "START"
	StateExtracting   State = "EXTRACTING"
	StateAnalyzing    State = "ANALYZING"
	StatePlanning     State = "PLANNING"
	StateSynthesizing State = "SYNTHESIZING"
	StateCompiling    State = "COMPILING"
)

// Recorder receives per-run and per-section outcomes. A Recorder that also
// implements oracle.Observer is told about every generation call.
type Recorder interface {
	ObserveRun(status types.DocumentStatus, elapsed time.Duration)
	ObserveSection(outcome string)
}

// Request is the input of one synthesis run.
type Request struct {
	Topic      string
	References []types.Reference

	// FocusAreas float matching sections to the front of the plan.
	FocusAreas []string
}

// ErrNoTopic is reported when a request has a blank topic.
var ErrNoTopic = errors.New("topic is required")

// Engine runs synthesis requests. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	gen      oracle.Generator
	cfg      types.SynthesisConfig
	table    *sections.Table
	logger   *zap.Logger
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine tunables. Zero fields keep their defaults.
func WithConfig(cfg types.SynthesisConfig) Option {
	return func(e *Engine) { e.cfg = cfg.WithDefaults() }
}

// WithSectionTable replaces the built-in section table.
func WithSectionTable(t *sections.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder reports run and section outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New returns an Engine that delegates prose and analysis to gen. A nil gen
// runs in standalone mode.
func New(gen oracle.Generator, opts ...Option) *Engine {
	if gen == nil {
		gen = oracle.Null{}
	}
	e := &Engine{
		gen:    gen,
		cfg:    types.DefaultSynthesisConfig(),
		table:  sections.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if obs, ok := e.recorder.(oracle.Observer); ok {
		e.gen = oracle.Instrument(e.gen, obs)
	}
	return e
}

// Synthesize runs the whole pipeline for req and returns the compiled
// document. The document's Status reports how the run ended.
func (e *Engine) Synthesize(ctx context.Context, req Request) (doc types.SynthesizedDocument) {
	runID := uuid.NewString()
	start := time.Now()
	log := e.logger.With(zap.String("run_id", runID), zap.String("topic", req.Topic))
	log.Info("synthesis started", zap.String("state", string(StateStart)), zap.Int("references", len(req.References)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("synthesis panicked", zap.Any("panic", r), zap.Stack("stack"))
			doc = compile.Failed(req.Topic, fmt.Errorf("synthesis panicked: %v", r))
		}
		doc.RunID = runID
		fields := []zap.Field{
			zap.String("state", string(doc.Status)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("sections", len(doc.Order)),
		}
		if doc.Status == types.StatusError {
			log.Error("synthesis failed", append(fields, zap.String("error", doc.Error))...)
		} else {
			log.Info("synthesis finished", fields...)
		}
		if e.recorder != nil {
			e.recorder.ObserveRun(doc.Status, time.Since(start))
		}
	}()

	out, err := e.run(ctx, log, req)
	if err != nil {
		return compile.Failed(req.Topic, err)
	}
	return out
}

func (e *Engine) run(ctx context.Context, log *zap.Logger, req Request) (types.SynthesizedDocument, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return types.SynthesizedDocument{}, ErrNoTopic
	}

	enter(log, StateExtracting)
	res := extract.Extract(req.References, log)
	if err := ctx.Err(); err != nil {
		return types.SynthesizedDocument{}, fmt.Errorf("extracting: %w", err)
	}
	if len(res.Elements) == 0 {
		log.Warn("no content extracted", zap.Int("skipped", len(res.Errors)))
		return compile.NoReferences(req.Topic, res.ValidSources), nil
	}

	enter(log, StateAnalyzing)
	analysis := analyze.New(e.gen, e.cfg, log).Analyze(ctx, topic, res.Elements)
	if err := ctx.Err(); err != nil {
		return types.SynthesizedDocument{}, fmt.Errorf("analyzing: %w", err)
	}

	enter(log, StatePlanning)
	sectionPlan := plan.New(e.table).Plan(topic, res.Elements, analysis, req.FocusAreas)
	log.Debug("sections planned", zap.Strings("plan", sectionPlan))

	enter(log, StateSynthesizing)
	outcomes := e.synthesizeSections(ctx, log, sectionPlan, res.Elements, analysis, topic)
	if err := ctx.Err(); err != nil {
		return types.SynthesizedDocument{}, fmt.Errorf("synthesizing: %w", err)
	}

	enter(log, StateCompiling)
	return compile.Compile(compile.Input{
		Topic:           req.Topic,
		Plan:            sectionPlan,
		Outcomes:        outcomes,
		Analysis:        analysis,
		TotalSources:    res.ValidSources,
		ContentElements: len(res.Elements),
	}), nil
}

// synthesizeSections writes every planned section concurrently. Each worker
// owns one slot of the result and never returns an error, so one section
// cannot cancel another.
func (e *Engine) synthesizeSections(ctx context.Context, log *zap.Logger, sectionPlan types.SectionPlan, elements []types.ContentElement, analysis types.RelationshipAnalysis, topic string) []synthesize.Outcome {
	live := synthesize.New(e.gen, e.table, e.cfg, log)
	standalone := synthesize.New(oracle.Null{}, e.table, e.cfg, log)

	outcomes := make([]synthesize.Outcome, len(sectionPlan))
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)

	for i, section := range sectionPlan {
		i, section := i, section
		g.Go(func() error {
			out, ok := safeSynthesize(ctx, live, section, elements, analysis, topic, log)
			if !ok {
				out, ok = safeSynthesize(ctx, standalone, section, elements, analysis, topic, log)
			}
			if !ok {
				out = synthesize.Outcome{
					Section: section,
					Kind:    synthesize.KindUnavailable,
					Text:    synthesize.UnavailableText(section),
				}
			}
			outcomes[i] = out
			if e.recorder != nil {
				e.recorder.ObserveSection(string(out.Kind))
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// safeSynthesize runs one section, reporting false if it panicked.
func safeSynthesize(ctx context.Context, s *synthesize.Synthesizer, section string, elements []types.ContentElement, analysis types.RelationshipAnalysis, topic string, log *zap.Logger) (out synthesize.Outcome, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("section synthesis panicked",
				zap.String("section", section),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()
	return s.Synthesize(ctx, section, elements, analysis, topic), true
}

func enter(log *zap.Logger, s State) {
	log.Info("synthesis state", zap.String("state", string(s)))
}
