// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle defines the generation capability the synthesis engine
// delegates prose and analysis to, together with its implementations:
// Null for standalone mode, Claude and OpenAI backends, and wrappers for
// retries, rate limiting, and instrumentation.
//
// Every implementation reports failure as a *ProviderError so callers can
// recover locally with errors.As.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Generator is the text-generation capability: one prompt in, one completion out.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f GeneratorFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrUnavailable is reported when no backend is bound.
var ErrUnavailable = errors.New("no generation backend available")

// ProviderError reports that a generation backend could not serve a call:
// unreachable, rejected, timed out, or out of retries.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is or wraps a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// asProviderError wraps err as a *ProviderError unless it already is one.
func asProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if IsProviderError(err) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// availability is implemented by generators that can report whether a
// live backend stands behind them.
type availability interface {
	Available() bool
}

// Available reports whether gen is bound to a live backend. A nil
// generator and Null are not available; wrappers report their inner generator.
func Available(gen Generator) bool {
	if gen == nil {
		return false
	}
	if a, ok := gen.(availability); ok {
		return a.Available()
	}
	return true
}

// Null is the standalone-mode generator. Every call fails with a
// ProviderError wrapping ErrUnavailable, and Available reports false so
// callers go straight to their deterministic fallbacks.
type Null struct{}

// Complete always fails.
func (Null) Complete(context.Context, string) (string, error) {
	return "", &ProviderError{Provider: "null", Err: ErrUnavailable}
}

// Available reports false.
func (Null) Available() bool { return false }

// Observer receives the outcome of each generation call.
type Observer interface {
	ObserveGeneration(err error, elapsed time.Duration)
}

// instrumented reports each call to an Observer.
type instrumented struct {
	inner Generator
	obs   Observer
}

// Instrument wraps gen so every call is reported to obs. A nil obs returns gen unchanged.
func Instrument(gen Generator, obs Observer) Generator {
	if obs == nil || gen == nil {
		return gen
	}
	return &instrumented{inner: gen, obs: obs}
}

func (g *instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.inner.Complete(ctx, prompt)
	g.obs.ObserveGeneration(err, time.Since(start))
	return out, err
}

func (g *instrumented) Available() bool { return Available(g.inner) }
