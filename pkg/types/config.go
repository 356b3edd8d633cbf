// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// GenerationProvider selects the generation capability backend.
type GenerationProvider string

const (
	ProviderNone   GenerationProvider = "none"
	ProviderClaude GenerationProvider = "claude"
	ProviderOpenAI GenerationProvider = "openai"
)

// AIConfig holds shared settings for calls to a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: none (standalone), claude, or openai.
	Provider GenerationProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens caps the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// RequestsPerSecond limits the call rate. Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// SynthesisConfig holds the engine's tunables.
type SynthesisConfig struct {
	// Workers bounds concurrent section synthesis (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// CallTimeout bounds each generation call (default 90s).
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`

	// MaxEvidence caps the text evidence items per section (default 12).
	MaxEvidence int `json:"max_evidence" yaml:"max_evidence"`

	// ExcerptChars caps each evidence excerpt in a prompt (default 1500).
	ExcerptChars int `json:"excerpt_chars" yaml:"excerpt_chars"`

	// DigestSourceChars caps each source's excerpt in the analysis digest (default 1200).
	DigestSourceChars int `json:"digest_source_chars" yaml:"digest_source_chars"`

	// DigestTotalChars caps the whole analysis digest (default 12000).
	DigestTotalChars int `json:"digest_total_chars" yaml:"digest_total_chars"`

	// FallbackSentences caps sentences per source in fallback prose (default 3).
	FallbackSentences int `json:"fallback_sentences" yaml:"fallback_sentences"`

	// FallbackTermFactor scales the shared-term threshold by source count (default 1.5).
	FallbackTermFactor float64 `json:"fallback_term_factor" yaml:"fallback_term_factor"`

	// FallbackMaxTerms caps the similarities emitted by the fallback analysis (default 10).
	FallbackMaxTerms int `json:"fallback_max_terms" yaml:"fallback_max_terms"`

	// SectionsFile is an optional YAML section table overriding the built-in one.
	SectionsFile string `json:"sections_file,omitempty" yaml:"sections_file,omitempty"`
}

// DefaultSynthesisConfig returns the engine defaults.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Workers:            4,
		CallTimeout:        90 * time.Second,
		MaxEvidence:        12,
		ExcerptChars:       1500,
		DigestSourceChars:  1200,
		DigestTotalChars:   12000,
		FallbackSentences:  3,
		FallbackTermFactor: 1.5,
		FallbackMaxTerms:   10,
	}
}

// WithDefaults fills zero fields from DefaultSynthesisConfig.
func (c SynthesisConfig) WithDefaults() SynthesisConfig {
	d := DefaultSynthesisConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	if c.MaxEvidence <= 0 {
		c.MaxEvidence = d.MaxEvidence
	}
	if c.ExcerptChars <= 0 {
		c.ExcerptChars = d.ExcerptChars
	}
	if c.DigestSourceChars <= 0 {
		c.DigestSourceChars = d.DigestSourceChars
	}
	if c.DigestTotalChars <= 0 {
		c.DigestTotalChars = d.DigestTotalChars
	}
	if c.FallbackSentences <= 0 {
		c.FallbackSentences = d.FallbackSentences
	}
	if c.FallbackTermFactor <= 0 {
		c.FallbackTermFactor = d.FallbackTermFactor
	}
	if c.FallbackMaxTerms <= 0 {
		c.FallbackMaxTerms = d.FallbackMaxTerms
	}
	return c
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// Dir is the directory containing the SQLite database (default "output/index").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// OutputFormat selects the document serialization.
type OutputFormat string

const (
	OutputYAML OutputFormat = "yaml"
	OutputJSON OutputFormat = "json"
)

// PipelineConfig groups all configuration for the CLI.
type PipelineConfig struct {
	Generation AIConfig        `json:"generation" yaml:"generation"`
	Synthesis  SynthesisConfig `json:"synthesis" yaml:"synthesis"`
	Store      StoreConfig     `json:"store" yaml:"store"`
}
