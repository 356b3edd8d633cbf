// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/synthesis-engine/internal/secrets"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Config keys shared by the config file, SYNTHESIS_ENGINE_* environment
// variables, and bound flags.
const (
	keyProvider      = "generation.provider"
	keyModel         = "generation.model"
	keyAPIKey        = "generation.api_key"
	keyBaseURL       = "generation.base_url"
	keyMaxRetries    = "generation.max_retries"
	keyMaxTokens     = "generation.max_tokens"
	keyRPS           = "generation.requests_per_second"
	keyWorkers       = "synthesis.workers"
	keyCallTimeout   = "synthesis.call_timeout"
	keyMaxEvidence   = "synthesis.max_evidence"
	keyExcerptChars  = "synthesis.excerpt_chars"
	keyDigestSource  = "synthesis.digest_source_chars"
	keyDigestTotal   = "synthesis.digest_total_chars"
	keyFallbackSent  = "synthesis.fallback_sentences"
	keyTermFactor    = "synthesis.fallback_term_factor"
	keyMaxTerms      = "synthesis.fallback_max_terms"
	keySectionsFile  = "synthesis.sections_file"
	keyStoreDir      = "store.dir"
	keyStoreMaxItems = "store.max_results"
)

func setConfigDefaults() {
	d := types.DefaultSynthesisConfig()
	viper.SetDefault(keyProvider, string(types.ProviderNone))
	viper.SetDefault(keyMaxRetries, 3)
	viper.SetDefault(keyMaxTokens, 4096)
	viper.SetDefault(keyWorkers, d.Workers)
	viper.SetDefault(keyCallTimeout, d.CallTimeout)
	viper.SetDefault(keyMaxEvidence, d.MaxEvidence)
	viper.SetDefault(keyExcerptChars, d.ExcerptChars)
	viper.SetDefault(keyDigestSource, d.DigestSourceChars)
	viper.SetDefault(keyDigestTotal, d.DigestTotalChars)
	viper.SetDefault(keyFallbackSent, d.FallbackSentences)
	viper.SetDefault(keyTermFactor, d.FallbackTermFactor)
	viper.SetDefault(keyMaxTerms, d.FallbackMaxTerms)
	viper.SetDefault(keyStoreDir, "output/index")
	viper.SetDefault(keyStoreMaxItems, 20)
}

// pipelineConfig assembles the configuration from viper. The generation API
// key falls back to the provider's secret file.
func pipelineConfig() types.PipelineConfig {
	provider := types.GenerationProvider(viper.GetString(keyProvider))
	return types.PipelineConfig{
		Generation: types.AIConfig{
			Provider:          provider,
			Model:             viper.GetString(keyModel),
			APIKey:            secrets.APIKey(loadedSecrets, provider, viper.GetString(keyAPIKey)),
			BaseURL:           viper.GetString(keyBaseURL),
			MaxRetries:        viper.GetInt(keyMaxRetries),
			MaxTokens:         viper.GetInt(keyMaxTokens),
			RequestsPerSecond: viper.GetFloat64(keyRPS),
		},
		Synthesis: types.SynthesisConfig{
			Workers:            viper.GetInt(keyWorkers),
			CallTimeout:        viper.GetDuration(keyCallTimeout),
			MaxEvidence:        viper.GetInt(keyMaxEvidence),
			ExcerptChars:       viper.GetInt(keyExcerptChars),
			DigestSourceChars:  viper.GetInt(keyDigestSource),
			DigestTotalChars:   viper.GetInt(keyDigestTotal),
			FallbackSentences:  viper.GetInt(keyFallbackSent),
			FallbackTermFactor: viper.GetFloat64(keyTermFactor),
			FallbackMaxTerms:   viper.GetInt(keyMaxTerms),
			SectionsFile:       viper.GetString(keySectionsFile),
		}.WithDefaults(),
		Store: types.StoreConfig{
			Dir:        viper.GetString(keyStoreDir),
			MaxResults: viper.GetInt(keyStoreMaxItems),
		},
	}
}
