// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads generation API keys from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed file contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Key file names.
const (
	AnthropicAPIKey = "anthropic-api-key"
	OpenAIAPIKey    = "openai-api-key"
)

// DefaultDir is the secrets directory the CLI reads.
const DefaultDir = ".secrets/"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// KeyName returns the secret file holding the API key for provider, or ""
// when the provider needs none.
func KeyName(provider types.GenerationProvider) string {
	switch provider {
	case types.ProviderClaude:
		return AnthropicAPIKey
	case types.ProviderOpenAI:
		return OpenAIAPIKey
	}
	return ""
}

// APIKey returns explicit when set, otherwise the provider's key from loaded.
func APIKey(loaded map[string]string, provider types.GenerationProvider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if name := KeyName(provider); name != "" {
		return loaded[name]
	}
	return ""
}
