// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AnthropicAPIKey, "  sk-ant-abc  \n")
				writeFile(t, dir, OpenAIAPIKey, "sk-xyz")
				return dir
			},
			want: map[string]string{
				AnthropicAPIKey: "sk-ant-abc",
				OpenAIAPIKey:    "sk-xyz",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles, and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AnthropicAPIKey, "valid-key")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{AnthropicAPIKey: "valid-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIKey(t *testing.T) {
	loaded := map[string]string{AnthropicAPIKey: "ant", OpenAIAPIKey: "oai"}

	assert.Equal(t, "ant", APIKey(loaded, types.ProviderClaude, ""))
	assert.Equal(t, "oai", APIKey(loaded, types.ProviderOpenAI, ""))
	assert.Equal(t, "flag", APIKey(loaded, types.ProviderOpenAI, "flag"))
	assert.Empty(t, APIKey(loaded, types.ProviderNone, ""))
	assert.Empty(t, APIKey(nil, types.ProviderClaude, ""))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
