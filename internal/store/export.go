// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const exportLimit = 100000

// Export writes the output form of every run matching opts to
// dir/export.yaml or dir/export.json and returns the file path. An empty
// dir writes next to the database.
func (s *Store) Export(ctx context.Context, dir string, format types.OutputFormat, opts ListOptions) (string, error) {
	if dir == "" {
		dir = s.dir
	}
	if format == "" {
		format = types.OutputYAML
	}
	opts.MaxResults = exportLimit
	runs, err := s.List(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	docs := make([]types.OutputDocument, 0, len(runs))
	for _, r := range runs {
		doc, err := s.Get(ctx, r.RunID)
		if err != nil {
			return "", err
		}
		docs = append(docs, doc.Output())
	}

	data, err := Encode(docs, format)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "export."+string(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Encode serializes v as YAML or indented JSON.
func Encode(v any, format types.OutputFormat) ([]byte, error) {
	switch format {
	case types.OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return append(data, '\n'), nil
	case types.OutputYAML, "":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use yaml or json", format)
	}
}
