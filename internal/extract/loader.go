// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// LoadSummary tracks the outcome of loading a reference directory.
type LoadSummary struct {
	Files      int
	References int
	Failed     int
}

// referenceExts lists the file extensions LoadDir reads.
var referenceExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// LoadDir reads every reference file in dir in lexical order. Each file
// holds a single reference mapping or a list of them; JSON files are read
// with the same YAML decoder. Undecodable files are reported on w and
// skipped.
func LoadDir(dir string, w io.Writer) ([]types.Reference, LoadSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, LoadSummary{}, fmt.Errorf("reading reference directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !referenceExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var refs []types.Reference
	var summary LoadSummary
	for _, name := range names {
		summary.Files++
		loaded, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "loaded:  %s (%d references)\n", name, len(loaded))
		refs = append(refs, loaded...)
		summary.References += len(loaded)
	}

	fmt.Fprintf(w, "\nLoad summary: %d references from %d files, %d failed\n",
		summary.References, summary.Files, summary.Failed)
	return refs, summary, nil
}

// LoadFile decodes one reference file.
func LoadFile(path string) ([]types.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses YAML or JSON holding one reference or a list of references.
func Decode(data []byte) ([]types.Reference, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var refs []types.Reference
		if err := root.Decode(&refs); err != nil {
			return nil, fmt.Errorf("decoding reference list: %w", err)
		}
		return refs, nil
	case yaml.MappingNode:
		var ref types.Reference
		if err := root.Decode(&ref); err != nil {
			return nil, fmt.Errorf("decoding reference: %w", err)
		}
		return []types.Reference{ref}, nil
	default:
		return nil, fmt.Errorf("expected a reference mapping or list, got %s", nodeKind(root.Kind))
	}
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "unknown node"
}
