//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for synthesis-engine developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "synthesis-engine"
	cmdPkg  = "./cmd/synthesis-engine"

	// buildTags enables the SQLite FTS5 module used by the run store.
	buildTags = "sqlite_fts5"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"refs",
	"output/index",
	".secrets",
}

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-tags", buildTags, "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-tags", buildTags, "./...")
}

// Sample builds the CLI and synthesizes the sample references in standalone mode.
func Sample() error {
	mg.Deps(Init, Build)
	if err := writeSampleReferences(filepath.Join("refs", "sample.yaml")); err != nil {
		return err
	}
	return sh.RunV(filepath.Join(binDir, binName), "synthesize",
		"--topic", "spinal meningioma",
		"--refs", "refs",
		"--provider", "none",
		"--output", filepath.Join("output", "sample.yaml"),
		"--save",
	)
}

const sampleReferences = `- source_title: Spinal meningioma review
  authors: [Smith, Patel]
  year: "2020"
  content: >-
    Spinal meningioma is a slow-growing tumor arising from the arachnoid cap cells.
    The incidence is 5% among adults with primary spinal tumors. Most patients present
    with progressive back pain and weakness.
- source_title: Outcomes after surgical resection
  authors: [Jones]
  year: "2019"
  content: >-
    In this cohort the incidence was 5% overall. Surgical resection through a posterior
    approach achieved durable control, and recurrence was rare at five years.
- source_title: National registry analysis
  authors: [Lee, Kim, Garcia]
  year: "2022"
  content: >-
    Registry data show the incidence is 12% in older patients. MRI imaging confirmed the
    diagnosis in every case, and contrast enhancement was typical.
- source_title: Operative atlas
  images:
    - path: img/approach.png
      caption: Surgical approach diagram
      figure_number: "3"
`

func writeSampleReferences(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(sampleReferences), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prod, tests, err := countGoLines(".")
	if err != nil {
		return err
	}
	words, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)
	fmt.Printf("Words (documentation):           %d\n", words)
	return nil
}

// skipDir reports whether a directory is outside the project sources.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir || name == "output")
}

// countGoLines counts non-blank lines in production and test Go files.
func countGoLines(root string) (prod, tests int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			tests += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, tests, err
}

// countDocWords counts words in top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
