// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synthesis-engine/internal/sections"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Print the section table as YAML",
	Long: `Sections prints the built-in section table: the canonical template,
section keywords, topic exclusions, and thresholds. Redirect the output to a
file, edit it, and pass it back with --sections-file to tune planning.

With --validate, the given file is loaded and checked instead.`,
	RunE: runSections,
}

func init() {
	sectionsCmd.Flags().String("validate", "", "validate a section table file and print it")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("validate")

	table := sections.Default()
	if path != "" {
		var err error
		if table, err = sections.LoadFile(path); err != nil {
			return err
		}
	}

	data, err := table.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling section table: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
