// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synthesis-engine/internal/store"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse runs saved with synthesize --save",
	Long: `History reads the local SQLite run store. Use subcommands to list runs,
show one document, search section prose with FTS5 queries, or export runs.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.List(cmd.Context(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRuns(cmd.OutOrStdout(), runs, jsonOutput)
}

func formatRuns(w io.Writer, runs []store.RunSummary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-30s  %-8s  %-7s  %s\n",
		"Run", "Generated", "Topic", "Sections", "Sources", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range runs {
		topic := r.Topic
		if len(topic) > 30 {
			topic = topic[:27] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-30s  %-8d  %-7d  %s\n",
			r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05"), topic, r.Sections, r.TotalSources, r.Status)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a saved document",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := store.Encode(doc.Output(), types.OutputFormat(format))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over saved section prose",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	hits, err := s.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	for i, h := range hits {
		fmt.Fprintf(w, "%d. %s / %s (run %s)\n   %s\n", i+1, h.Topic, h.Section, h.RunID, h.Snippet)
	}
	fmt.Fprintf(w, "\n%d results\n", len(hits))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved runs to YAML or JSON",
	Long: `Export writes the output documents of all saved runs (or those matching
--topic and --status) to export.yaml or export.json in --dir, which defaults
to the store directory.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("dir")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	path, err := s.Export(cmd.Context(), dir, types.OutputFormat(format), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

// openStore opens the configured run store; --store-dir overrides the configured directory.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := pipelineConfig().Store
	if dir, _ := cmd.Flags().GetString("store-dir"); dir != "" {
		cfg.Dir = dir
	}
	return store.Open(cfg)
}

func listOptsFromFlags(cmd *cobra.Command) store.ListOptions {
	topic, _ := cmd.Flags().GetString("topic")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	return store.ListOptions{
		Topic:      topic,
		Status:     types.DocumentStatus(status),
		MaxResults: limit,
	}
}

func init() {
	historyCmd.PersistentFlags().String("store-dir", "", "directory holding the run database (default output/index)")

	historyListCmd.Flags().String("topic", "", "filter by topic substring")
	historyListCmd.Flags().String("status", "", "filter by status")
	historyListCmd.Flags().Int("limit", 0, "maximum runs (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historyShowCmd.Flags().String("format", string(types.OutputYAML), "output format: yaml or json")

	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")

	historyExportCmd.Flags().String("format", string(types.OutputYAML), "export format: yaml or json")
	historyExportCmd.Flags().String("dir", "", "output directory (default: the store directory)")
	historyExportCmd.Flags().String("topic", "", "filter by topic substring")
	historyExportCmd.Flags().String("status", "", "filter by status")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
