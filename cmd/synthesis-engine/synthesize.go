// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/synthesis-engine/internal/engine"
	"github.com/pdiddy/synthesis-engine/internal/extract"
	"github.com/pdiddy/synthesis-engine/internal/metrics"
	"github.com/pdiddy/synthesis-engine/internal/oracle"
	"github.com/pdiddy/synthesis-engine/internal/sections"
	"github.com/pdiddy/synthesis-engine/internal/store"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize [reference files...]",
	Short: "Synthesize a composite document from reference records",
	Long: `Synthesize loads reference records (YAML or JSON) from --refs and any
files given as arguments, runs the synthesis pipeline on --topic, and writes
the resulting document to --output (stdout by default).

The document is written even when the run ends in NO_REFERENCES or ERROR;
an ERROR run also makes the command exit non-zero.`,
	RunE: runSynthesize,
}

func init() {
	f := synthesizeCmd.Flags()
	f.String("topic", "", "topic of the composite document (required)")
	f.String("refs", "", "directory of reference files")
	f.StringSlice("focus", nil, "focus areas that move matching sections to the front")
	f.String("format", string(types.OutputYAML), "output format: yaml or json")
	f.StringP("output", "o", "", "output file (default stdout)")
	f.Bool("save", false, "save the document to the run store")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	f.String("provider", "", "generation provider: none, claude, or openai")
	f.String("model", "", "generation model identifier")
	f.Int("workers", 0, "concurrent section workers (default 4)")
	f.Duration("timeout", 0, "timeout for each generation call (default 90s)")
	f.String("sections-file", "", "YAML section table overriding the built-in one")
	f.String("store-dir", "", "directory holding the run database (default output/index)")

	_ = viper.BindPFlag(keyProvider, f.Lookup("provider"))
	_ = viper.BindPFlag(keyModel, f.Lookup("model"))
	_ = viper.BindPFlag(keyWorkers, f.Lookup("workers"))
	_ = viper.BindPFlag(keyCallTimeout, f.Lookup("timeout"))
	_ = viper.BindPFlag(keySectionsFile, f.Lookup("sections-file"))
	_ = viper.BindPFlag(keyStoreDir, f.Lookup("store-dir"))

	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" {
		return fmt.Errorf("--topic is required")
	}
	refsDir, _ := cmd.Flags().GetString("refs")
	if refsDir == "" && len(args) == 0 {
		return fmt.Errorf("provide reference files or a --refs directory")
	}
	focus, _ := cmd.Flags().GetStringSlice("focus")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	refs, err := loadReferences(cmd, refsDir, args)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	gen, err := oracle.New(cfg.Generation, &http.Client{})
	if err != nil {
		return err
	}

	table := sections.Default()
	if cfg.Synthesis.SectionsFile != "" {
		if table, err = sections.LoadFile(cfg.Synthesis.SectionsFile); err != nil {
			return err
		}
	}

	rec := metrics.New()
	eng := engine.New(gen,
		engine.WithConfig(cfg.Synthesis),
		engine.WithSectionTable(table),
		engine.WithLogger(logger),
		engine.WithRecorder(rec),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	doc := eng.Synthesize(ctx, engine.Request{Topic: topic, References: refs, FocusAreas: focus})

	data, err := store.Encode(doc.Output(), types.OutputFormat(format))
	if err != nil {
		return err
	}
	if output == "" || output == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	if save {
		if err := saveRun(ctx, cfg.Store, doc); err != nil {
			return err
		}
	}
	if metricsFile != "" {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	q := doc.Metadata.Quality
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s: %d sections (%d generated, %d fallback, %d unavailable, %d omitted), run %s\n",
		doc.Status, len(doc.Order), q.SectionsGenerated, q.SectionsFallback, q.SectionsUnavailable, q.SectionsOmitted, doc.RunID)

	if doc.Status == types.StatusError {
		return fmt.Errorf("synthesis failed: %s", doc.Error)
	}
	return nil
}

// loadReferences reads the --refs directory and any listed files. Load
// progress goes to stderr.
func loadReferences(cmd *cobra.Command, dir string, files []string) ([]types.Reference, error) {
	var refs []types.Reference
	if dir != "" {
		loaded, _, err := extract.LoadDir(dir, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		refs = append(refs, loaded...)
	}
	for _, path := range files {
		loaded, err := extract.LoadFile(path)
		if err != nil {
			return nil, err
		}
		refs = append(refs, loaded...)
	}
	return refs, nil
}

func saveRun(ctx context.Context, cfg types.StoreConfig, doc types.SynthesizedDocument) error {
	s, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Save(context.WithoutCancel(ctx), doc); err != nil {
		return err
	}
	logger.Info("run saved", zap.String("run_id", doc.RunID), zap.String("store", cfg.Dir))
	return nil
}
