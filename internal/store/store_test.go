// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "index"), MaxResults: 10})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc(runID, topic string, at time.Time) types.SynthesizedDocument {
	analysis := types.EmptyAnalysis(types.AnalysisFallback)
	analysis.KnowledgeGaps = []string{"long-term outcomes"}
	return types.SynthesizedDocument{
		RunID: runID,
		Topic: topic,
		Order: []string{types.SectionIntroduction, "Epidemiology", types.SectionReferences},
		Sections: map[string]string{
			types.SectionIntroduction: "Spinal meningioma is a slow-growing tumor. [Smith (2020). Review.]",
			"Epidemiology":            "The incidence is 5% among adults. [Smith (2020). Review.]",
			types.SectionReferences:   "1. Smith (2020). Review.",
		},
		Images: []types.ImageRef{{Path: "a.png", Caption: "Axial MRI", Citation: "Smith (2020). Review.", Sections: []string{"Epidemiology"}}},
		Analysis: analysis,
		Metadata: types.DocumentMetadata{
			TotalSources:    1,
			ContentElements: 2,
			KnowledgeGaps:   1,
			Quality:         types.Quality{SectionsPlanned: 3, SectionsFallback: 2, Coverage: 1, AnalysisMode: types.AnalysisFallback},
		},
		Status:      types.StatusDraft,
		GeneratedAt: at,
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, defaultMaxResults, s2.maxResults)
	assert.FileExists(t, filepath.Join(dir, dbFile))
}

func TestSaveGet_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	doc := sampleDoc("run-1", "spinal meningioma", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, s.Save(ctx, doc))
	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	// Saving again replaces the sections rather than duplicating them.
	doc.Sections["Epidemiology"] = "Updated prose."
	require.NoError(t, s.Save(ctx, doc))
	runs, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Sections)
}

func TestSave_RequiresRunID(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.Save(context.Background(), types.SynthesizedDocument{Topic: "t"}))
}

func TestGet_NotFound(t *testing.T) {
	_, err := testStore(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, sampleDoc("a", "Spinal meningioma", base)))
	require.NoError(t, s.Save(ctx, sampleDoc("b", "Lumbar stenosis", base.Add(time.Hour))))
	failed := types.SynthesizedDocument{RunID: "c", Topic: "spinal cord injury", Status: types.StatusError, Error: "boom", GeneratedAt: base.Add(2 * time.Hour)}
	require.NoError(t, s.Save(ctx, failed))

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].RunID, all[1].RunID, all[2].RunID})
	assert.Equal(t, "boom", all[0].Error)
	assert.Equal(t, base.Add(time.Hour), all[1].GeneratedAt)

	spinal, err := s.List(ctx, ListOptions{Topic: "SPINAL"})
	require.NoError(t, err)
	assert.Len(t, spinal, 2)

	drafts, err := s.List(ctx, ListOptions{Status: types.StatusDraft, MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "b", drafts[0].RunID)
	assert.Equal(t, 1, drafts[0].TotalSources)
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleDoc("a", "spinal meningioma", time.Now().UTC())))

	hits, err := s.Search(ctx, "incidence", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Epidemiology", hits[0].Section)
	assert.Equal(t, "spinal meningioma", hits[0].Topic)
	assert.Contains(t, hits[0].Snippet, "[incidence]")

	none, err := s.Search(ctx, "glioblastoma", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.Search(ctx, "  ", 0)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleDoc("a", "spinal meningioma", time.Now().UTC())))
	out := t.TempDir()

	path, err := s.Export(ctx, out, types.OutputJSON, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "export.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var docs []types.OutputDocument
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 1)
	assert.True(t, docs[0].ReadyForEnrichment)

	path, err = s.Export(ctx, out, "", ListOptions{})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var yamlDocs []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &yamlDocs))
	require.Len(t, yamlDocs, 1)
	assert.Equal(t, "a", yamlDocs[0]["run_id"])
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, err := Encode(struct{}{}, "xml")
	assert.Error(t, err)
}
