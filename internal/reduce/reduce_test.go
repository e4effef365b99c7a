// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sloany/internal/spectra"
	"github.com/pdiddy/sloany/pkg/types"
)

// writeSpecFile drops a small synthetic spectrum into dir.
func writeSpecFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := specFITS([]float32{1.5, -2.25, 0.5}, []float32{3.0, 3.5, 4.0})
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReduceFile(t *testing.T) {
	dir := t.TempDir()
	fits := writeSpecFile(t, dir, "spec-4724-55742-0734.fits")
	out := filepath.Join(dir, "J160513.11+265855.7")

	var buf bytes.Buffer
	require.NoError(t, ReduceFile(fits, out, &buf))

	assert.Contains(t, buf.String(), "reducing: spec-4724-55742-0734.fits -> J160513.11+265855.7")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "3\n"), "flux table should open with the point count")
}

func TestReduceFile_BadInput(t *testing.T) {
	dir := t.TempDir()
	fits := filepath.Join(dir, "garbage.fits")
	require.NoError(t, os.WriteFile(fits, []byte("not a spectrum"), 0o644))
	out := filepath.Join(dir, "J0000+0000")

	err := ReduceFile(fits, out, &bytes.Buffer{})
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.Error(t, statErr, "no flux table should appear for a bad input")
}

func TestReduceBatch_EndToEnd(t *testing.T) {
	fitsDir := t.TempDir()
	writeSpecFile(t, fitsDir, "spec-4724-55742-0734.fits")
	writeSpecFile(t, fitsDir, "spec-4077-55361-0709.fits")

	entries := []spectra.MetadataEntry{
		{SpecFile: "spec-4724-55742-0734.fits", LongName: "J160513.11+265855.7", ShortName: "J1605+2658"},
		{SpecFile: "spec-4077-55361-0709.fits", LongName: "J211724.41+044402.0", ShortName: "J2117+0444"},
	}
	tasks := TasksFromMetadata(entries, fitsDir)
	require.Equal(t, filepath.Join(fitsDir, "spec-4724-55742-0734.fits"), tasks[0].FITSPath)
	require.Equal(t, "J160513.11+265855.7", tasks[0].OutName)

	dest := t.TempDir()
	var out bytes.Buffer
	summary, err := ReduceBatch(context.Background(), tasks, types.ReduceConfig{DestDir: dest}, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Reduced: 2}, summary)
	assert.Contains(t, out.String(), "2 of 2 spectra reduced")

	for _, e := range entries {
		_, err := os.Stat(filepath.Join(dest, e.LongName))
		assert.NoError(t, err, e.LongName)
	}
}

func TestReduceBatch_SkipsExisting(t *testing.T) {
	fitsDir := t.TempDir()
	writeSpecFile(t, fitsDir, "spec-4724-55742-0734.fits")
	writeSpecFile(t, fitsDir, "spec-4077-55361-0709.fits")
	tasks := []Task{
		{FITSPath: filepath.Join(fitsDir, "spec-4724-55742-0734.fits"), OutName: "J160513.11+265855.7"},
		{FITSPath: filepath.Join(fitsDir, "spec-4077-55361-0709.fits"), OutName: "J211724.41+044402.0"},
	}

	dest := t.TempDir()
	existing := filepath.Join(dest, "J160513.11+265855.7")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	var gotPrompt spectra.Prompt
	confirm := func(p spectra.Prompt) spectra.Answer {
		gotPrompt = p
		return spectra.FetchMissing
	}

	var out bytes.Buffer
	summary, err := ReduceBatch(context.Background(), tasks, types.ReduceConfig{DestDir: dest}, confirm, &out)
	require.NoError(t, err)

	assert.True(t, gotPrompt.Existing["J160513.11+265855.7"])
	assert.Equal(t, BatchResult{Reduced: 1, Skipped: 1}, summary)
	assert.Contains(t, out.String(), "skipped: J160513.11+265855.7 (already exists)")
	assert.Contains(t, out.String(), "1 of 2 spectra reduced (skipped 1, not found 0, failed 0)")

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestReduceBatch_MissingInput(t *testing.T) {
	tasks := []Task{
		{FITSPath: filepath.Join(t.TempDir(), "spec-4446-55589-0190.fits"), OutName: "J0824+3142"},
	}

	var out bytes.Buffer
	summary, err := ReduceBatch(context.Background(), tasks, types.ReduceConfig{DestDir: t.TempDir()}, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{NotFound: 1}, summary)
	assert.Contains(t, out.String(), "not found: spec-4446-55589-0190.fits")
	assert.Contains(t, out.String(), "0 of 1 spectra reduced (skipped 0, not found 1, failed 0)")
}

func TestReduceBatch_AnswerNone(t *testing.T) {
	fitsDir := t.TempDir()
	fits := writeSpecFile(t, fitsDir, "spec-4724-55742-0734.fits")
	tasks := []Task{{FITSPath: fits, OutName: "J160513.11+265855.7"}}

	dest := t.TempDir()
	summary, err := ReduceBatch(context.Background(), tasks, types.ReduceConfig{DestDir: dest},
		spectra.ConfirmAlways(spectra.FetchNone), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, BatchResult{}, summary)
	_, statErr := os.Stat(filepath.Join(dest, "J160513.11+265855.7"))
	assert.Error(t, statErr)
}

func TestReduceBatch_ReportsFailure(t *testing.T) {
	fitsDir := t.TempDir()
	bad := filepath.Join(fitsDir, "spec-4711-55737-0262.fits")
	require.NoError(t, os.WriteFile(bad, []byte("truncated junk"), 0o644))
	tasks := []Task{{FITSPath: bad, OutName: "J140419.45+381813.3"}}

	var out bytes.Buffer
	summary, err := ReduceBatch(context.Background(), tasks, types.ReduceConfig{DestDir: t.TempDir()}, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.Contains(t, out.String(), "failed: J140419.45+381813.3")
}
