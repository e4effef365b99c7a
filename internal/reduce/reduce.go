// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reduce converts SDSS spec-lite FITS files into the plain-text
// flux tables downstream line detection reads.
package reduce

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/sloany/internal/spectra"
	"github.com/pdiddy/sloany/pkg/types"
)

// Task names one spectrum file to reduce and the flux table it produces.
// Output names come from the metadata listing: the long-form object name.
type Task struct {
	FITSPath string
	OutName  string
}

// TasksFromMetadata pairs each metadata entry with its spectrum file
// under fitsDir.
func TasksFromMetadata(entries []spectra.MetadataEntry, fitsDir string) []Task {
	tasks := make([]Task, len(entries))
	for i, e := range entries {
		tasks[i] = Task{
			FITSPath: filepath.Join(fitsDir, e.SpecFile),
			OutName:  e.LongName,
		}
	}
	return tasks
}

// BatchResult holds the outcome of a batch reduction run.
type BatchResult struct {
	Reduced  int
	Skipped  int
	NotFound int
	Failed   int
}

// Total returns the number of tasks processed.
func (r BatchResult) Total() int {
	return r.Reduced + r.Skipped + r.NotFound + r.Failed
}

// HasFailures reports whether any task failed outright.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// ReduceFile converts one spectrum, writing the flux table to outPath.
func ReduceFile(fitsPath, outPath string, w io.Writer) error {
	fmt.Fprintf(w, "reducing: %s -> %s\n", filepath.Base(fitsPath), filepath.Base(outPath))

	f, err := os.Open(fitsPath)
	if err != nil {
		return fmt.Errorf("opening spectrum: %w", err)
	}
	defer f.Close()

	spec, err := ReadSpectrum(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(fitsPath), err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating flux table: %w", err)
	}
	if err := WriteFluxTable(out, spec); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReduceBatch converts the given spectra in order, writing flux tables
// into cfg.DestDir. Existing outputs are skipped or redone per the
// confirmation answer, exactly as batch fetching treats existing
// spectra. Missing input files are reported and counted but do not stop
// the batch.
func ReduceBatch(ctx context.Context, tasks []Task, cfg types.ReduceConfig, confirm spectra.ConfirmFunc, w io.Writer) (BatchResult, error) {
	dest := cfg.DestDir
	if dest == "" {
		dest = "."
	}

	prompt := spectra.Prompt{Existing: make(map[string]bool)}
	for _, t := range tasks {
		prompt.Files = append(prompt.Files, t.OutName)
		if _, err := os.Stat(filepath.Join(dest, t.OutName)); err == nil {
			prompt.Existing[t.OutName] = true
		}
	}

	answer := spectra.FetchMissing
	if confirm != nil {
		answer = confirm(prompt)
	}
	if answer == spectra.FetchNone {
		return BatchResult{}, nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating destination directory: %w", err)
	}

	var summary BatchResult
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if answer == spectra.FetchMissing && prompt.Existing[t.OutName] {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", t.OutName)
			summary.Skipped++
			continue
		}

		if _, err := os.Stat(t.FITSPath); err != nil {
			fmt.Fprintf(w, "not found: %s\n", filepath.Base(t.FITSPath))
			summary.NotFound++
			continue
		}

		if err := ReduceFile(t.FITSPath, filepath.Join(dest, t.OutName), w); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", t.OutName, err)
			summary.Failed++
			continue
		}
		summary.Reduced++
	}

	fmt.Fprintf(w, "\n%d of %d spectra reduced", summary.Reduced, summary.Total())
	if summary.Skipped > 0 || summary.NotFound > 0 || summary.Failed > 0 {
		fmt.Fprintf(w, " (skipped %d, not found %d, failed %d)",
			summary.Skipped, summary.NotFound, summary.Failed)
	}
	fmt.Fprintln(w)
	return summary, nil
}
