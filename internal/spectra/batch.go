// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spectra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/sloany/pkg/types"
)

// Answer is the user's decision for a batch whose outputs partly exist.
type Answer int

const (
	// FetchMissing processes only files not already present (the default).
	FetchMissing Answer = iota
	// FetchAll processes every file, overwriting existing ones.
	FetchAll
	// FetchNone aborts the batch.
	FetchNone
)

// Prompt carries what a confirmation needs to render: each candidate file
// name, in batch order, and which of them already exist.
type Prompt struct {
	Files    []string
	Existing map[string]bool
}

// HasExisting reports whether any file is already present.
func (p Prompt) HasExisting() bool { return len(p.Existing) > 0 }

// ConfirmFunc decides what a batch should do. The CLI wires this to an
// interactive prompt; tests supply constants. A nil ConfirmFunc means
// FetchMissing.
type ConfirmFunc func(Prompt) Answer

// ConfirmAlways returns a ConfirmFunc with a fixed answer.
func ConfirmAlways(a Answer) ConfirmFunc {
	return func(Prompt) Answer { return a }
}

// FailedFetchesFile collects the names that could not be retrieved, one
// per line, appended across runs.
const FailedFetchesFile = "Failed_Fetches"

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched  int
	Skipped  int
	NotFound int
	Failed   int
}

// Total returns the number of rows processed.
func (r BatchResult) Total() int { return r.Fetched + r.Skipped + r.NotFound + r.Failed }

// HasFailures reports whether any row failed outright.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// FetchBatch fetches the spectrum for every result row, sequentially and
// in row order. Files already present are skipped or refetched per the
// confirm answer; FetchNone stops before any network I/O. Fetched bytes
// are written through a temp file and rename. Failed and not-found names
// are appended to Failed_Fetches in the destination directory. Malformed
// rows are reported, counted as failed, and do not stop the batch.
func FetchBatch(ctx context.Context, fetcher *Fetcher, result types.Result, cfg types.FetchConfig, confirm ConfirmFunc, w io.Writer) (BatchResult, error) {
	dest := cfg.DestDir
	if dest == "" {
		dest = "."
	}

	// Derive every filename up front so the confirmation can show what
	// already exists. Malformed rows stay in the batch as failures.
	type item struct {
		id  SpecID
		err error
	}
	items := make([]item, 0, result.Len())
	prompt := Prompt{Existing: make(map[string]bool)}
	for i := 0; i < result.Len(); i++ {
		id, err := ParseSpecID(result.Row(i))
		if err == nil {
			name := id.FileName()
			prompt.Files = append(prompt.Files, name)
			if _, statErr := os.Stat(filepath.Join(dest, name)); statErr == nil {
				prompt.Existing[name] = true
			}
		}
		items = append(items, item{id: id, err: err})
	}

	answer := FetchMissing
	if confirm != nil {
		answer = confirm(prompt)
	}
	if answer == FetchNone {
		return BatchResult{}, nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating destination directory: %w", err)
	}

	var summary BatchResult
	attempted := 0
	for _, it := range items {
		if it.err != nil {
			fmt.Fprintf(w, "failed: %v\n", it.err)
			summary.Failed++
			continue
		}

		name := it.id.FileName()
		if answer == FetchMissing && prompt.Existing[name] {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			summary.Skipped++
			continue
		}

		if attempted > 0 && cfg.Delay > 0 {
			time.Sleep(cfg.Delay)
		}
		attempted++

		fmt.Fprintf(w, "fetching: %s\n", name)
		artifact, err := fetcher.FetchID(ctx, it.id)
		if err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", name, err)
			appendFailedFetch(dest, name, w)
			summary.Failed++
			continue
		}
		if !artifact.Found {
			fmt.Fprintf(w, "not found: %s\n", name)
			appendFailedFetch(dest, name, w)
			summary.NotFound++
			continue
		}

		if err := writeArtifact(filepath.Join(dest, name), artifact.Data); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", name, err)
			summary.Failed++
			continue
		}
		summary.Fetched++
	}

	fmt.Fprintf(w, "\n%d of %d spectra fetched", summary.Fetched, summary.Total())
	if summary.Skipped > 0 || summary.NotFound > 0 || summary.Failed > 0 {
		fmt.Fprintf(w, " (skipped %d, not found %d, failed %d)",
			summary.Skipped, summary.NotFound, summary.Failed)
	}
	fmt.Fprintln(w)
	return summary, nil
}

// writeArtifact writes data to destPath through a temporary file so a
// failed write never leaves a partial spectrum behind.
func writeArtifact(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing spectrum: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// appendFailedFetch records name in the Failed_Fetches file in dir.
func appendFailedFetch(dir, name string, w io.Writer) {
	f, err := os.OpenFile(filepath.Join(dir, FailedFetchesFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(w, "warning: cannot record failed fetch: %v\n", err)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, name)
}
