// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package helium scans reduced spectra for helium absorption lines.
// A spectrum counts as a detection only when at least two line centers
// fall within the match tolerance of the helium series.
package helium

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sloany/pkg/types"
)

// The 3888.65 He I line sits close to strong lines of several other
// elements and can produce false positives; it stays in the table.
var (
	HeliumILines  = []float64{3888.65, 4471.5, 5015.678, 5875.6404, 6678.1517, 7065.2153}
	HeliumIILines = []float64{4685.7}
)

// HeliumLines is both series in match order.
var HeliumLines = append(append([]float64(nil), HeliumILines...), HeliumIILines...)

// matchTolerance is the largest distance, in angstroms, between a line
// center and a rest wavelength that still counts as a match.
const matchTolerance = 5.0

// MatchedLine is an absorption line whose center falls within the match
// tolerance of a helium rest wavelength.
type MatchedLine struct {
	Wavelength float64 `yaml:"wavelength"`
	SN         float64 `yaml:"sn"`
	Helium     float64 `yaml:"helium"`
}

// Detection is the outcome for one spectrum.
type Detection struct {
	Lines []MatchedLine
}

// Detected reports whether the spectrum shows helium. One matched line
// is not enough.
func (d Detection) Detected() bool { return len(d.Lines) >= 2 }

// Detect runs the pipeline on one spectrum: smooth, flatten the
// continuum, find absorption lines, and match their center wavelengths
// against the helium series.
func Detect(spec types.Spectrum, threshold float64) Detection {
	smoothed := Smooth(spec.Fluxes)
	corrected := Baseline(smoothed)

	var det Detection
	for _, ln := range FindLines(spec.Fluxes, smoothed, corrected, threshold) {
		if ln.Index >= len(spec.Wavelengths) {
			continue
		}
		wav := spec.Wavelengths[ln.Index]
		for _, he := range HeliumLines {
			if math.Abs(wav-he) < matchTolerance {
				det.Lines = append(det.Lines, MatchedLine{Wavelength: wav, SN: ln.SN, Helium: he})
			}
		}
	}
	return det
}

// DetectFile opens a flux table and runs detection on it.
func DetectFile(path string, threshold float64) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, fmt.Errorf("opening flux table: %w", err)
	}
	defer f.Close()

	spec, err := ReadFluxTable(f)
	if err != nil {
		return Detection{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return Detect(spec, threshold), nil
}

// Report collects per-file outcomes for the YAML report.
type Report struct {
	Threshold float64      `yaml:"threshold"`
	Files     []FileReport `yaml:"files"`
}

// FileReport is one spectrum's entry in the report.
type FileReport struct {
	File     string        `yaml:"file"`
	Detected bool          `yaml:"detected"`
	Error    string        `yaml:"error,omitempty"`
	Lines    []MatchedLine `yaml:"lines,omitempty"`
}

// Run scans each flux table in order, printing the name of every file
// that shows helium and, when verbose, its matched lines. Unreadable
// files are reported and skipped.
func Run(paths []string, cfg types.HeliumConfig, w io.Writer) Report {
	report := Report{Threshold: cfg.Threshold}
	for _, path := range paths {
		det, err := DetectFile(path, cfg.Threshold)
		if err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", filepath.Base(path), err)
			report.Files = append(report.Files, FileReport{File: path, Error: err.Error()})
			continue
		}
		if det.Detected() {
			fmt.Fprintln(w, path)
			if cfg.VerboseLines {
				for _, ln := range det.Lines {
					fmt.Fprintf(w, "   line %.1f angstrom; S/N %.2f\n", ln.Wavelength, ln.SN)
				}
			}
		}
		report.Files = append(report.Files, FileReport{
			File:     path,
			Detected: det.Detected(),
			Lines:    det.Lines,
		})
	}
	return report
}

// WriteReport saves the report as YAML.
func WriteReport(path string, report Report) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
