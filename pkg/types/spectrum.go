// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Spectrum is a reduced spectrum: wavelengths in angstroms and fluxes,
// index-aligned. Produced by the reduce stage, consumed by analysis.
type Spectrum struct {
	Wavelengths []float64
	Fluxes      []float64
}

// Len returns the number of spectrum points.
func (s Spectrum) Len() int { return len(s.Wavelengths) }
