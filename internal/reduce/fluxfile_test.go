// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/sloany/pkg/types"
)

func TestWriteFluxTable_Golden(t *testing.T) {
	s := types.Spectrum{
		Wavelengths: []float64{3800.25, 3801.12, 3802.0},
		Fluxes:      []float64{1.235, -0.5, 6.0},
	}

	var buf bytes.Buffer
	if err := WriteFluxTable(&buf, s); err != nil {
		t.Fatalf("WriteFluxTable: %v", err)
	}

	want := "3\n" +
		"   3800.25   3801.12   3802.00\n" +
		" 1.23500e+00-5.00000e-01 6.00000e+00\n"
	if got := buf.String(); got != want {
		t.Errorf("flux table mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteFluxTable_GroupsRows(t *testing.T) {
	s := types.Spectrum{
		Wavelengths: make([]float64, 12),
		Fluxes:      make([]float64, 12),
	}
	for i := range s.Wavelengths {
		s.Wavelengths[i] = 1000 + float64(i)
		s.Fluxes[i] = 1
	}

	var buf bytes.Buffer
	if err := WriteFluxTable(&buf, s); err != nil {
		t.Fatalf("WriteFluxTable: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6: %q", len(lines), buf.String())
	}
	if lines[0] != "12" {
		t.Errorf("count line = %q, want \"12\"", lines[0])
	}
	for i, wantLen := range []int{100, 20, 72, 72, 0} {
		if len(lines[i+1]) != wantLen {
			t.Errorf("line %d is %d bytes, want %d", i+1, len(lines[i+1]), wantLen)
		}
	}
}

func TestWriteFluxTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFluxTable(&buf, types.Spectrum{}); err != nil {
		t.Fatalf("WriteFluxTable: %v", err)
	}
	if buf.String() != "0\n" {
		t.Errorf("empty table = %q, want \"0\\n\"", buf.String())
	}
}
