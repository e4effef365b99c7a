// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package helium

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/sloany/pkg/types"
)

// ReadFluxTable parses a plain-text flux table: a count line, then that
// many wavelengths and that many fluxes. Lines split on whitespace
// unless a token carries more than one decimal point, which happens
// when fixed-width columns abut; such lines are sliced 12 characters
// wide when they contain a minus sign (SDSS flux rows) and 8 otherwise.
// Tokens that fail to parse contribute zero.
func ReadFluxTable(r io.Reader) (types.Spectrum, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return types.Spectrum{}, fmt.Errorf("reading flux table: %w", err)
		}
		return types.Spectrum{}, fmt.Errorf("empty flux table")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) == 0 {
		return types.Spectrum{}, fmt.Errorf("missing point count")
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.Spectrum{}, fmt.Errorf("bad point count %q", fields[0])
	}

	wavs, err := readValues(scanner, count)
	if err != nil {
		return types.Spectrum{}, fmt.Errorf("reading wavelengths: %w", err)
	}
	fluxes, err := readValues(scanner, count)
	if err != nil {
		return types.Spectrum{}, fmt.Errorf("reading fluxes: %w", err)
	}
	return types.Spectrum{Wavelengths: wavs, Fluxes: fluxes}, nil
}

func readValues(scanner *bufio.Scanner, n int) ([]float64, error) {
	vals := make([]float64, 0, n)
	for len(vals) < n {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("table ends after %d of %d values", len(vals), n)
		}
		for _, entry := range splitLine(scanner.Text()) {
			v, err := strconv.ParseFloat(strings.TrimSpace(entry), 64)
			if err != nil {
				v = 0
			}
			vals = append(vals, v)
		}
	}
	return vals, nil
}

func splitLine(line string) []string {
	fields := strings.Fields(line)
	wellSplit := true
	for _, f := range fields {
		if strings.Count(f, ".") > 1 {
			wellSplit = false
			break
		}
	}
	if wellSplit {
		return fields
	}

	width := 8
	if strings.Contains(line, "-") {
		width = 12
	}
	var entries []string
	for i := 0; i < len(line); i += width {
		end := min(i+width, len(line))
		entries = append(entries, line[i:end])
	}
	return entries
}
