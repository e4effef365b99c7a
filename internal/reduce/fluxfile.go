// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pdiddy/sloany/pkg/types"
)

// WriteFluxTable writes a spectrum in the plain-text layout the line
// finder consumes: the point count, wavelengths ten per row in %10.2f,
// fluxes six per row in %12.5e. Each group starts with the newline that
// ends the previous row, and the table ends with one.
func WriteFluxTable(w io.Writer, s types.Spectrum) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d", s.Len())
	for i, wl := range s.Wavelengths {
		if i%10 == 0 {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "%10.2f", wl)
	}
	for i, fl := range s.Fluxes {
		if i%6 == 0 {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "%12.5e", fl)
	}
	bw.WriteByte('\n')
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing flux table: %w", err)
	}
	return nil
}
