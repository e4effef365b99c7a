// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spectra

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/sloany/pkg/types"
)

// MetadataFile is the default name of the object-name listing written
// alongside fetched spectra.
const MetadataFile = "METADATA"

// MetadataEntry ties a spectrum file to the object's SDSS names.
type MetadataEntry struct {
	SpecFile  string
	LongName  string
	ShortName string
}

// ObjectLocator resolves ra/dec for a spectrum whose row does not carry
// them. Satisfied by skyserver.Client.
type ObjectLocator interface {
	LookupRaDec(ctx context.Context, plate, mjd, fiberid int) (ra, dec float64, err error)
}

// WriteMetadata writes the metadata file for a query result: one line per
// object with the spectrum file name and both SDSS names, four-space
// separated. Rows without ra/dec columns are resolved through locator;
// rows that cannot be named are skipped with a warning on w. The entries
// are returned for reuse by reduction.
func WriteMetadata(ctx context.Context, result types.Result, locator ObjectLocator, path string, w io.Writer) ([]MetadataEntry, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating metadata file: %w", err)
	}
	defer f.Close()

	var entries []MetadataEntry
	for i := 0; i < result.Len(); i++ {
		row := result.Row(i)
		id, err := ParseSpecID(row)
		if err != nil {
			fmt.Fprintf(w, "warning: skipping object %d: %v\n", i, err)
			continue
		}

		ra, dec, err := rowRaDec(ctx, row, id, locator)
		if err != nil {
			fmt.Fprintf(w, "warning: no position for %s: %v\n", id.FileName(), err)
			continue
		}

		long, short := Name(ra, dec)
		entry := MetadataEntry{SpecFile: id.FileName(), LongName: long, ShortName: short}
		entries = append(entries, entry)
		fmt.Fprintf(f, "%s    %s    %s\n", entry.SpecFile, entry.LongName, entry.ShortName)
	}

	fmt.Fprintf(w, "wrote %s file with %d objects\n", filepath.Base(path), len(entries))
	return entries, nil
}

// rowRaDec takes the position from the row when both columns are present,
// falling back to a locator lookup otherwise.
func rowRaDec(ctx context.Context, row types.Row, id SpecID, locator ObjectLocator) (float64, float64, error) {
	raStr, raOK := row.Get("ra")
	decStr, decOK := row.Get("dec")
	if raOK && decOK {
		ra, err := strconv.ParseFloat(raStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("parsing ra %q: %w", raStr, err)
		}
		dec, err := strconv.ParseFloat(decStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("parsing dec %q: %w", decStr, err)
		}
		return ra, dec, nil
	}
	if locator == nil {
		return 0, 0, errors.New("row has no ra/dec and no locator is configured")
	}
	return locator.LookupRaDec(ctx, id.Plate, id.MJD, id.FiberID)
}

// ReadMetadata loads a metadata file written by WriteMetadata.
func ReadMetadata(path string) ([]MetadataEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata file: %w", err)
	}
	defer f.Close()

	var entries []MetadataEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		entries = append(entries, MetadataEntry{SpecFile: fields[0], LongName: fields[1], ShortName: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	return entries, nil
}
