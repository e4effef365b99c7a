// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spectra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/sloany/pkg/types"
)

// MalformedRowError reports a row that cannot name a spectrum: a required
// field is missing or an identifier is not an integer. The row is skipped
// without any network request.
type MalformedRowError struct {
	Field  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row: field %s %s", e.Field, e.Reason)
}

// SpecID is the identity of one spectrum: the survey that observed it and
// the plate/mjd/fiberid triple that names its file.
type SpecID struct {
	Survey  string
	Plate   int
	MJD     int
	FiberID int
}

// ParseSpecID extracts a SpecID from a query row. The row must carry
// survey, plate, mjd, and fiberid columns.
func ParseSpecID(row types.Row) (SpecID, error) {
	survey, ok := row.Get("survey")
	if !ok {
		return SpecID{}, &MalformedRowError{Field: "survey", Reason: "missing"}
	}

	plate, err := intField(row, "plate")
	if err != nil {
		return SpecID{}, err
	}
	mjd, err := intField(row, "mjd")
	if err != nil {
		return SpecID{}, err
	}
	fiberid, err := intField(row, "fiberid")
	if err != nil {
		return SpecID{}, err
	}

	return SpecID{Survey: survey, Plate: plate, MJD: mjd, FiberID: fiberid}, nil
}

func intField(row types.Row, name string) (int, error) {
	v, ok := row.Get(name)
	if !ok {
		return 0, &MalformedRowError{Field: name, Reason: "missing"}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &MalformedRowError{Field: name, Reason: fmt.Sprintf("not an integer: %q", v)}
	}
	return n, nil
}

// FileName returns the spectrum file name. Plate and fiberid are
// zero-padded to four digits; mjd is not padded.
func (id SpecID) FileName() string {
	return fmt.Sprintf("spec-%04d-%d-%04d.fits", id.Plate, id.MJD, id.FiberID)
}

// ParseFileName recovers the plate/mjd/fiberid triple from a spectrum
// file name of the form spec-PLATE-MJD-FIBERID.fits. The survey is not
// encoded in the name and is left empty.
func ParseFileName(name string) (SpecID, error) {
	base, ok := strings.CutSuffix(name, ".fits")
	if !ok {
		return SpecID{}, fmt.Errorf("spectrum file name %q lacks .fits suffix", name)
	}
	parts := strings.Split(base, "-")
	if len(parts) != 4 || parts[0] != "spec" {
		return SpecID{}, fmt.Errorf("spectrum file name %q is not spec-PLATE-MJD-FIBERID.fits", name)
	}

	var id SpecID
	var err error
	if id.Plate, err = strconv.Atoi(parts[1]); err != nil {
		return SpecID{}, fmt.Errorf("spectrum file name %q: bad plate: %w", name, err)
	}
	if id.MJD, err = strconv.Atoi(parts[2]); err != nil {
		return SpecID{}, fmt.Errorf("spectrum file name %q: bad mjd: %w", name, err)
	}
	if id.FiberID, err = strconv.Atoi(parts[3]); err != nil {
		return SpecID{}, fmt.Errorf("spectrum file name %q: bad fiberid: %w", name, err)
	}
	return id, nil
}
