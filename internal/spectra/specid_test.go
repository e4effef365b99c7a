// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spectra

import (
	"errors"
	"testing"

	"github.com/pdiddy/sloany/pkg/types"
)

func testRow(columns, values []string) types.Row {
	return types.Row{Columns: columns, Values: values}
}

func TestParseSpecID(t *testing.T) {
	tests := []struct {
		name      string
		row       types.Row
		want      SpecID
		wantField string
	}{
		{
			name: "complete row",
			row: testRow(
				[]string{"survey", "plate", "mjd", "fiberid", "ra", "dec"},
				[]string{"boss", "4075", "55352", "802", "1.0", "2.0"},
			),
			want: SpecID{Survey: "boss", Plate: 4075, MJD: 55352, FiberID: 802},
		},
		{
			name: "column order irrelevant",
			row: testRow(
				[]string{"mjd", "fiberid", "survey", "plate"},
				[]string{"55361", "709", "sdss", "4077"},
			),
			want: SpecID{Survey: "sdss", Plate: 4077, MJD: 55361, FiberID: 709},
		},
		{
			name: "missing fiberid",
			row: testRow(
				[]string{"survey", "plate", "mjd"},
				[]string{"boss", "4075", "55352"},
			),
			wantField: "fiberid",
		},
		{
			name: "missing survey",
			row: testRow(
				[]string{"plate", "mjd", "fiberid"},
				[]string{"4075", "55352", "802"},
			),
			wantField: "survey",
		},
		{
			name: "non-integer plate",
			row: testRow(
				[]string{"survey", "plate", "mjd", "fiberid"},
				[]string{"boss", "40a5", "55352", "802"},
			),
			wantField: "plate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpecID(tt.row)
			if tt.wantField != "" {
				var merr *MalformedRowError
				if !errors.As(err, &merr) {
					t.Fatalf("ParseSpecID() error = %v, want *MalformedRowError", err)
				}
				if merr.Field != tt.wantField {
					t.Errorf("MalformedRowError.Field = %q, want %q", merr.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecID() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSpecID() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    SpecID
		wantErr bool
	}{
		{"padded fields", "spec-4075-55352-0802.fits", SpecID{Plate: 4075, MJD: 55352, FiberID: 802}, false},
		{"unpadded mjd", "spec-0280-5352-0005.fits", SpecID{Plate: 280, MJD: 5352, FiberID: 5}, false},
		{"wrong suffix", "spec-4075-55352-0802.txt", SpecID{}, true},
		{"wrong prefix", "sp-4075-55352-0802.fits", SpecID{}, true},
		{"too few parts", "spec-4075-55352.fits", SpecID{}, true},
		{"non-numeric plate", "spec-40a5-55352-0802.fits", SpecID{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFileName(%q) expected an error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFileName(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFileName(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpecIDFileName(t *testing.T) {
	tests := []struct {
		name string
		id   SpecID
		want string
	}{
		{"fiberid padded, mjd not", SpecID{Plate: 4075, MJD: 55352, FiberID: 802}, "spec-4075-55352-0802.fits"},
		{"plate padded", SpecID{Plate: 280, MJD: 51612, FiberID: 5}, "spec-0280-51612-0005.fits"},
		{"short mjd stays short", SpecID{Plate: 4075, MJD: 5352, FiberID: 802}, "spec-4075-5352-0802.fits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.FileName(); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
