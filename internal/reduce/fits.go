// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/sloany/pkg/types"
)

// FITS files are sequences of 2880-byte blocks: a header of 80-character
// cards terminated by END, then the data region padded to the next block.
const (
	blockSize = 2880
	cardSize  = 80
)

// header holds one HDU's cards, keyword to raw value with the trailing
// comment stripped.
type header map[string]string

// ReadSpectrum parses an SDSS spec-lite file and returns the coadded
// spectrum. It walks the HDU sequence to the first binary table, reads
// the flux and loglam columns, and converts log-wavelength to angstroms.
func ReadSpectrum(r io.Reader) (types.Spectrum, error) {
	primary, err := readHeader(r)
	if err != nil {
		return types.Spectrum{}, fmt.Errorf("reading primary header: %w", err)
	}
	if primary.str("SIMPLE") != "T" {
		return types.Spectrum{}, errors.New("not a FITS file")
	}
	if err := skip(r, dataSize(primary)); err != nil {
		return types.Spectrum{}, fmt.Errorf("skipping primary data: %w", err)
	}

	for {
		h, err := readHeader(r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return types.Spectrum{}, errors.New("no coadd table in file")
		}
		if err != nil {
			return types.Spectrum{}, fmt.Errorf("reading extension header: %w", err)
		}
		if h.str("XTENSION") == "BINTABLE" {
			return readTable(r, h)
		}
		if err := skip(r, dataSize(h)); err != nil {
			return types.Spectrum{}, fmt.Errorf("skipping extension data: %w", err)
		}
	}
}

// readTable reads the binary table data region described by h and pulls
// out the flux and loglam columns. Both must be single-precision floats,
// stored big-endian per the FITS standard.
func readTable(r io.Reader, h header) (types.Spectrum, error) {
	rowBytes := h.intVal("NAXIS1", 0)
	rows := h.intVal("NAXIS2", 0)
	fields := h.intVal("TFIELDS", 0)
	if rowBytes <= 0 || rows <= 0 || fields <= 0 {
		return types.Spectrum{}, errors.New("malformed binary table header")
	}

	fluxOff, loglamOff := -1, -1
	offset := 0
	for i := 1; i <= fields; i++ {
		n := strconv.Itoa(i)
		name := h.str("TTYPE" + n)
		form := h.str("TFORM" + n)
		width, err := formWidth(form)
		if err != nil {
			return types.Spectrum{}, err
		}
		switch {
		case strings.EqualFold(name, "flux"):
			if form != "E" && form != "1E" {
				return types.Spectrum{}, fmt.Errorf("flux column has format %q, want E", form)
			}
			fluxOff = offset
		case strings.EqualFold(name, "loglam"):
			if form != "E" && form != "1E" {
				return types.Spectrum{}, fmt.Errorf("loglam column has format %q, want E", form)
			}
			loglamOff = offset
		}
		offset += width
	}
	if fluxOff < 0 || loglamOff < 0 {
		return types.Spectrum{}, errors.New("coadd table lacks flux/loglam columns")
	}
	if offset > rowBytes {
		return types.Spectrum{}, errors.New("column widths exceed row size")
	}

	data := make([]byte, rowBytes*rows)
	if _, err := io.ReadFull(r, data); err != nil {
		return types.Spectrum{}, fmt.Errorf("reading table data: %w", err)
	}

	spec := types.Spectrum{
		Wavelengths: make([]float64, rows),
		Fluxes:      make([]float64, rows),
	}
	for i := 0; i < rows; i++ {
		base := i * rowBytes
		flux := math.Float32frombits(binary.BigEndian.Uint32(data[base+fluxOff:]))
		loglam := math.Float32frombits(binary.BigEndian.Uint32(data[base+loglamOff:]))
		spec.Fluxes[i] = float64(flux)
		spec.Wavelengths[i] = math.Pow(10, float64(loglam))
	}
	return spec, nil
}

// readHeader consumes whole blocks until the END card.
func readHeader(r io.Reader) (header, error) {
	h := make(header)
	block := make([]byte, blockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, err
		}
		for i := 0; i < blockSize; i += cardSize {
			card := string(block[i : i+cardSize])
			key := strings.TrimRight(card[:8], " ")
			if key == "END" {
				return h, nil
			}
			if key == "" || key == "COMMENT" || key == "HISTORY" || card[8] != '=' {
				continue
			}
			h[key] = strings.TrimSpace(stripComment(card[10:]))
		}
	}
}

// stripComment removes a trailing "/ comment", leaving quoted strings
// intact.
func stripComment(v string) string {
	t := strings.TrimLeft(v, " ")
	if strings.HasPrefix(t, "'") {
		for j := 1; j < len(t); j++ {
			if t[j] != '\'' {
				continue
			}
			if j+1 < len(t) && t[j+1] == '\'' {
				j++
				continue
			}
			return t[:j+1]
		}
		return t
	}
	if i := strings.IndexByte(v, '/'); i >= 0 {
		return v[:i]
	}
	return v
}

// str returns a card value with quotes and the right-padding FITS adds
// inside them removed.
func (h header) str(key string) string {
	v := h[key]
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return strings.TrimRight(strings.ReplaceAll(v[1:len(v)-1], "''", "'"), " ")
	}
	return v
}

func (h header) intVal(key string, def int) int {
	n, err := strconv.Atoi(h[key])
	if err != nil {
		return def
	}
	return n
}

// dataSize gives the byte length of an HDU's data region including the
// padding to the next block boundary.
func dataSize(h header) int64 {
	naxis := h.intVal("NAXIS", 0)
	if naxis == 0 {
		return 0
	}
	n := int64(1)
	for i := 1; i <= naxis; i++ {
		n *= int64(h.intVal("NAXIS"+strconv.Itoa(i), 0))
	}
	bitpix := h.intVal("BITPIX", 8)
	if bitpix < 0 {
		bitpix = -bitpix
	}
	pcount := int64(h.intVal("PCOUNT", 0))
	gcount := int64(h.intVal("GCOUNT", 1))
	raw := int64(bitpix/8) * gcount * (pcount + n)
	if rem := raw % blockSize; rem != 0 {
		raw += blockSize - rem
	}
	return raw
}

// formWidth returns the byte width of a binary-table column given its
// TFORM value, e.g. "E" (one float32) or "5J" (five int32s).
func formWidth(form string) (int, error) {
	i := 0
	for i < len(form) && form[i] >= '0' && form[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		repeat, _ = strconv.Atoi(form[:i])
	}
	if i >= len(form) {
		return 0, fmt.Errorf("bad column format %q", form)
	}
	var size int
	switch form[i] {
	case 'L', 'B', 'A':
		size = 1
	case 'I':
		size = 2
	case 'J', 'E':
		size = 4
	case 'K', 'D', 'P', 'C':
		size = 8
	case 'M', 'Q':
		size = 16
	case 'X':
		return (repeat + 7) / 8, nil
	default:
		return 0, fmt.Errorf("bad column format %q", form)
	}
	return repeat * size, nil
}

func skip(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
