// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spectra

import (
	"fmt"
	"math"
)

// Name derives the official SDSS object name from right ascension and
// declination in degrees. It returns the long form (Jhhmmss.ss±ddmmss.s)
// and the short form (Jhhmm±ddmm). Seconds are truncated, not rounded.
func Name(ra, dec float64) (long, short string) {
	sec := ra * 86400 / 360
	hours := int(sec / 3600)
	minutes := int(math.Mod(sec, 3600) / 60)
	secs := truncFormat(math.Mod(sec, 60), 5)

	sign := "+"
	if dec < 0 {
		sign = "-"
		dec = -dec
	}
	degrees := int(dec)
	frac := dec - float64(degrees)
	decmins := int(frac * 60)
	decsecs := truncFormat(3600*frac-60*float64(decmins), 4)

	long = fmt.Sprintf("J%02d%02d%s%s%02d%02d%s", hours, minutes, secs, sign, degrees, decmins, decsecs)
	short = fmt.Sprintf("J%02d%02d%s%02d%02d", hours, minutes, sign, degrees, decmins)
	return long, short
}

// truncFormat renders v as %08.5f and cuts to n characters, so the last
// visible digit never rounds up.
func truncFormat(v float64, n int) string {
	s := fmt.Sprintf("%08.5f", v)
	if len(s) > n {
		s = s[:n]
	}
	return s
}
