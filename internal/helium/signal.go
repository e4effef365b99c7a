// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package helium

import "math"

// Line is one absorption line found in a spectrum: the index of its
// center and the signal-to-noise ratio at that point.
type Line struct {
	Index int
	SN    float64
}

/// Smooth produces a smoothed copy of the flux array: a width-7 moving
// average applied three times. Each pass mirror-pads the endpoints so
// the length never changes.
func Smooth(fluxes []float64) []float64 {
	return smoothWith(fluxes, 7, 3)
}

func smoothWith(x []float64, width, passes int) []float64 {
	half := width / 2
	out := append([]float64(nil), x...)
	for p := 0; p < passes; p++ {
		out = movingAverage(mirrorPad(out, half), width)
	}
	return out
}

// Baseline flattens the continuum using a white top-hat. Absorption
// lines point down, so the flux is negated first, opened with a flat
// element a fifth of the spectrum wide, and negated back. A constant
// spectrum maps to zero; dips keep their depth.
func Baseline(fluxes []float64) []float64 {
	size := int(0.2 * float64(len(fluxes)))
	if size < 1 {
		size = 1
	}

	y := make([]float64, len(fluxes))
	for i, f := range fluxes {
		y[i] = -f
	}
	opened := slidingMax(slidingMin(y, size), size)

	out := make([]float64, len(y))
	for i := range y {
		out[i] = opened[i] - y[i]
	}
	return out
}

// FindLines scans the baseline-corrected spectrum for absorption lines.
// The local noise level is the mean absolute difference between the raw
// and smoothed flux over a window a fifth of the spectrum wide; maximal
// runs where corrected drops below -threshold times the noise are line
// complexes, and each local minimum inside a complex is a line.
func FindLines(fluxes, smoothed, corrected []float64, threshold float64) []Line {
	width := int(float64(len(fluxes))*0.2/2)*2 + 1
	half := width / 2

	x := mirrorPad(fluxes, half)
	xs := mirrorPad(smoothed, half)
	residual := make([]float64, len(x))
	for i := range x {
		residual[i] = math.Abs(x[i] - xs[i])
	}
	noise := movingAverage(residual, width)

	var lines []Line
	pos := 0
	for pos < len(corrected) {
		minPos := pos
		for pos < len(corrected) && corrected[pos] < -threshold*noise[pos] {
			pos++
		}
		if pos > minPos {
			for _, c := range findCenters(corrected[minPos:pos]) {
				center := minPos + c
				lines = append(lines, Line{
					Index: center,
					SN:    residual[center+half] / noise[center],
				})
			}
		}
		pos++
	}
	return lines
}

// findCenters locates the minima inside one line complex from the sign
// changes of the first difference. Runs shorter than three points have
// no interior minimum and yield nothing.
func findCenters(segment []float64) []int {
	var centers []int
	for i := 0; i+2 < len(segment); i++ {
		d1 := sign(segment[i+1] - segment[i])
		d2 := sign(segment[i+2] - segment[i+1])
		if d2-d1 > 0 {
			centers = append(centers, i+1)
		}
	}
	return centers
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// mirrorPad extends x by half points on each side, reflecting about the
// endpoints without duplicating them. The reflections clamp on arrays
// shorter than the pad.
func mirrorPad(x []float64, half int) []float64 {
	n := len(x)
	padded := make([]float64, 0, n+2*half)
	for i := min(half, n-1); i >= 1; i-- {
		padded = append(padded, x[i])
	}
	padded = append(padded, x...)
	for i := n - 2; i >= max(n-1-half, 0); i-- {
		padded = append(padded, x[i])
	}
	return padded
}

// movingAverage is a valid-mode convolution with a uniform window, so
// the output is len(x)-width+1 points.
func movingAverage(x []float64, width int) []float64 {
	if len(x) < width {
		return nil
	}
	out := make([]float64, len(x)-width+1)
	var sum float64
	for i := 0; i < width; i++ {
		sum += x[i]
	}
	out[0] = sum / float64(width)
	for i := width; i < len(x); i++ {
		sum += x[i] - x[i-width]
		out[i-width+1] = sum / float64(width)
	}
	return out
}

// slidingMin erodes x with a flat element of the given size. Even sizes
// put the longer tail of the window on the left; indices past the ends
// reflect with the edge value duplicated.
func slidingMin(x []float64, size int) []float64 {
	lo, hi := -(size / 2), size - 1 - size/2
	out := make([]float64, len(x))
	for i := range x {
		best := math.Inf(1)
		for j := i + lo; j <= i+hi; j++ {
			if v := reflectAt(x, j); v < best {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

// slidingMax dilates x with the reflected element, the longer tail on
// the right, so that opening never exceeds the input.
func slidingMax(x []float64, size int) []float64 {
	lo, hi := -(size - 1 - size/2), size / 2
	out := make([]float64, len(x))
	for i := range x {
		best := math.Inf(-1)
		for j := i + lo; j <= i+hi; j++ {
			if v := reflectAt(x, j); v > best {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

func reflectAt(x []float64, j int) float64 {
	n := len(x)
	for j < 0 || j >= n {
		if j < 0 {
			j = -j - 1
		}
		if j >= n {
			j = 2*n - 1 - j
		}
	}
	return x[j]
}
