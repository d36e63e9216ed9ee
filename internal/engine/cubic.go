// Package engine implements the reference tempo and pitch processing node:
// a granular overlap-add time stretcher whose grains are read from the
// source with cubic interpolation.
package engine

import "math"

// hermite performs cubic Hermite interpolation between y1 and y2.
// Uses the formula: y = ((a*x + b)*x + c)*x + d
// where x is the fractional position between y1 and y2.
func hermite(y0, y1, y2, y3, x float64) float64 {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}

// sampleAt reads data at a fractional frame position.
// Positions outside the data read as silence.
func sampleAt(data []float32, pos float64) float64 {
	n := len(data)
	if n == 0 || pos <= -1 || pos >= float64(n) {
		return 0
	}

	base := math.Floor(pos)
	i := int(base)
	x := pos - base

	at := func(k int) float64 {
		if k < 0 || k >= n {
			return 0
		}
		return float64(data[k])
	}

	if x == 0 {
		return at(i)
	}
	return hermite(at(i-1), at(i), at(i+1), at(i+2), x)
}
