package stats

import "fmt"

// PeakFullWidth measures the width of a single peak at a fraction of its
// maximum by linear interpolation on each flank.
//
// x must be monotonically increasing. fraction is relative to MaxY
// (0.5 gives the familiar FWHM measured directly from the data rather than
// the Gaussian-equivalent value in Summary). Returns ErrNoCrossing when a
// flank never drops below the threshold, which happens for peaks truncated
// at the scan edge.
func PeakFullWidth(x, y []float64, fraction float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrLengthMismatch
	}
	if len(x) < 3 {
		return 0, ErrTooFewPoints
	}
	if fraction <= 0 || fraction >= 1 {
		return 0, fmt.Errorf("stats: fraction %g out of range (0, 1)", fraction)
	}

	// Locate the peak.
	iMax := 0
	for i := range y {
		if y[i] > y[iMax] {
			iMax = i
		}
	}
	threshold := fraction * y[iMax]

	left, err := crossing(x, y, iMax, -1, threshold)
	if err != nil {
		return 0, fmt.Errorf("%w: left flank", ErrNoCrossing)
	}
	right, err := crossing(x, y, iMax, +1, threshold)
	if err != nil {
		return 0, fmt.Errorf("%w: right flank", ErrNoCrossing)
	}

	return right - left, nil
}

// crossing walks from the peak in the given direction until y drops through
// threshold, then interpolates the crossing position.
func crossing(x, y []float64, iMax, step int, threshold float64) (float64, error) {
	for i := iMax + step; i >= 0 && i < len(y); i += step {
		if y[i] > threshold {
			continue
		}
		// Crossing lies between i and i-step.
		j := i - step
		if y[j] == y[i] {
			return x[i], nil
		}
		t := (threshold - y[i]) / (y[j] - y[i])
		return x[i] + t*(x[j]-x[i]), nil
	}
	return 0, ErrNoCrossing
}
