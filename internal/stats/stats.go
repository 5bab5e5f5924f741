package stats

import (
	"errors"
	"math"
)

// GaussianFWHM converts a Gaussian sigma to full width at half maximum.
const GaussianFWHM = 2.354820045030949 // 2*sqrt(2*ln 2)

// Domain errors for the stats package.
var (
	// ErrLengthMismatch is returned when x and y have different lengths.
	ErrLengthMismatch = errors.New("stats: x and y length mismatch")

	// ErrTooFewPoints is returned when there is not enough data for the calculation.
	ErrTooFewPoints = errors.New("stats: too few points")

	// ErrZeroWeight is returned when all y values sum to zero and no
	// weighted statistics exist.
	ErrZeroWeight = errors.New("stats: zero total weight")

	// ErrNoCrossing is returned when a flank never crosses the requested
	// fraction of the maximum.
	ErrNoCrossing = errors.New("stats: no crossing found")
)

// Summary holds the statistics of one (x, y) scan.
type Summary struct {
	N int

	MinX, MaxX float64
	MinY, MaxY float64
	MeanY      float64

	// XAtMaxY is the x position of the largest y value.
	XAtMaxY float64

	// Centroid is the y-weighted mean of x.
	Centroid float64

	// Variance is the y-weighted variance of x about the centroid.
	Variance float64

	// Sigma is sqrt(Variance).
	Sigma float64

	// FWHM is the Gaussian-equivalent full width, GaussianFWHM * Sigma.
	FWHM float64
}

// ArrayStatistics computes peak statistics for a scan.
//
// x are positions, y are non-negative intensities used as weights. At least
// one point is required; the weighted quantities additionally require a
// non-zero total intensity.
func ArrayStatistics(x, y []float64) (Summary, error) {
	if len(x) != len(y) {
		return Summary{}, ErrLengthMismatch
	}
	if len(x) == 0 {
		return Summary{}, ErrTooFewPoints
	}

	s := Summary{
		N:    len(x),
		MinX: x[0], MaxX: x[0],
		MinY: y[0], MaxY: y[0],
		XAtMaxY: x[0],
	}

	var sumY, sumXY float64
	for i := range x {
		s.MinX = math.Min(s.MinX, x[i])
		s.MaxX = math.Max(s.MaxX, x[i])
		s.MinY = math.Min(s.MinY, y[i])
		if y[i] > s.MaxY {
			s.MaxY = y[i]
			s.XAtMaxY = x[i]
		}
		sumY += y[i]
		sumXY += x[i] * y[i]
	}
	s.MeanY = sumY / float64(s.N)

	if sumY == 0 {
		return s, ErrZeroWeight
	}

	s.Centroid = sumXY / sumY

	var sumDev float64
	for i := range x {
		d := x[i] - s.Centroid
		sumDev += d * d * y[i]
	}
	s.Variance = sumDev / sumY
	s.Sigma = math.Sqrt(s.Variance)
	s.FWHM = GaussianFWHM * s.Sigma

	return s, nil
}

// LineFit holds a least-squares straight-line fit y = Slope*x + Intercept.
type LineFit struct {
	Slope     float64
	Intercept float64

	// SlopeVariance and InterceptVariance are the diagonal of the
	// parameter covariance matrix, estimated from the fit residuals.
	// Both are zero when the fit is exact or has no spare degrees of
	// freedom (n == 2).
	SlopeVariance     float64
	InterceptVariance float64

	// Correlation is Pearson's r between x and y.
	Correlation float64
}

// LinearFit fits a straight line to (x, y) by least squares.
// Requires at least two points with distinct x values.
func LinearFit(x, y []float64) (LineFit, error) {
	if len(x) != len(y) {
		return LineFit{}, ErrLengthMismatch
	}
	n := len(x)
	if n < 2 {
		return LineFit{}, ErrTooFewPoints
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxx, sxy, syy float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return LineFit{}, ErrTooFewPoints
	}

	fit := LineFit{
		Slope: sxy / sxx,
	}
	fit.Intercept = meanY - fit.Slope*meanX

	if syy > 0 {
		fit.Correlation = sxy / math.Sqrt(sxx*syy)
	}

	if n > 2 {
		var ssr float64
		for i := range x {
			r := y[i] - (fit.Slope*x[i] + fit.Intercept)
			ssr += r * r
		}
		residVar := ssr / float64(n-2)
		fit.SlopeVariance = residVar / sxx
		fit.InterceptVariance = residVar * (1/float64(n) + meanX*meanX/sxx)
	}

	return fit, nil
}
