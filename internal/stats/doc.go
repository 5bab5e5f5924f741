// Package stats provides small numeric routines for peak characterisation.
//
// These back alignment scans: given arrays of x positions and y intensities,
// they report the weighted centroid, peak width (sigma and FWHM), and a
// least-squares line fit with covariance estimates.
//
// All functions are pure and allocation-light; inputs are never modified.
package stats
