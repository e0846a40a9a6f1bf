// Package analysis derives numeric views from extracted series: derivative,
// summary statistics, frequency spectrum and pairwise correlation. Inputs are
// plain (timestamps, values) slice pairs as produced by dataset.Series.
//
// Insufficient input is never an error here: every function degrades to an
// empty or neutral result so callers can render "not enough data" uniformly.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one full-resolution series.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64 // population standard deviation
	Range  float64
}

// Describe computes summary statistics over vals. ok is false for an empty
// series.
func Describe(vals []float64) (Stats, bool) {
	if len(vals) == 0 {
		return Stats{}, false
	}

	mean := stat.Mean(vals, nil)
	min := floats.Min(vals)
	max := floats.Max(vals)

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	n := len(sorted)
	var median float64
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}

	return Stats{
		Count:  n,
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		Std:    math.Sqrt(stat.MomentAbout(2, vals, mean, nil)),
		Range:  max - min,
	}, true
}

// Derivative computes the numerical rate of change of vals with respect to
// ts: central differences at interior points, one-sided differences at the
// boundaries. Fewer than two points yields nil.
func Derivative(ts, vals []float64) []float64 {
	n := len(vals)
	if n < 2 || len(ts) != n {
		return nil
	}

	out := make([]float64, n)
	out[0] = (vals[1] - vals[0]) / (ts[1] - ts[0])
	out[n-1] = (vals[n-1] - vals[n-2]) / (ts[n-1] - ts[n-2])
	for i := 1; i < n-1; i++ {
		out[i] = (vals[i+1] - vals[i-1]) / (ts[i+1] - ts[i-1])
	}
	return out
}

// Correlation returns the Pearson coefficient between two series. Mismatched
// lengths, fewer than two points, or a zero-variance input all yield the
// neutral 0.0.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// CorrelationMatrix returns the pairwise Pearson matrix for a set of series,
// with 1.0 on the diagonal.
func CorrelationMatrix(series [][]float64) [][]float64 {
	n := len(series)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := Correlation(series[i], series[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return matrix
}
