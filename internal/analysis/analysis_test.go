package analysis

import (
	"math"
	"testing"
)

func TestDescribeKnownValues(t *testing.T) {
	stats, ok := Describe([]float64{1, 2, 3, 4, 5})
	if !ok {
		t.Fatal("expected ok for a non-empty series")
	}

	if stats.Count != 5 {
		t.Errorf("count: expected 5, got %d", stats.Count)
	}
	if stats.Min != 1 || stats.Max != 5 {
		t.Errorf("min/max: expected 1/5, got %v/%v", stats.Min, stats.Max)
	}
	if stats.Mean != 3 {
		t.Errorf("mean: expected 3, got %v", stats.Mean)
	}
	if stats.Median != 3 {
		t.Errorf("median: expected 3, got %v", stats.Median)
	}
	if math.Abs(stats.Std-math.Sqrt(2)) > 1e-12 {
		t.Errorf("stddev: expected %v (population), got %v", math.Sqrt(2), stats.Std)
	}
	if stats.Range != 4 {
		t.Errorf("range: expected 4, got %v", stats.Range)
	}
}

func TestDescribeEvenCountMedian(t *testing.T) {
	stats, ok := Describe([]float64{4, 1, 3, 2})
	if !ok {
		t.Fatal("expected ok")
	}
	if stats.Median != 2.5 {
		t.Errorf("median of even count: expected 2.5, got %v", stats.Median)
	}
}

func TestDescribeEmpty(t *testing.T) {
	if _, ok := Describe(nil); ok {
		t.Error("expected ok=false for an empty series")
	}
}

func TestDerivativeLinearRamp(t *testing.T) {
	ts := []float64{0, 0.5, 1, 1.5, 2}
	vals := []float64{10, 15, 20, 25, 30} // slope 10 throughout

	d := Derivative(ts, vals)
	if len(d) != len(vals) {
		t.Fatalf("expected %d points, got %d", len(vals), len(d))
	}
	for i, v := range d {
		if math.Abs(v-10) > 1e-12 {
			t.Errorf("point %d: expected slope 10, got %v", i, v)
		}
	}
}

func TestDerivativeCentralDifference(t *testing.T) {
	// Quadratic t^2 sampled uniformly: the central difference recovers the
	// exact derivative 2t at interior points.
	ts := []float64{0, 1, 2, 3, 4}
	vals := []float64{0, 1, 4, 9, 16}

	d := Derivative(ts, vals)
	for i := 1; i < len(ts)-1; i++ {
		want := 2 * ts[i]
		if math.Abs(d[i]-want) > 1e-12 {
			t.Errorf("interior point %d: expected %v, got %v", i, want, d[i])
		}
	}
	// Boundaries are one-sided.
	if d[0] != 1 || d[len(d)-1] != 7 {
		t.Errorf("boundaries: expected 1 and 7, got %v and %v", d[0], d[len(d)-1])
	}
}

func TestDerivativeInsufficient(t *testing.T) {
	if d := Derivative([]float64{0}, []float64{1}); d != nil {
		t.Errorf("expected nil for a single point, got %v", d)
	}
}

func TestCorrelationBounds(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	neg := []float64{-1, -2, -3, -4, -5}

	if r := Correlation(a, a); math.Abs(r-1) > 1e-12 {
		t.Errorf("identical series: expected 1.0, got %v", r)
	}
	if r := Correlation(a, neg); math.Abs(r+1) > 1e-12 {
		t.Errorf("negated series: expected -1.0, got %v", r)
	}
	if r := Correlation(a, a[:3]); r != 0 {
		t.Errorf("mismatched lengths: expected 0.0, got %v", r)
	}
	if r := Correlation(a[:1], a[:1]); r != 0 {
		t.Errorf("single point: expected 0.0, got %v", r)
	}
	if r := Correlation(a, []float64{7, 7, 7, 7, 7}); r != 0 {
		t.Errorf("zero-variance input: expected 0.0, got %v", r)
	}
}

func TestCorrelationMatrix(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{-1, -2, -3, -4}

	m := CorrelationMatrix([][]float64{a, b})
	if m[0][0] != 1 || m[1][1] != 1 {
		t.Errorf("diagonal must be 1.0, got %v/%v", m[0][0], m[1][1])
	}
	if math.Abs(m[0][1]+1) > 1e-12 || m[0][1] != m[1][0] {
		t.Errorf("expected symmetric -1.0 off-diagonal, got %v/%v", m[0][1], m[1][0])
	}
}

func TestSpectrumInsufficient(t *testing.T) {
	ts := []float64{0, 1, 2}
	vals := []float64{1, 2, 3}

	freqs, mags := Spectrum(ts, vals)
	if len(freqs) != 0 || len(mags) != 0 {
		t.Fatalf("expected empty spectrum below %d samples, got %d/%d points",
			MinSpectrumSamples, len(freqs), len(mags))
	}
}

func TestSpectrumSinePeak(t *testing.T) {
	// 8 Hz sine sampled at 64 Hz for 2 seconds: 8 Hz falls exactly on a bin,
	// so the peak magnitude must land there despite the Hann window.
	const (
		rate = 64.0
		n    = 128
		tone = 8.0
	)
	ts := make([]float64, n)
	vals := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) / rate
		vals[i] = 5 * math.Sin(2*math.Pi*tone*ts[i])
	}

	freqs, mags := Spectrum(ts, vals)
	if len(freqs) != n/2 {
		t.Fatalf("expected %d one-sided bins after dropping DC, got %d", n/2, len(freqs))
	}

	peak := 0
	for i := range mags {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if math.Abs(freqs[peak]-tone) > 1e-9 {
		t.Errorf("expected spectral peak at %v Hz, got %v Hz", tone, freqs[peak])
	}

	// DC was removed and dropped: the lowest returned frequency is one bin
	// above zero.
	if freqs[0] <= 0 {
		t.Errorf("expected the zero-frequency bin to be dropped, first freq %v", freqs[0])
	}
	if math.Abs(freqs[0]-rate/n) > 1e-9 {
		t.Errorf("expected first bin at %v Hz, got %v", rate/n, freqs[0])
	}
}

func TestSpectrumMeanRemoval(t *testing.T) {
	// A pure offset has no spectral content once the mean is subtracted.
	ts := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	vals := []float64{42, 42, 42, 42, 42, 42, 42, 42}

	_, mags := Spectrum(ts, vals)
	for i, m := range mags {
		if m > 1e-12 {
			t.Errorf("bin %d: expected ~0 magnitude for a constant series, got %v", i, m)
		}
	}
}
