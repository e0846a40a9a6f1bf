package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

// MinSpectrumSamples is the smallest series a spectrum can be computed from.
const MinSpectrumSamples = 4

// Spectrum computes the one-sided magnitude spectrum of a series: the mean
// is removed, a Hann window applied, and the real FFT taken. The sample rate
// is derived from the mean spacing between consecutive timestamps, so the
// frequency axis is only meaningful for near-uniform sampling. Magnitudes
// are |X_k|/n and the zero-frequency bin is dropped. Fewer than
// MinSpectrumSamples points yields empty results, never an error.
func Spectrum(ts, vals []float64) (freqs, mags []float64) {
	n := len(vals)
	if n < MinSpectrumSamples || len(ts) != n {
		return nil, nil
	}

	mean := stat.Mean(vals, nil)
	buf := make([]float64, n)
	for i, v := range vals {
		buf[i] = v - mean
	}
	window.Hann(buf)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, buf)

	meanSpacing := (ts[n-1] - ts[0]) / float64(n-1)
	sampleRate := 1 / meanSpacing

	freqs = make([]float64, 0, len(coeffs)-1)
	mags = make([]float64, 0, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		freqs = append(freqs, fft.Freq(i)*sampleRate)
		mags = append(mags, cmplx.Abs(coeffs[i])/float64(n))
	}
	return freqs, mags
}
