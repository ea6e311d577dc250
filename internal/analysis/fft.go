package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data. The mean is removed first so bin 0 does not
// swamp the orbital peaks.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantPeriod estimates the strongest periodic component of a series
// sampled every interval seconds. It returns 0 when no peak exists.
func DominantPeriod(data []float64, interval float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || interval <= 0 {
		return 0
	}

	peak, idx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peak {
			peak, idx = ps[i], i
		}
	}
	if idx == 0 || peak < 1e-9*maxAbs(data) {
		return 0
	}

	return float64(len(data)) * interval / float64(idx)
}

func maxAbs(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		if a := abs(v); a > m {
			m = a
		}
	}
	return m
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
