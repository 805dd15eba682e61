package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude spectrum of data after removing the
// mean and applying a Hann window. Only the non-negative frequencies are
// returned, so bin k corresponds to k cycles per len(data) samples.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	buf := make([]complex128, n)
	for i, v := range data {
		window := 1.0
		if n > 1 {
			window = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
		buf[i] = complex((v-mean)*window, 0)
	}
	spectrum := fft.FFT(buf)

	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency of data, in
// cycles per sample, refined between bins by fitting a parabola through the
// log magnitudes around the peak. It returns 0 when there is no peak.
func DominantFrequency(data []float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 3 {
		return 0
	}

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0
	}

	offset := 0.0
	if peak+1 < len(ps) && ps[peak-1] > 0 && ps[peak+1] > 0 {
		a, b, c := math.Log(ps[peak-1]), math.Log(ps[peak]), math.Log(ps[peak+1])
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	return (float64(peak) + offset) / float64(len(data))
}
