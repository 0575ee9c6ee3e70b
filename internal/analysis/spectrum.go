package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the one-sided spectrum of data
// after removing its mean. Bin k corresponds to k/(len(data)·dt) Hz.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	centred := make([]float64, len(data))
	mean := Mean(data)
	for i, v := range data {
		centred[i] = v - mean
	}

	spec := fft.FFTReal(centred)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin and its magnitude. A flat trace returns (0, 0).
func DominantFrequency(data []float64, dt float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] < 1e-12 {
		return 0, 0
	}
	return float64(best) / (float64(len(data)) * dt), ps[best]
}

func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Column extracts one column from recorded rows; short rows read as 0.
func Column(rows [][]float64, idx int) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if idx >= 0 && idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Settle returns the first time after which data stays within band of its
// final value, or -1 for an empty or mismatched trace.
func Settle(data, times []float64, band float64) float64 {
	n := len(data)
	if n == 0 || len(times) != n {
		return -1
	}
	final := data[n-1]
	for i := n - 1; i >= 0; i-- {
		if math.Abs(data[i]-final) > band {
			return times[i+1]
		}
	}
	return times[0]
}
