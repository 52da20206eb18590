package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

var (
	ErrTooShort        = errors.New("analysis: need at least 4 samples")
	ErrInvalidInterval = errors.New("analysis: sample interval must be positive")
)

// Spectrum is the one-sided magnitude spectrum of a sampled series.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// Detrend returns data with its mean removed.
func Detrend(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PadPow2 zero-pads data to the next power of two.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// PowerSpectrum returns the magnitudes of the first half of the FFT of data.
func PowerSpectrum(data []float64) []float64 {
	coeffs := fft.FFTReal(data)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// NewSpectrum detrends and pads data sampled every interval seconds and
// returns its spectrum with bin frequencies in hertz.
func NewSpectrum(data []float64, interval float64) (*Spectrum, error) {
	if len(data) < 4 {
		return nil, ErrTooShort
	}
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return nil, ErrInvalidInterval
	}

	padded := PadPow2(Detrend(data))
	ps := PowerSpectrum(padded)

	df := 1 / (float64(len(padded)) * interval)
	freqs := make([]float64, len(ps))
	for i := range freqs {
		freqs[i] = float64(i) * df
	}

	return &Spectrum{Freqs: freqs, Power: ps}, nil
}

// Dominant returns the frequency and magnitude of the strongest non-DC bin.
func (s *Spectrum) Dominant() (float64, float64) {
	idx := 0
	peak := 0.0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > peak {
			peak = s.Power[i]
			idx = i
		}
	}
	if idx == 0 {
		return 0, 0
	}
	return s.Freqs[idx], peak
}

// Band returns the part of the spectrum at or below maxFreq.
func (s *Spectrum) Band(maxFreq float64) *Spectrum {
	n := sort.SearchFloat64s(s.Freqs, maxFreq)
	if n < len(s.Freqs) && s.Freqs[n] == maxFreq {
		n++
	}
	return &Spectrum{Freqs: s.Freqs[:n], Power: s.Power[:n]}
}

// SampleInterval returns the median spacing of a sorted time column.
func SampleInterval(times []float64) float64 {
	if len(times) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i]-times[i-1])
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}
