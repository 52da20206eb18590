package analysis

import (
	"errors"
	"math"
	"testing"
)

func sine(freq, interval float64, n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*interval)
	}
	return data
}

func TestDominantFrequency(t *testing.T) {
	const interval = 0.01
	spectrum, err := NewSpectrum(sine(2, interval, 400), interval)
	if err != nil {
		t.Fatal(err)
	}

	freq, power := spectrum.Dominant()
	binWidth := 1 / (512 * interval)
	if math.Abs(freq-2) > binWidth {
		t.Errorf("expected ~2 hz, got %f", freq)
	}
	if power <= 0 {
		t.Errorf("expected positive power, got %f", power)
	}
}

func TestPadPow2(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{1, 1},
		{4, 4},
		{5, 8},
		{400, 512},
	}
	for _, tt := range tests {
		if got := len(PadPow2(make([]float64, tt.n))); got != tt.want {
			t.Errorf("PadPow2(%d): expected %d, got %d", tt.n, tt.want, got)
		}
	}
}

func TestDetrend(t *testing.T) {
	out := Detrend([]float64{1, 2, 3})
	want := []float64{-1, 0, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], out[i])
		}
	}
	if Detrend(nil) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestConstantSignalHasNoPeak(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 7
	}
	spectrum, err := NewSpectrum(data, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range spectrum.Power {
		if p > 1e-9 {
			t.Fatalf("bin %d: expected no power, got %g", i, p)
		}
	}
	if freq, _ := spectrum.Dominant(); freq != 0 {
		t.Errorf("expected no dominant frequency, got %f", freq)
	}
}

func TestNewSpectrumErrors(t *testing.T) {
	if _, err := NewSpectrum([]float64{1, 2}, 0.1); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	if _, err := NewSpectrum(make([]float64, 8), 0); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestBand(t *testing.T) {
	s := &Spectrum{
		Freqs: []float64{0, 1, 2, 3, 4},
		Power: []float64{0, 5, 1, 9, 2},
	}
	band := s.Band(2)
	if len(band.Freqs) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(band.Freqs))
	}
	if freq, _ := band.Dominant(); freq != 1 {
		t.Errorf("expected 1 hz inside band, got %f", freq)
	}
}

func TestSampleInterval(t *testing.T) {
	times := []float64{0, 0.1, 0.2, 0.3, 0.35}
	if got := SampleInterval(times); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.1, got %f", got)
	}
	if SampleInterval([]float64{1}) != 0 {
		t.Error("expected 0 for a single sample")
	}
}
