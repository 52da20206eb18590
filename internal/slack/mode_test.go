package slack

import (
	"math"
	"testing"
)

func TestClassifyToleranceEdge(t *testing.T) {
	rest := 100.0
	ratio := DefaultToleranceRatio
	low := rest - rest*ratio
	high := rest + rest*ratio

	tests := []struct {
		name    string
		current float64
		want    Deformation
	}{
		{"at rest", rest, Neutral},
		{"on lower edge", low, Neutral},
		{"just below lower edge", math.Nextafter(low, 0), Compression},
		{"on upper edge", high, Neutral},
		{"just above upper edge", math.Nextafter(high, math.Inf(1)), Tension},
		{"five percent short", 95, Compression},
		{"stretched", 100.6, Tension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(rest, tt.current, ratio); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", rest, tt.current, got, tt.want)
			}
		})
	}
}

func TestIsSlack(t *testing.T) {
	tests := []struct {
		name                         string
		tensionOnly, compressionOnly bool
		d                            Deformation
		want                         bool
	}{
		{"cable compressed", true, false, Compression, true},
		{"cable neutral", true, false, Neutral, false},
		{"cable stretched", true, false, Tension, false},
		{"strut stretched", false, true, Tension, true},
		{"strut compressed", false, true, Compression, false},
		{"beam compressed", false, false, Compression, false},
		{"beam stretched", false, false, Tension, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSlack(tt.tensionOnly, tt.compressionOnly, tt.d); got != tt.want {
				t.Errorf("IsSlack = %v, want %v", got, tt.want)
			}
		})
	}
}

// A tension-only member is slack iff current < rest - rest*ratio.
func TestTensionOnlySlackThreshold(t *testing.T) {
	ratio := DefaultToleranceRatio
	for _, rest := range []float64{1, 37.5, 100, 480} {
		edge := rest - rest*ratio
		for _, current := range []float64{0, edge * 0.5, math.Nextafter(edge, 0), edge, rest, rest * 2} {
			got := IsSlack(true, false, Classify(rest, current, ratio))
			want := current < edge
			if got != want {
				t.Errorf("rest=%v current=%v: slack = %v, want %v", rest, current, got, want)
			}
		}
	}
}

func TestStress(t *testing.T) {
	if got := Stress(0.01, 20, false); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("Stress(1%%) = %v, want 0.2", got)
	}
	if got := Stress(-0.5, 20, false); got != 1 {
		t.Errorf("Stress should saturate at 1, got %v", got)
	}
	if got := Stress(0.3, 20, true); got != 0 {
		t.Errorf("slack members carry no stress, got %v", got)
	}
	if got := Strain(0, 10); got != 0 {
		t.Errorf("Strain with zero rest length = %v, want 0", got)
	}
}

func TestContractedLength(t *testing.T) {
	rest, ratio, period := 100.0, 0.3, 2.0
	if got := ContractedLength(rest, ratio, period, 0); math.Abs(got-rest) > 1e-9 {
		t.Errorf("t=0: %v, want %v", got, rest)
	}
	if got := ContractedLength(rest, ratio, period, period/2); math.Abs(got-70) > 1e-9 {
		t.Errorf("half period: %v, want 70", got)
	}
	if got := ContractedLength(rest, 0, period, 0.7); got != rest {
		t.Errorf("passive member changed length: %v", got)
	}
}
