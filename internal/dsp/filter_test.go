package dsp

import (
	"math"
	"testing"
)

func TestNewIIRFilterRejectsInvalidCutoff(t *testing.T) {
	if _, err := NewIIRFilter(FilterLowPass, 0, 0, 44100, 2); err == nil {
		t.Fatal("expected error for zero cutoff")
	}
	if _, err := NewIIRFilter(FilterLowPass, 30000, 0, 44100, 2); err == nil {
		t.Fatal("expected error for cutoff above Nyquist")
	}
}

func TestNewIIRFilterRejectsBandPassWithoutBandwidth(t *testing.T) {
	if _, err := NewIIRFilter(FilterBandPass, 1000, 0, 44100, 2); err == nil {
		t.Fatal("expected error for band-pass with non-positive bandwidth")
	}
}

func TestIIRFilterAttenuatesOutOfBand(t *testing.T) {
	f, err := NewIIRFilter(FilterLowPass, 500, 0, 44100, 4)
	if err != nil {
		t.Fatalf("NewIIRFilter: %v", err)
	}

	const n = 4096
	low := make([]float64, n)
	high := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / 44100.0
		low[i] = sine(100, t)
		high[i] = sine(10000, t)
	}

	lowOut := f.Apply(low)
	f.Reset()
	highOut := f.Apply(high)

	if rms(lowOut) <= rms(highOut) {
		t.Errorf("expected low-pass to preserve 100Hz (rms %v) more than 10kHz (rms %v)", rms(lowOut), rms(highOut))
	}
}

func sine(freq, t float64) float64 {
	return math.Sin(2 * math.Pi * freq * t)
}

func rms(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
