package dsp

import (
	"math"
	"testing"
)

func TestNewFFTRejectsTooSmallSize(t *testing.T) {
	if _, err := NewFFT(2); err == nil {
		t.Fatal("expected error for FFT size < 4")
	}
}

func TestFFTSinusoidPowerRoundTrip(t *testing.T) {
	const (
		sampleRate = 8192
		size       = 1024
		freq       = 440.0
	)
	fft, err := NewFFT(size)
	if err != nil {
		t.Fatalf("NewFFT: %v", err)
	}

	signal := make([]float64, size)
	var timeDomainPower float64
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		timeDomainPower += signal[i] * signal[i]
	}

	coeffs := fft.Transform(signal)
	power := Power(coeffs)

	var spectralPower float64
	for i, p := range power {
		weight := 2.0
		if i == 0 || i == len(power)-1 {
			weight = 1.0
		}
		spectralPower += weight * p
	}
	spectralPower /= float64(size)

	relErr := math.Abs(spectralPower-timeDomainPower) / timeDomainPower
	if relErr > 1e-4 {
		t.Errorf("spectral power %v vs time-domain power %v, relative error %v exceeds 1e-4", spectralPower, timeDomainPower, relErr)
	}
}

func TestFFTZeroPadsShortInput(t *testing.T) {
	fft, err := NewFFT(64)
	if err != nil {
		t.Fatalf("NewFFT: %v", err)
	}
	coeffs := fft.Transform([]float64{1, 1, 1, 1})
	if len(coeffs) != fft.HalfSpectrumLen() {
		t.Errorf("expected %d bins, got %d", fft.HalfSpectrumLen(), len(coeffs))
	}
}

func TestMagnitudeNonNegative(t *testing.T) {
	fft, _ := NewFFT(16)
	coeffs := fft.Transform([]float64{1, -1, 1, -1, 1, -1, 1, -1})
	for i, m := range Magnitude(coeffs) {
		if m < 0 {
			t.Errorf("magnitude[%d] = %v, want non-negative", i, m)
		}
	}
}

func TestBinFrequency(t *testing.T) {
	got := BinFrequency(10, 1024, 44100)
	want := 10.0 * 44100.0 / 1024.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("BinFrequency = %v, want %v", got, want)
	}
}
