package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT wraps gonum's real-input FFT, constructed once per transform length
// and reused across frames the way internal/audio.AudioAnalyzer and
// internal/analysis.FeatureExtractor in the daemon do.
type FFT struct {
	size int
	fft  *fourier.FFT
}

// NewFFT builds an FFT for real input of the given length. Non-power-of-two
// lengths are accepted: gonum's FFT handles any length directly, and
// Transform zero-pads short input up to size.
func NewFFT(size int) (*FFT, error) {
	if size < 4 {
		return nil, fmt.Errorf("dsp: FFT size must be >= 4, got %d", size)
	}
	return &FFT{size: size, fft: fourier.NewFFT(size)}, nil
}

// Size returns the transform length.
func (f *FFT) Size() int { return f.size }

// HalfSpectrumLen returns N/2+1, the number of non-negative-frequency bins.
func (f *FFT) HalfSpectrumLen() int { return f.size/2 + 1 }

// Transform computes the half-spectrum (N/2+1 complex bins) of real input.
// Input shorter than size is zero-padded; longer input is truncated to size.
func (f *FFT) Transform(real []float64) []complex128 {
	in := real
	if len(in) != f.size {
		padded := make([]float64, f.size)
		copy(padded, in)
		in = padded
	}
	return f.fft.Coefficients(nil, in)
}

// Magnitude converts half-spectrum complex bins to magnitudes.
func Magnitude(coeffs []complex128) []float64 {
	mag := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		mag[i] = math.Sqrt(re*re + im*im)
	}
	return mag
}

// Power converts half-spectrum complex bins to power (magnitude squared).
func Power(coeffs []complex128) []float64 {
	pow := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		pow[i] = re*re + im*im
	}
	return pow
}

// BinFrequency returns the center frequency in Hz of FFT bin i for a
// transform of the given size at the given sample rate.
func BinFrequency(bin, size, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(size)
}
