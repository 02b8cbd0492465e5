package detect

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/austinkregel/beatparser/internal/dsp"
)

// Novelty is the shared spectral-flux novelty function computed once per
// pipeline run and consumed by the onset detector directly and by the
// tempo detector via autocorrelation (spec.md §4.3/§4.4: "From the novelty
// curve (reuse 4.3's)...").
type Novelty struct {
	Values     []float64   // detection function, one value per frame
	Raw        []float64   // pre-normalization novelty, same length
	Spectra    [][]float64 // magnitude spectrum per frame, for banded flux
	SampleRate int
	FrameSize  int
	HopSize    int
}

// ComputeNovelty frames the signal with a Hann window, computes the
// magnitude spectrum per frame, and derives a half-wave-rectified
// spectral-flux novelty curve, optionally weighted to emphasize kick
// (50-200Hz) and snare/hats (2-8kHz) bands per spec.md §4.3, then
// normalizes by a local mean over an ~0.5s window.
func ComputeNovelty(samples []float64, sampleRate, frameSize, hopSize int, logFreqEmphasis bool) (*Novelty, error) {
	frames, _, err := dsp.Frames(samples, frameSize, hopSize, true)
	if err != nil {
		return nil, err
	}

	window, err := dsp.Window(dsp.WindowHann, frameSize)
	if err != nil {
		return nil, err
	}
	fft, err := dsp.NewFFT(frameSize)
	if err != nil {
		return nil, err
	}

	spectra := make([][]float64, len(frames))
	weights := emphasisWeights(fft.HalfSpectrumLen(), sampleRate, frameSize, logFreqEmphasis)

	raw := make([]float64, len(frames))
	var prev []float64
	for i, frame := range frames {
		windowed := make([]float64, frameSize)
		copy(windowed, frame)
		dsp.ApplyWindow(windowed, window)

		mag := dsp.Magnitude(fft.Transform(windowed))
		spectra[i] = mag

		if prev != nil {
			var flux float64
			for k, m := range mag {
				d := m - prev[k]
				if d > 0 {
					flux += d * weights[k]
				}
			}
			raw[i] = flux
		}
		prev = mag
	}

	values := normalizeByLocalMean(raw, localMeanWindowFrames(sampleRate, hopSize))

	return &Novelty{
		Values:     values,
		Raw:        raw,
		Spectra:    spectra,
		SampleRate: sampleRate,
		FrameSize:  frameSize,
		HopSize:    hopSize,
	}, nil
}

// emphasisWeights returns a per-bin weight emphasizing kick (50-200Hz) and
// snare/hat (2-8kHz) bands, or a flat weight of 1 when disabled.
func emphasisWeights(numBins, sampleRate, fftSize int, enabled bool) []float64 {
	w := make([]float64, numBins)
	for i := range w {
		w[i] = 1.0
	}
	if !enabled {
		return w
	}
	for i := range w {
		freq := dsp.BinFrequency(i, fftSize, sampleRate)
		switch {
		case freq >= 50 && freq <= 200:
			w[i] = 1.5
		case freq >= 2000 && freq <= 8000:
			w[i] = 1.3
		}
	}
	return w
}

// localMeanWindowFrames converts a ~0.5s smoothing window to frame count.
func localMeanWindowFrames(sampleRate, hopSize int) int {
	hopDuration := float64(hopSize) / float64(sampleRate)
	n := int(0.5 / hopDuration)
	if n < 1 {
		n = 1
	}
	return n
}

// normalizeByLocalMean divides each value by the mean of a centered window
// around it (floored at a small epsilon to avoid blowing up on silence).
func normalizeByLocalMean(values []float64, windowFrames int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := range values {
		lo := i - windowFrames
		if lo < 0 {
			lo = 0
		}
		hi := i + windowFrames
		if hi >= n {
			hi = n - 1
		}
		sum := floats.Sum(values[lo : hi+1])
		mean := sum / float64(hi-lo+1)
		if mean < 1e-9 {
			mean = 1e-9
		}
		out[i] = values[i] / mean
	}
	return out
}

// FrameTime returns the center time in seconds of frame index i.
func (n *Novelty) FrameTime(i int) float64 {
	return dsp.FrameCenterTime(i, n.FrameSize, n.HopSize, n.SampleRate)
}

// HopDuration returns the time in seconds between successive frames.
func (n *Novelty) HopDuration() float64 {
	return float64(n.HopSize) / float64(n.SampleRate)
}

// localMeanStd returns the mean and standard deviation of values in a
// window of radius w frames centered at i, clamped to the slice bounds.
func localMeanStd(values []float64, i, w int) (mean, std float64) {
	n := len(values)
	lo := i - w
	if lo < 0 {
		lo = 0
	}
	hi := i + w
	if hi >= n {
		hi = n - 1
	}
	count := hi - lo + 1
	window := values[lo : hi+1]

	mean = floats.Sum(window) / float64(count)

	var sqSum float64
	for _, v := range window {
		d := v - mean
		sqSum += d * d
	}
	std = math.Sqrt(sqSum / float64(count))
	return
}

// pickPeaks finds local maxima in values exceeding an adaptive threshold
// (local mean + alpha*local std) over a ±windowRadius frame neighborhood,
// matching spec.md §4.3's peak-picking rule. Returns frame indices.
func pickPeaks(values []float64, windowRadius int, alpha float64) []int {
	var peaks []int
	n := len(values)
	for i := 0; i < n; i++ {
		lo := i - windowRadius
		if lo < 0 {
			lo = 0
		}
		hi := i + windowRadius
		if hi >= n {
			hi = n - 1
		}

		if floats.Max(values[lo:hi+1]) > values[i] {
			continue
		}

		mean, std := localMeanStd(values, i, windowRadius)
		threshold := mean + alpha*std
		if values[i] > threshold {
			peaks = append(peaks, i)
		}
	}
	return peaks
}
