package audioprep

import (
	"fmt"

	"github.com/austinkregel/beatparser/internal/dsp"
)

// Config controls the preparation stage.
type Config struct {
	TargetSampleRate int
	FrameSize        int // used only for validation (TooShort)

	Normalize bool

	Filter       bool
	FilterLowHz  float64
	FilterHighHz float64
}

// DefaultConfig mirrors the pipeline defaults from spec.md §6: 44100Hz,
// peak normalization enabled, and the percussive-emphasis band-pass pre-filter
// disabled (its band edges preset to 30-8000Hz for when it is enabled).
func DefaultConfig() Config {
	return Config{
		TargetSampleRate: 44100,
		FrameSize:        2048,
		Normalize:        true,
		Filter:           false,
		FilterLowHz:      30,
		FilterHighHz:     8000,
	}
}

// Prepare downmixes raw (possibly interleaved multi-channel) PCM samples to
// mono, resamples to the configured rate, validates, and optionally
// normalizes/pre-filters. It is idempotent: preparing an already-mono,
// already-at-rate, already-normalized buffer leaves it unchanged in all
// but floating-point rounding.
func Prepare(raw []float64, channels, sourceRate int, cfg Config) (Buffer, error) {
	if channels < 1 {
		return Buffer{}, fmt.Errorf("audioprep: channel count must be >= 1, got %d", channels)
	}
	if sourceRate <= 0 {
		return Buffer{}, fmt.Errorf("audioprep: source sample rate must be positive, got %d", sourceRate)
	}

	mono := downmix(raw, channels)
	if err := Validate(mono, 0); err != nil {
		return Buffer{}, err
	}

	target := cfg.TargetSampleRate
	if target <= 0 {
		target = sourceRate
	}
	resampled := mono
	if sourceRate != target {
		resampled = resampleLinear(mono, sourceRate, target)
	}

	if err := Validate(resampled, cfg.FrameSize); err != nil {
		return Buffer{}, err
	}

	if cfg.Normalize {
		resampled = normalizePeak(resampled)
	}

	if cfg.Filter {
		bandwidth := cfg.FilterHighHz - cfg.FilterLowHz
		center := cfg.FilterLowHz + bandwidth/2
		if bandwidth > 0 && center > 0 && center < float64(target)/2 {
			filt, err := dsp.NewIIRFilter(dsp.FilterBandPass, center, bandwidth, target, 2)
			if err != nil {
				return Buffer{}, fmt.Errorf("audioprep: pre-filter: %w", err)
			}
			resampled = filt.Apply(resampled)
		}
	}

	return Buffer{Samples: resampled, SampleRate: target}, nil
}

// downmix averages interleaved channels into a mono signal, as
// internal/audio.AudioAnalyzer.ProcessSamples does for 16-bit PCM.
func downmix(raw []float64, channels int) []float64 {
	if channels == 1 {
		out := make([]float64, len(raw))
		copy(out, raw)
		return out
	}

	n := len(raw) / channels
	mono := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		base := i * channels
		for ch := 0; ch < channels; ch++ {
			sum += raw[base+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// resampleLinear performs linear-interpolation resampling, as permitted
// (not mandated) by spec.md §4.2: "linear interpolation is acceptable".
func resampleLinear(samples []float64, sourceRate, targetRate int) []float64 {
	if len(samples) == 0 || sourceRate == targetRate {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	ratio := float64(targetRate) / float64(sourceRate)
	outLen := int(float64(len(samples)) * ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)

	for i := range out {
		srcPos := float64(i) / ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)
		if idx+1 < len(samples) {
			out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		} else if idx < len(samples) {
			out[i] = samples[idx]
		}
	}
	return out
}

// normalizePeak scales samples so the peak absolute value is 1.0. Silent
// buffers (peak < 1e-6) are left untouched per spec.md §4.2.
func normalizePeak(samples []float64) []float64 {
	peak := Peak(samples)
	if peak < 1e-6 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	out := make([]float64, len(samples))
	scale := 1.0 / peak
	for i, s := range samples {
		out[i] = s * scale
	}
	return out
}
