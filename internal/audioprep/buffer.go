// Package audioprep turns raw PCM input into the mono, pipeline-rate
// AudioBuffer the detectors consume: downmix, resample, normalize, and an
// optional percussive-emphasis pre-filter.
package audioprep

import (
	"fmt"
	"math"
)

// Buffer is a validated, single-channel, finite-valued audio signal at a
// known sample rate.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer's length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Validate checks the invariants spec.md §4.2 requires: non-empty,
// at least frameSize samples, and every sample finite.
func Validate(samples []float64, frameSize int) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: audio buffer is empty", ErrEmptyAudio)
	}
	if frameSize > 0 && len(samples) < frameSize {
		return fmt.Errorf("%w: %d samples shorter than frame size %d", ErrTooShort, len(samples), frameSize)
	}
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: audio data contains invalid values at sample %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Peak returns the maximum absolute sample value.
func Peak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}
