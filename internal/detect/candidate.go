// Package detect implements the three peer beat/onset detectors: spectral
// flux onset detection, autocorrelation tempo estimation, and banded
// spectral-flux peak picking. All three consume a shared novelty function
// computed once over the prepared audio (see novelty.go).
package detect

import "math"

// Source tags the detector that produced a Candidate.
type Source string

const (
	SourceOnset    Source = "onset"
	SourceTempo    Source = "tempo"
	SourceFlux     Source = "flux"
	SourceCombined Source = "combined"
)

// Candidate is a single detected beat/onset instant with provenance.
type Candidate struct {
	Timestamp  float64
	Confidence float64
	Strength   float64
	Source     Source
	Metadata   map[string]float64
}

// TempoEstimate is the tempo detector's global BPM/phase/stability output.
type TempoEstimate struct {
	BPM           float64
	Confidence    float64
	Phase         float64
	Stability     float64
	TimeSignature int // beats per bar; 0 means unreported
}

// sigmoid maps a centered novelty-above-threshold margin to (0,1) confidence.
func sigmoid(x, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	return 1.0 / (1.0 + math.Exp(-x/scale))
}
