package detect

// OnsetConfig controls the onset detector (spec.md §4.3).
type OnsetConfig struct {
	FrameSize       int
	HopSize         int
	LogFreqEmphasis bool
	PeakWindowMs    float64 // ~30ms default
	Alpha           float64 // adaptive threshold multiplier, default 1.5
	ConfidenceScale float64 // sigmoid scale
}

// DefaultOnsetConfig returns spec.md's defaults.
func DefaultOnsetConfig() OnsetConfig {
	return OnsetConfig{
		FrameSize:       2048,
		HopSize:         512,
		LogFreqEmphasis: true,
		PeakWindowMs:    30,
		Alpha:           1.5,
		ConfidenceScale: 0.5,
	}
}

// OnsetDetector finds onsets from peaks in the spectral-flux novelty curve.
type OnsetDetector struct {
	cfg OnsetConfig
}

// NewOnsetDetector builds an onset detector with the given configuration.
func NewOnsetDetector(cfg OnsetConfig) *OnsetDetector {
	return &OnsetDetector{cfg: cfg}
}

// Detect computes candidates from a precomputed novelty function.
func (d *OnsetDetector) Detect(n *Novelty) []Candidate {
	windowRadius := int(d.cfg.PeakWindowMs / 1000.0 / n.HopDuration())
	if windowRadius < 1 {
		windowRadius = 1
	}

	peaks := pickPeaks(n.Values, windowRadius, d.cfg.Alpha)

	candidates := make([]Candidate, 0, len(peaks))
	for _, i := range peaks {
		mean, std := localMeanStd(n.Values, i, windowRadius)
		threshold := mean + d.cfg.Alpha*std
		margin := n.Values[i] - threshold

		candidates = append(candidates, Candidate{
			Timestamp:  n.FrameTime(i),
			Confidence: clamp01(sigmoid(margin, d.cfg.ConfidenceScale)),
			Strength:   n.Values[i],
			Source:     SourceOnset,
		})
	}
	return candidates
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
