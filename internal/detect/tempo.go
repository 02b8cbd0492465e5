package detect

import "math"

// TempoConfig controls the autocorrelation tempo detector (spec.md §4.4).
type TempoConfig struct {
	MinTempo float64
	MaxTempo float64

	// PreferredMinBPM/PreferredMaxBPM bias the half/double tie-break
	// toward a musically typical range, per spec.md's [90,140] default.
	PreferredMinBPM float64
	PreferredMaxBPM float64
	PreferRange     bool
}

// DefaultTempoConfig returns spec.md's defaults.
func DefaultTempoConfig() TempoConfig {
	return TempoConfig{
		MinTempo:        60,
		MaxTempo:        200,
		PreferredMinBPM: 90,
		PreferredMaxBPM: 140,
		PreferRange:     true,
	}
}

// TempoDetector estimates a global tempo and phase-aligned beat grid from
// the novelty function via autocorrelation.
type TempoDetector struct {
	cfg TempoConfig
}

// NewTempoDetector builds a tempo detector with the given configuration.
func NewTempoDetector(cfg TempoConfig) *TempoDetector {
	return &TempoDetector{cfg: cfg}
}

// Detect returns one candidate per beat on the estimated grid plus the
// global TempoEstimate.
func (d *TempoDetector) Detect(n *Novelty) ([]Candidate, TempoEstimate) {
	values := n.Values
	hopDuration := n.HopDuration()

	minLag := int(60.0 / d.cfg.MaxTempo / hopDuration)
	maxLag := int(60.0 / d.cfg.MinTempo / hopDuration)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(values) {
		maxLag = len(values) - 1
	}
	if maxLag < minLag {
		maxLag = minLag
	}

	scores := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		scores[lag] = autocorrelate(values, lag)
	}

	bestLag := argmax(scores, minLag, maxLag)
	bestScore := scores[bestLag]

	bestLag = preferMusicalRange(scores, bestLag, minLag, maxLag, hopDuration, d.cfg)

	runnerUpLag := secondPeakLag(scores, bestLag, minLag, maxLag)
	runnerUpScore := 0.0
	if runnerUpLag >= 0 {
		runnerUpScore = scores[runnerUpLag]
	}

	stability := 0.0
	if bestScore > 0 {
		stability = clamp01(runnerUpScore / bestScore)
		// A clear single peak (low runner-up) should read as *more*
		// stable, so invert: stability is high when the tempo estimate
		// is unambiguous.
		stability = 1 - stability
	}

	energy := autocorrelate(values, 0)
	normalizedScore := 0.0
	if energy > 0 {
		normalizedScore = clamp01(bestScore / energy)
	}

	period := float64(bestLag) * hopDuration
	bpm := 60.0 / period

	phase := estimatePhase(values, bestLag, hopDuration)

	candidates := buildBeatGrid(n, bestLag, phase, normalizedScore)

	estimate := TempoEstimate{
		BPM:        bpm,
		Confidence: normalizedScore,
		Phase:      phase,
		Stability:  stability,
	}
	return candidates, estimate
}

// autocorrelate computes the unnormalized autocorrelation of values at the
// given lag, accumulating in float64 to preserve stability over long
// novelty curves (spec.md §9 numerics note).
func autocorrelate(values []float64, lag int) float64 {
	var sum float64
	n := len(values) - lag
	for i := 0; i < n; i++ {
		sum += values[i] * values[i+lag]
	}
	return sum
}

func argmax(scores []float64, lo, hi int) int {
	best := lo
	for lag := lo; lag <= hi; lag++ {
		if scores[lag] > scores[best] {
			best = lag
		}
	}
	return best
}

// preferMusicalRange implements spec.md §4.4's half/double ambiguity
// tie-break: if a lag at roughly half or double the best lag scores
// within 10% and falls in the preferred BPM window while the best lag
// doesn't, prefer it.
func preferMusicalRange(scores []float64, bestLag, minLag, maxLag int, hopDuration float64, cfg TempoConfig) int {
	if !cfg.PreferRange {
		return bestLag
	}

	candidates := []int{bestLag / 2, bestLag * 2}
	bestScore := scores[bestLag]
	bestInRange := bpmInRange(60.0/(float64(bestLag)*hopDuration), cfg.PreferredMinBPM, cfg.PreferredMaxBPM)
	if bestInRange {
		return bestLag
	}

	for _, lag := range candidates {
		if lag < minLag || lag > maxLag {
			continue
		}
		ratio := scores[lag] / bestScore
		if ratio < 0.9 {
			continue // not within 10%
		}
		bpm := 60.0 / (float64(lag) * hopDuration)
		if bpmInRange(bpm, cfg.PreferredMinBPM, cfg.PreferredMaxBPM) {
			return lag
		}
	}
	return bestLag
}

func bpmInRange(bpm, lo, hi float64) bool {
	return bpm >= lo && bpm <= hi
}

// secondPeakLag finds the highest-scoring lag outside a small neighborhood
// of bestLag, used as the runner-up for stability.
func secondPeakLag(scores []float64, bestLag, lo, hi int) int {
	exclude := (hi - lo) / 20
	if exclude < 1 {
		exclude = 1
	}
	best := -1
	for lag := lo; lag <= hi; lag++ {
		if lag >= bestLag-exclude && lag <= bestLag+exclude {
			continue
		}
		if best < 0 || scores[lag] > scores[best] {
			best = lag
		}
	}
	return best
}

// estimatePhase cross-correlates a unit pulse train of the given period
// against the novelty curve over all offsets in [0,period) and returns the
// offset (in seconds) maximizing correlation.
func estimatePhase(values []float64, period int, hopDuration float64) float64 {
	if period < 1 {
		return 0
	}

	bestOffset := 0
	bestScore := math.Inf(-1)
	for offset := 0; offset < period; offset++ {
		var score float64
		for i := offset; i < len(values); i += period {
			score += values[i]
		}
		if score > bestScore {
			bestScore = score
			bestOffset = offset
		}
	}
	return float64(bestOffset) * hopDuration
}

// buildBeatGrid emits one candidate per beat on the phase-aligned grid,
// with confidence scaled by the local novelty value at that instant.
func buildBeatGrid(n *Novelty, periodFrames int, phaseSeconds float64, autocorrScore float64) []Candidate {
	if periodFrames < 1 {
		return nil
	}
	hopDuration := n.HopDuration()
	phaseFrames := int(phaseSeconds/hopDuration + 0.5)

	var candidates []Candidate
	for i := phaseFrames; i < len(n.Values); i += periodFrames {
		fit := localNoveltyFit(n.Values, i)
		candidates = append(candidates, Candidate{
			Timestamp:  n.FrameTime(i),
			Confidence: clamp01(autocorrScore * fit),
			Strength:   n.Values[i],
			Source:     SourceTempo,
		})
	}
	return candidates
}

// localNoveltyFit measures how well a grid instant aligns with a genuine
// novelty peak nearby, normalized to roughly [0,1].
func localNoveltyFit(values []float64, i int) float64 {
	mean, std := localMeanStd(values, i, 4)
	if std < 1e-9 {
		return 0.5
	}
	z := (values[i] - mean) / std
	return clamp01(0.5 + z/4)
}
