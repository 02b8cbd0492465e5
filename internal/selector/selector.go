// Package selector implements spec.md §4.8's four beat-selection methods:
// energy, regular, musical, and adaptive. Each narrows a confidence-ordered
// candidate list down to at most N markers, the way
// SimilarityEngine.FindSimilar narrows a scored edge list down to a
// requested count.
package selector

import (
	"math"
	"sort"

	"github.com/austinkregel/beatparser/internal/detect"
)

// Method selects which selection strategy to run.
type Method string

const (
	MethodEnergy   Method = "energy"
	MethodRegular  Method = "regular"
	MethodMusical  Method = "musical"
	MethodAdaptive Method = "adaptive"
)

// Config controls selection.
type Config struct {
	Method   Method
	Count    int
	Duration float64 // seconds, required by regular/musical
	Tolerance float64 // seconds, the combiner's τ; musical snaps within 2τ
}

// Select narrows candidates to at most cfg.Count markers using cfg.Method,
// resolving MethodAdaptive against tempo to one of the other three.
func Select(candidates []detect.Candidate, tempo detect.TempoEstimate, cfg Config) []detect.Candidate {
	method := cfg.Method
	if method == MethodAdaptive {
		method = resolveAdaptive(candidates, tempo)
	}

	var out []detect.Candidate
	switch method {
	case MethodRegular:
		out = selectRegular(candidates, cfg.Count, cfg.Duration)
	case MethodMusical:
		out = selectMusical(candidates, tempo, cfg.Count, cfg.Duration, cfg.Tolerance)
	default:
		out = selectEnergy(candidates, cfg.Count)
	}

	return dedupeAndOrder(out, cfg.Duration)
}

// resolveAdaptive implements spec.md §4.8's adaptive rule: prefer the
// tempo grid when stability is high, fall back to even spacing when
// confidence is already uniform, otherwise take the top-confidence set.
func resolveAdaptive(candidates []detect.Candidate, tempo detect.TempoEstimate) Method {
	if tempo.Stability >= 0.6 {
		return MethodMusical
	}
	if confidenceStdDev(candidates) < 0.1 {
		return MethodRegular
	}
	return MethodEnergy
}

func confidenceStdDev(candidates []detect.Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.Confidence
	}
	mean := sum / float64(len(candidates))
	var variance float64
	for _, c := range candidates {
		d := c.Confidence - mean
		variance += d * d
	}
	variance /= float64(len(candidates))
	return math.Sqrt(variance)
}

// selectEnergy keeps the top-N candidates by confidence, then re-sorts by
// timestamp.
func selectEnergy(candidates []detect.Candidate, n int) []detect.Candidate {
	sorted := append([]detect.Candidate{}, candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// selectRegular partitions [0, duration] into n equal intervals and keeps
// the highest-confidence candidate from each non-empty interval.
func selectRegular(candidates []detect.Candidate, n int, duration float64) []detect.Candidate {
	if n <= 0 || duration <= 0 {
		return nil
	}
	width := duration / float64(n)
	best := make([]*detect.Candidate, n)
	for i := range candidates {
		c := candidates[i]
		idx := int(c.Timestamp / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		if best[idx] == nil || c.Confidence > best[idx].Confidence {
			cc := c
			best[idx] = &cc
		}
	}
	out := make([]detect.Candidate, 0, n)
	for _, b := range best {
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

// selectMusical places n markers on the tempo grid (aligned to tempo's
// phase) and snaps each to the nearest candidate within 2*tolerance;
// unmatched grid positions are dropped.
func selectMusical(candidates []detect.Candidate, tempo detect.TempoEstimate, n int, duration, tolerance float64) []detect.Candidate {
	if n <= 0 || duration <= 0 || tempo.BPM <= 0 {
		return selectEnergy(candidates, n)
	}
	beatPeriod := 60.0 / tempo.BPM
	totalBeats := duration / beatPeriod
	if totalBeats <= 0 {
		return nil
	}
	beatsPerMarker := math.Round(totalBeats / float64(n))
	if beatsPerMarker < 1 {
		beatsPerMarker = 1
	}
	gridInterval := beatsPerMarker * beatPeriod
	snapWindow := tolerance * 2

	out := make([]detect.Candidate, 0, n)
	for i := 0; i < n; i++ {
		target := tempo.Phase + float64(i)*gridInterval
		if target < 0 || target > duration {
			continue
		}
		if match, ok := nearestWithin(candidates, target, snapWindow); ok {
			out = append(out, match)
		}
	}
	return out
}

func nearestWithin(candidates []detect.Candidate, target, window float64) (detect.Candidate, bool) {
	var best detect.Candidate
	bestDist := math.Inf(1)
	found := false
	for _, c := range candidates {
		d := math.Abs(c.Timestamp - target)
		if d <= window && d < bestDist {
			best = c
			bestDist = d
			found = true
		}
	}
	return best, found
}

// dedupeAndOrder enforces the invariants spec.md §4.8 requires of every
// method: strictly increasing timestamps, no duplicates, and timestamps
// confined to (0, duration) when duration is known.
func dedupeAndOrder(candidates []detect.Candidate, duration float64) []detect.Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Timestamp < candidates[j].Timestamp
	})
	out := make([]detect.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Timestamp <= 0 {
			continue
		}
		if duration > 0 && c.Timestamp >= duration {
			continue
		}
		if len(out) > 0 && c.Timestamp == out[len(out)-1].Timestamp {
			continue
		}
		out = append(out, c)
	}
	return out
}
