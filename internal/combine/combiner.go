// Package combine fuses the three detectors' candidate streams into a
// single confidence-weighted set (the hybrid combiner, spec.md §4.6) and
// optionally refines it across genre-adapted passes (spec.md §4.7).
package combine

import (
	"sort"

	"github.com/austinkregel/beatparser/internal/detect"
)

// Weights are the per-source fusion weights; they are renormalized
// internally so any positive values are accepted.
type Weights struct {
	Onset    float64
	Tempo    float64
	Spectral float64
}

func (w Weights) normalized() Weights {
	sum := w.Onset + w.Tempo + w.Spectral
	if sum <= 0 {
		return Weights{Onset: 1.0 / 3, Tempo: 1.0 / 3, Spectral: 1.0 / 3}
	}
	return Weights{Onset: w.Onset / sum, Tempo: w.Tempo / sum, Spectral: w.Spectral / sum}
}

func (w Weights) forSource(s detect.Source) float64 {
	switch s {
	case detect.SourceOnset:
		return w.Onset
	case detect.SourceTempo:
		return w.Tempo
	case detect.SourceFlux:
		return w.Spectral
	default:
		return 0
	}
}

// Config controls the combiner.
type Config struct {
	Weights             Weights
	Tolerance           float64 // seconds, default 0.05
	WidenedTolerance    float64 // seconds, default 0.07, used when tempo stability < WidenThreshold
	WidenThreshold      float64 // default 0.3
	ConfidenceThreshold float64 // default 0.5
}

// DefaultConfig returns spec.md §4.6/§6's default weights and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:             Weights{Onset: 0.4, Tempo: 0.4, Spectral: 0.2},
		Tolerance:           0.05,
		WidenedTolerance:    0.07,
		WidenThreshold:      0.3,
		ConfidenceThreshold: 0.5,
	}
}

// Combine merges the three detector streams, clusters candidates within a
// temporal tolerance, fuses each cluster's confidence by weighted
// consensus, and discards clusters below the confidence threshold.
func Combine(onset, tempo, flux []detect.Candidate, tempoStability float64, cfg Config) []detect.Candidate {
	weights := cfg.Weights.normalized()

	tolerance := cfg.Tolerance
	if tempoStability < cfg.WidenThreshold {
		tolerance = cfg.WidenedTolerance
	}

	merged := mergeByTimestamp(onset, tempo, flux)
	clusters := clusterByTolerance(merged, tolerance)
	clusters = mergeOverlappingClusters(clusters, tolerance)

	out := make([]detect.Candidate, 0, len(clusters))
	for _, cluster := range clusters {
		fused := fuse(cluster, weights)
		if fused.Confidence < cfg.ConfidenceThreshold {
			continue
		}
		out = append(out, fused)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func mergeByTimestamp(streams ...[]detect.Candidate) []detect.Candidate {
	var all []detect.Candidate
	for _, s := range streams {
		all = append(all, s...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp < all[j].Timestamp
	})
	return all
}

// clusterByTolerance performs the single left-to-right sweep spec.md §4.6
// describes: a candidate joins the current cluster if it falls within
// tolerance of the cluster's most recently added member.
func clusterByTolerance(sorted []detect.Candidate, tolerance float64) [][]detect.Candidate {
	if len(sorted) == 0 {
		return nil
	}

	var clusters [][]detect.Candidate
	current := []detect.Candidate{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		last := current[len(current)-1]
		if sorted[i].Timestamp-last.Timestamp <= tolerance {
			current = append(current, sorted[i])
		} else {
			clusters = append(clusters, current)
			current = []detect.Candidate{sorted[i]}
		}
	}
	clusters = append(clusters, current)
	return clusters
}

// mergeOverlappingClusters repeatedly merges adjacent clusters whose fused
// timestamps end up within tolerance after fusion, per spec.md §4.6's
// tie-break rule ("merge pairwise until no pair remains").
func mergeOverlappingClusters(clusters [][]detect.Candidate, tolerance float64) [][]detect.Candidate {
	changed := true
	for changed {
		changed = false
		var out [][]detect.Candidate
		i := 0
		for i < len(clusters) {
			if i+1 < len(clusters) {
				a := simpleFusedTimestamp(clusters[i])
				b := simpleFusedTimestamp(clusters[i+1])
				if b-a <= tolerance {
					merged := append(append([]detect.Candidate{}, clusters[i]...), clusters[i+1]...)
					out = append(out, merged)
					i += 2
					changed = true
					continue
				}
			}
			out = append(out, clusters[i])
			i++
		}
		clusters = out
	}
	return clusters
}

func simpleFusedTimestamp(cluster []detect.Candidate) float64 {
	var sum, weight float64
	for _, c := range cluster {
		w := c.Confidence
		if w <= 0 {
			w = 1e-6
		}
		sum += c.Timestamp * w
		weight += w
	}
	if weight == 0 {
		return cluster[0].Timestamp
	}
	return sum / weight
}

// fuse computes the confidence-weighted-mean timestamp, weighted-consensus
// confidence (scaled by a bonus proportional to the number of distinct
// contributing sources), and max strength for one cluster.
func fuse(cluster []detect.Candidate, weights Weights) detect.Candidate {
	sources := map[detect.Source]bool{}
	var weightedConfidenceSum, weightSum float64
	var weightedTimestampSum, timestampWeightSum float64
	var maxStrength float64

	for _, c := range cluster {
		sources[c.Source] = true

		w := weights.forSource(c.Source)
		weightedConfidenceSum += w * c.Confidence
		weightSum += w

		tw := c.Confidence
		if tw <= 0 {
			tw = 1e-6
		}
		weightedTimestampSum += c.Timestamp * tw
		timestampWeightSum += tw

		if c.Strength > maxStrength {
			maxStrength = c.Strength
		}
	}

	confidence := 0.0
	if weightSum > 0 {
		confidence = weightedConfidenceSum / weightSum
	}
	confidence *= consensusBonus(len(sources))

	timestamp := cluster[0].Timestamp
	if timestampWeightSum > 0 {
		timestamp = weightedTimestampSum / timestampWeightSum
	}

	return detect.Candidate{
		Timestamp:  timestamp,
		Confidence: clamp01(confidence),
		Strength:   maxStrength,
		Source:     detect.SourceCombined,
	}
}

// consensusBonus scales fused confidence up for agreement across more
// distinct detectors, per spec.md §4.6 (x1, x1.15, x1.3 for 1/2/3 sources).
func consensusBonus(distinctSources int) float64 {
	switch distinctSources {
	case 1:
		return 1.0
	case 2:
		return 1.15
	case 3:
		return 1.3
	default:
		return 1.0
	}
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
