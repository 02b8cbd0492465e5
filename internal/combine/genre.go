package combine

// Genre is a coarse genre hint used to select a refinement preset.
type Genre string

const (
	GenreElectronic Genre = "electronic"
	GenreRock       Genre = "rock"
	GenreHipHop     Genre = "hiphop"
	GenreClassical  Genre = "classical"
	GenreJazz       Genre = "jazz"
	GenreAmbient    Genre = "ambient"
	GenreWorld      Genre = "world"
	GenrePop        Genre = "pop"
	GenreUnknown    Genre = "unknown"
)

// Descriptors are the coarse, cheap-to-compute features spec.md §4.7 maps
// to a genre hint: tempo stability, percussive-band energy ratio, mean
// spectral centroid (normalized 0-1, as in the daemon's
// FeatureExtractor.SpectralCentroid/20000.0 convention), and inter-beat
// interval coefficient of variation.
type Descriptors struct {
	TempoStability   float64
	PercussiveRatio  float64
	SpectralCentroid float64
	IntervalCV       float64
	BPM              float64
}

// ClassifyGenre maps descriptors to a discrete genre hint via thresholds,
// generalizing internal/analysis.InstrumentDetector's weighted-threshold
// family-scoring pattern to a single discrete label. All-zero descriptors
// carry no evidence and map to GenreUnknown.
func ClassifyGenre(d Descriptors) Genre {
	if d == (Descriptors{}) {
		return GenreUnknown
	}
	switch {
	case d.PercussiveRatio > 0.6 && d.TempoStability > 0.7 && d.BPM >= 120 && d.BPM <= 135:
		return GenreElectronic
	case d.PercussiveRatio > 0.55 && d.IntervalCV < 0.15 && d.BPM >= 85 && d.BPM <= 105:
		return GenreHipHop
	case d.PercussiveRatio > 0.45 && d.TempoStability > 0.5 && d.BPM >= 100 && d.BPM <= 160:
		return GenreRock
	case d.PercussiveRatio < 0.15 && d.SpectralCentroid < 0.25 && d.TempoStability < 0.4:
		return GenreClassical
	case d.IntervalCV > 0.35 && d.TempoStability < 0.5:
		return GenreJazz
	case d.PercussiveRatio < 0.1 && d.TempoStability < 0.25:
		return GenreAmbient
	case d.SpectralCentroid > 0.5 && d.PercussiveRatio > 0.2 && d.PercussiveRatio < 0.45:
		return GenrePop
	case d.IntervalCV > 0.2 && d.PercussiveRatio > 0.2 && d.PercussiveRatio < 0.5:
		return GenreWorld
	default:
		return GenreUnknown
	}
}

// Preset bundles the combiner parameters a genre hint selects.
type Preset struct {
	Weights             Weights
	Tolerance           float64
	ConfidenceThreshold float64
	PreferredMinBPM     float64
	PreferredMaxBPM     float64
}

// PresetFor returns the parameter preset for a genre hint, per spec.md
// §4.7 ("genre hint selects a parameter preset (weights, tolerance τ,
// threshold, preferred BPM window)").
func PresetFor(g Genre) Preset {
	switch g {
	case GenreElectronic:
		return Preset{Weights: Weights{Onset: 0.3, Tempo: 0.5, Spectral: 0.2}, Tolerance: 0.04, ConfidenceThreshold: 0.5, PreferredMinBPM: 118, PreferredMaxBPM: 140}
	case GenreHipHop:
		return Preset{Weights: Weights{Onset: 0.45, Tempo: 0.35, Spectral: 0.2}, Tolerance: 0.05, ConfidenceThreshold: 0.45, PreferredMinBPM: 80, PreferredMaxBPM: 110}
	case GenreRock:
		return Preset{Weights: Weights{Onset: 0.45, Tempo: 0.4, Spectral: 0.15}, Tolerance: 0.05, ConfidenceThreshold: 0.5, PreferredMinBPM: 100, PreferredMaxBPM: 160}
	case GenreClassical:
		return Preset{Weights: Weights{Onset: 0.3, Tempo: 0.2, Spectral: 0.5}, Tolerance: 0.08, ConfidenceThreshold: 0.4, PreferredMinBPM: 60, PreferredMaxBPM: 120}
	case GenreJazz:
		return Preset{Weights: Weights{Onset: 0.4, Tempo: 0.25, Spectral: 0.35}, Tolerance: 0.08, ConfidenceThreshold: 0.4, PreferredMinBPM: 80, PreferredMaxBPM: 200}
	case GenreAmbient:
		return Preset{Weights: Weights{Onset: 0.3, Tempo: 0.2, Spectral: 0.5}, Tolerance: 0.1, ConfidenceThreshold: 0.35, PreferredMinBPM: 60, PreferredMaxBPM: 100}
	case GenreWorld:
		return Preset{Weights: Weights{Onset: 0.4, Tempo: 0.3, Spectral: 0.3}, Tolerance: 0.06, ConfidenceThreshold: 0.45, PreferredMinBPM: 80, PreferredMaxBPM: 160}
	case GenrePop:
		return Preset{Weights: Weights{Onset: 0.4, Tempo: 0.4, Spectral: 0.2}, Tolerance: 0.05, ConfidenceThreshold: 0.5, PreferredMinBPM: 90, PreferredMaxBPM: 130}
	default:
		return Preset{Weights: Weights{Onset: 0.4, Tempo: 0.4, Spectral: 0.2}, Tolerance: 0.05, ConfidenceThreshold: 0.5, PreferredMinBPM: 90, PreferredMaxBPM: 140}
	}
}
