package combine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/austinkregel/beatparser/internal/detect"
)

// Streams holds one candidate slice per detector, the combiner's input.
type Streams struct {
	Onset    []detect.Candidate
	Tempo    []detect.Candidate
	Spectral []detect.Candidate
}

// RefinerConfig controls the multi-pass refiner (spec.md §4.7).
type RefinerConfig struct {
	Enabled       bool
	GenreAdaptive bool
}

// DefaultRefinerConfig returns spec.md §6's defaults (both enabled).
func DefaultRefinerConfig() RefinerConfig {
	return RefinerConfig{Enabled: true, GenreAdaptive: true}
}

// Result is the refiner's output: the accepted candidate set, the genre
// hint classified for the refined pass (GenreUnknown if refinement did not
// run or genre adaptation is off; reported even when the refined pass is
// rejected), and whether the refined pass was accepted over the initial one.
type Result struct {
	Candidates []detect.Candidate
	Genre      Genre
	Refined    bool
}

// Refine runs the initial combination, and if multi-pass refinement is
// enabled, derives coarse descriptors, maps them to a genre-adapted
// preset, re-combines, and accepts the refined pass only if its mean
// confidence is at least the initial pass's (spec.md §4.7 step 5).
func Refine(streams Streams, spectra [][]float64, sampleRate, fftSize int, tempo detect.TempoEstimate, baseCfg Config, rcfg RefinerConfig) Result {
	initial := Combine(streams.Onset, streams.Tempo, streams.Spectral, tempo.Stability, baseCfg)

	if !rcfg.Enabled {
		return Result{Candidates: initial, Genre: GenreUnknown}
	}

	descriptors := computeDescriptors(streams.Tempo, spectra, sampleRate, fftSize, tempo)
	genre := GenreUnknown
	refinedCfg := baseCfg
	if rcfg.GenreAdaptive {
		genre = ClassifyGenre(descriptors)
		preset := PresetFor(genre)
		refinedCfg.Weights = preset.Weights
		refinedCfg.Tolerance = preset.Tolerance
		refinedCfg.ConfidenceThreshold = preset.ConfidenceThreshold
	}

	refined := Combine(streams.Onset, streams.Tempo, streams.Spectral, tempo.Stability, refinedCfg)

	if meanConfidence(refined) >= meanConfidence(initial) {
		return Result{Candidates: refined, Genre: genre, Refined: true}
	}
	return Result{Candidates: initial, Genre: genre, Refined: false}
}

// computeDescriptors derives the coarse features spec.md §4.7 names:
// percussive-band energy ratio (via detect.BandEnergyRatio) and
// spectral-centroid mean (via spectralCentroidNormalized below), grounded on
// internal/analysis.InstrumentDetector/FeatureExtractor, and
// inter-beat-interval coefficient of variation from the tempo grid.
func computeDescriptors(tempoCandidates []detect.Candidate, spectra [][]float64, sampleRate, fftSize int, tempo detect.TempoEstimate) Descriptors {
	var percussiveSum, centroidSum float64
	for _, spectrum := range spectra {
		percussiveSum += detect.BandEnergyRatio(spectrum, sampleRate, fftSize, 50, 200) +
			detect.BandEnergyRatio(spectrum, sampleRate, fftSize, 2000, 8000)
		centroidSum += spectralCentroidNormalized(spectrum, sampleRate, fftSize)
	}
	n := float64(len(spectra))
	percussiveRatio, centroidMean := 0.0, 0.0
	if n > 0 {
		percussiveRatio = percussiveSum / n / 2 // average of the two bands' ratios
		centroidMean = centroidSum / n
	}

	return Descriptors{
		TempoStability:   tempo.Stability,
		PercussiveRatio:  percussiveRatio,
		SpectralCentroid: centroidMean,
		IntervalCV:       intervalCoefficientOfVariation(tempoCandidates),
		BPM:              tempo.BPM,
	}
}

func spectralCentroidNormalized(spectrum []float64, sampleRate, fftSize int) float64 {
	freqPerBin := float64(sampleRate) / float64(fftSize)
	var weightedSum, sum float64
	for i, mag := range spectrum {
		freq := float64(i) * freqPerBin
		weightedSum += freq * mag
		sum += mag
	}
	if sum == 0 {
		return 0
	}
	centroid := weightedSum / sum
	normalized := centroid / 20000.0
	return clamp01(normalized)
}

// intervalCoefficientOfVariation computes std/mean of the intervals between
// successive beat timestamps using gonum/stat, as spec.md §4.7 names directly.
func intervalCoefficientOfVariation(beats []detect.Candidate) float64 {
	if len(beats) < 3 {
		return 0
	}
	intervals := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		intervals = append(intervals, beats[i].Timestamp-beats[i-1].Timestamp)
	}
	mean := stat.Mean(intervals, nil)
	if mean == 0 {
		return 0
	}
	std := stat.StdDev(intervals, nil)
	return std / mean
}

func meanConfidence(candidates []detect.Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	confidences := make([]float64, len(candidates))
	for i, c := range candidates {
		confidences[i] = c.Confidence
	}
	return stat.Mean(confidences, nil)
}
