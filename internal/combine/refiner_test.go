package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austinkregel/beatparser/internal/detect"
)

func flatSpectrum(n int, mag float64) []float64 {
	spectrum := make([]float64, n)
	for i := range spectrum {
		spectrum[i] = mag
	}
	return spectrum
}

func TestRefineDisabledReturnsInitialCombine(t *testing.T) {
	onset := []detect.Candidate{cand(1.0, 0.6, detect.SourceOnset)}
	tempo := []detect.Candidate{cand(1.01, 0.6, detect.SourceTempo)}
	streams := Streams{Onset: onset, Tempo: tempo}

	baseCfg := DefaultConfig()
	baseCfg.ConfidenceThreshold = 0

	result := Refine(streams, nil, 44100, 2048, detect.TempoEstimate{BPM: 120, Stability: 0.8}, baseCfg, RefinerConfig{Enabled: false})

	assert.False(t, result.Refined)
	assert.Equal(t, GenreUnknown, result.Genre)
	assert.NotEmpty(t, result.Candidates)
}

func TestRefineOnStrongBasePassReturnsCandidatesAndGenre(t *testing.T) {
	// Build onset+tempo streams that agree closely, all at high confidence,
	// so the base pass is already strong and the genre-adapted pass cannot
	// necessarily beat it; the call must not panic and must always return
	// a non-empty genre hint.
	var onset, tempo []detect.Candidate
	for i := 0; i < 8; i++ {
		ts := float64(i) * 0.5
		onset = append(onset, cand(ts, 0.9, detect.SourceOnset))
		tempo = append(tempo, cand(ts+0.01, 0.9, detect.SourceTempo))
	}
	streams := Streams{Onset: onset, Tempo: tempo}

	spectra := [][]float64{flatSpectrum(1024, 0.01), flatSpectrum(1024, 0.01)}

	baseCfg := DefaultConfig()
	result := Refine(streams, spectra, 44100, 2048, detect.TempoEstimate{BPM: 120, Stability: 0.9}, baseCfg, DefaultRefinerConfig())

	require.NotEmpty(t, result.Candidates)
	assert.NotEmpty(t, result.Genre)
}

func TestIntervalCoefficientOfVariationOfRegularBeatsIsLow(t *testing.T) {
	var beats []detect.Candidate
	for i := 0; i < 10; i++ {
		beats = append(beats, cand(float64(i)*0.5, 0.8, detect.SourceTempo))
	}
	cv := intervalCoefficientOfVariation(beats)
	assert.Less(t, cv, 0.01)
}

func TestIntervalCoefficientOfVariationNeedsThreeBeats(t *testing.T) {
	beats := []detect.Candidate{cand(0, 0.5, detect.SourceTempo), cand(0.5, 0.5, detect.SourceTempo)}
	assert.Zero(t, intervalCoefficientOfVariation(beats))
}

func TestMeanConfidenceOfEmptyIsZero(t *testing.T) {
	assert.Zero(t, meanConfidence(nil))
}
