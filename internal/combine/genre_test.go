package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGenreElectronic(t *testing.T) {
	g := ClassifyGenre(Descriptors{PercussiveRatio: 0.7, TempoStability: 0.8, BPM: 128})
	assert.Equal(t, GenreElectronic, g)
}

func TestClassifyGenreClassical(t *testing.T) {
	g := ClassifyGenre(Descriptors{PercussiveRatio: 0.05, SpectralCentroid: 0.1, TempoStability: 0.1})
	assert.Equal(t, GenreClassical, g)
}

func TestClassifyGenreDefaultsToUnknown(t *testing.T) {
	g := ClassifyGenre(Descriptors{})
	assert.Equal(t, GenreUnknown, g)
}

func TestPresetForUnknownReturnsBaseWeights(t *testing.T) {
	p := PresetFor(GenreUnknown)
	assert.Equal(t, Weights{Onset: 0.4, Tempo: 0.4, Spectral: 0.2}, p.Weights)
}

func TestPresetForEveryGenreHasPositiveTolerance(t *testing.T) {
	genres := []Genre{GenreElectronic, GenreRock, GenreHipHop, GenreClassical, GenreJazz, GenreAmbient, GenreWorld, GenrePop, GenreUnknown}
	for _, g := range genres {
		p := PresetFor(g)
		assert.Positivef(t, p.Tolerance, "genre %v", g)
		sum := p.Weights.Onset + p.Weights.Tempo + p.Weights.Spectral
		assert.InDeltaf(t, 1.0, sum, 0.01, "genre %v weights should sum to ~1", g)
	}
}
