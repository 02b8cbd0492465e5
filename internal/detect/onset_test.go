package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnsetDetectorOnClickTrain(t *testing.T) {
	samples := clickTrain(44100, 0.5, 10.0)
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	require.NoError(t, err)

	det := NewOnsetDetector(DefaultOnsetConfig())
	candidates := det.Detect(n)

	require.NotEmpty(t, candidates, "expected onset candidates on a click train")
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
		assert.Equal(t, SourceOnset, c.Source)
	}
}

func TestOnsetDetectorOnSilenceIsEmpty(t *testing.T) {
	samples := make([]float64, 44100)
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	require.NoError(t, err)

	det := NewOnsetDetector(DefaultOnsetConfig())
	candidates := det.Detect(n)
	assert.Empty(t, candidates, "expected no onsets on silence")
}
