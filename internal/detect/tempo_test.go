package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempoDetectorOnClickTrainEstimates120BPM(t *testing.T) {
	samples := clickTrain(44100, 0.5, 10.0) // 2 clicks/sec == 120 BPM
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	require.NoError(t, err)

	det := NewTempoDetector(DefaultTempoConfig())
	candidates, estimate := det.Detect(n)

	assert.InDelta(t, 120, estimate.BPM, 10)
	assert.GreaterOrEqual(t, estimate.Stability, 0.0)
	assert.LessOrEqual(t, estimate.Stability, 1.0)
	require.NotEmpty(t, candidates, "expected beat-grid candidates")
	for _, c := range candidates {
		assert.Equal(t, SourceTempo, c.Source)
	}
}

func TestTempoDetectorMinEqualsMaxFixesTempo(t *testing.T) {
	samples := clickTrain(44100, 0.5, 6.0)
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	require.NoError(t, err)

	cfg := DefaultTempoConfig()
	cfg.MinTempo = 120
	cfg.MaxTempo = 120
	det := NewTempoDetector(cfg)
	_, estimate := det.Detect(n)

	assert.InDelta(t, 120, estimate.BPM, 1)
}

func TestPreferMusicalRangePrefersWindow(t *testing.T) {
	scores := make([]float64, 200)
	// Simulate an ambiguous peak at lag 50 (very fast tempo) and a
	// near-equal-scoring peak at its double, lag 100, which should fall
	// in the preferred BPM window once converted.
	scores[50] = 1.0
	scores[100] = 0.95
	hopDuration := 60.0 / 280.0 / 50.0 // arrange so lag 100 ~= preferred range
	cfg := DefaultTempoConfig()

	got := preferMusicalRange(scores, 50, 1, 199, hopDuration, cfg)
	assert.Equal(t, 100, got)
}
