package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austinkregel/beatparser/internal/detect"
)

func cand(ts, conf float64, src detect.Source) detect.Candidate {
	return detect.Candidate{Timestamp: ts, Confidence: conf, Strength: conf, Source: src}
}

func TestCombineMergesAgreeingSourcesWithBonus(t *testing.T) {
	onset := []detect.Candidate{cand(1.00, 0.6, detect.SourceOnset)}
	tempo := []detect.Candidate{cand(1.01, 0.6, detect.SourceTempo)}
	flux := []detect.Candidate{cand(1.02, 0.6, detect.SourceFlux)}

	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0
	out := Combine(onset, tempo, flux, 0.8, cfg)

	require.Len(t, out, 1, "expected all three sources to fuse into one cluster")
	assert.Greater(t, out[0].Confidence, 0.6, "consensus bonus should raise confidence above the input confidence")
	assert.Equal(t, detect.SourceCombined, out[0].Source)
}

func TestCombineDiscardsBelowThreshold(t *testing.T) {
	onset := []detect.Candidate{cand(1.0, 0.1, detect.SourceOnset)}
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.5
	out := Combine(onset, nil, nil, 0.8, cfg)
	assert.Empty(t, out, "candidate below threshold should be discarded")
}

func TestCombineWidensToleranceOnLowStability(t *testing.T) {
	// Two candidates 60ms apart: within the widened tolerance (0.07s) but
	// outside the default (0.05s).
	onset := []detect.Candidate{cand(1.00, 0.6, detect.SourceOnset)}
	tempo := []detect.Candidate{cand(1.06, 0.6, detect.SourceTempo)}

	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0

	stable := Combine(onset, tempo, nil, 0.8, cfg)
	unstable := Combine(onset, tempo, nil, 0.1, cfg)

	assert.Len(t, stable, 2, "high stability should keep separate clusters at the default tolerance")
	assert.Len(t, unstable, 1, "low stability should widen tolerance enough to merge")
}

func TestCombineOutputIsOrderedByTimestamp(t *testing.T) {
	onset := []detect.Candidate{cand(2.0, 0.9, detect.SourceOnset), cand(1.0, 0.9, detect.SourceOnset)}
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0
	out := Combine(onset, nil, nil, 0.8, cfg)
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i].Timestamp, out[i-1].Timestamp, "output must be ordered by timestamp")
	}
}

func TestWeightsNormalized(t *testing.T) {
	w := Weights{Onset: 2, Tempo: 2, Spectral: 0}.normalized()
	assert.InDelta(t, 1.0, w.Onset+w.Tempo+w.Spectral, 0.001)
}

func TestWeightsNormalizedFallsBackWhenZero(t *testing.T) {
	w := Weights{}.normalized()
	assert.Positive(t, w.Onset)
	assert.Positive(t, w.Tempo)
	assert.Positive(t, w.Spectral)
}
