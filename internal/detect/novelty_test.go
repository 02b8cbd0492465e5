package detect

import (
	"math"
	"testing"
)

func clickTrain(sampleRate int, periodSeconds, durationSeconds float64) []float64 {
	n := int(float64(sampleRate) * durationSeconds)
	samples := make([]float64, n)
	period := int(periodSeconds * float64(sampleRate))
	for i := 0; i < n; i += period {
		samples[i] = 1.0
	}
	return samples
}

func TestComputeNoveltyRejectsBadFraming(t *testing.T) {
	if _, err := ComputeNovelty(make([]float64, 10), 44100, 0, 512, true); err == nil {
		t.Fatal("expected error for invalid frame size")
	}
}

func TestComputeNoveltyOnClickTrainHasPeaks(t *testing.T) {
	samples := clickTrain(44100, 0.5, 4.0)
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	if err != nil {
		t.Fatalf("ComputeNovelty: %v", err)
	}

	var maxVal float64
	for _, v := range n.Values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 1.0 {
		t.Errorf("expected at least one strong novelty peak on click train, max=%v", maxVal)
	}
}

func TestComputeNoveltyOnSilenceIsFlat(t *testing.T) {
	samples := make([]float64, 44100)
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	if err != nil {
		t.Fatalf("ComputeNovelty: %v", err)
	}
	for i, v := range n.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("novelty[%d] is non-finite: %v", i, v)
		}
	}
}

func TestLocalMeanStdOnConstantIsZeroStd(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 3.0
	}
	mean, std := localMeanStd(values, 10, 4)
	if mean != 3.0 {
		t.Errorf("mean = %v, want 3.0", mean)
	}
	if std != 0 {
		t.Errorf("std = %v, want 0", std)
	}
}

func TestPickPeaksFindsIsolatedSpike(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 1.0
	}
	values[25] = 10.0
	peaks := pickPeaks(values, 5, 1.5)
	found := false
	for _, p := range peaks {
		if p == 25 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected peak at index 25, got %v", peaks)
	}
}
