package audioprep

import (
	"math"
	"testing"
)

func TestPrepareDownmixesStereo(t *testing.T) {
	raw := []float64{1.0, -1.0, 0.5, -0.5} // two stereo frames
	buf, err := Prepare(raw, 2, 44100, Config{TargetSampleRate: 44100, Normalize: false})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(buf.Samples) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(buf.Samples))
	}
	if buf.Samples[0] != 0 {
		t.Errorf("expected first downmixed sample 0, got %v", buf.Samples[0])
	}
}

func TestPrepareRejectsNonFinite(t *testing.T) {
	raw := make([]float64, 4096)
	raw[1024] = math.NaN()
	if _, err := Prepare(raw, 1, 44100, DefaultConfig()); err == nil {
		t.Fatal("expected error for NaN sample")
	}
}

func TestPrepareRejectsEmpty(t *testing.T) {
	if _, err := Prepare(nil, 1, 44100, DefaultConfig()); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestPrepareTooShort(t *testing.T) {
	raw := make([]float64, 100)
	cfg := DefaultConfig()
	cfg.FrameSize = 2048
	if _, err := Prepare(raw, 1, 44100, cfg); err == nil {
		t.Fatal("expected TooShort error")
	}
}

func TestPrepareNormalizesPeak(t *testing.T) {
	raw := make([]float64, 4096)
	for i := range raw {
		raw[i] = 0.1
	}
	raw[10] = 0.5
	cfg := DefaultConfig()
	cfg.FrameSize = 0
	buf, err := Prepare(raw, 1, 44100, cfg)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if math.Abs(Peak(buf.Samples)-1.0) > 1e-9 {
		t.Errorf("expected normalized peak 1.0, got %v", Peak(buf.Samples))
	}
}

func TestPrepareSkipsNormalizingSilence(t *testing.T) {
	raw := make([]float64, 4096)
	cfg := DefaultConfig()
	cfg.FrameSize = 0
	buf, err := Prepare(raw, 1, 44100, cfg)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if Peak(buf.Samples) != 0 {
		t.Errorf("expected silent buffer to remain silent, got peak %v", Peak(buf.Samples))
	}
}

func TestPrepareIsIdempotent(t *testing.T) {
	raw := make([]float64, 4096)
	for i := range raw {
		raw[i] = math.Sin(2 * math.Pi * 220 * float64(i) / 44100)
	}
	cfg := DefaultConfig()
	cfg.FrameSize = 0

	once, err := Prepare(raw, 1, 44100, cfg)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	twice, err := Prepare(once.Samples, 1, once.SampleRate, cfg)
	if err != nil {
		t.Fatalf("Prepare (second pass): %v", err)
	}
	if len(once.Samples) != len(twice.Samples) {
		t.Fatalf("length changed across repeated preparation: %d vs %d", len(once.Samples), len(twice.Samples))
	}
	for i := range once.Samples {
		if math.Abs(once.Samples[i]-twice.Samples[i]) > 1e-9 {
			t.Fatalf("sample %d changed across repeated preparation: %v vs %v", i, once.Samples[i], twice.Samples[i])
		}
	}
}

func TestResampleLinearChangesLength(t *testing.T) {
	raw := make([]float64, 44100)
	buf, err := Prepare(raw, 1, 44100, Config{TargetSampleRate: 22050, Normalize: false})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if buf.SampleRate != 22050 {
		t.Errorf("expected resampled rate 22050, got %d", buf.SampleRate)
	}
	if len(buf.Samples) < 22000 || len(buf.Samples) > 22100 {
		t.Errorf("expected ~22050 resampled samples, got %d", len(buf.Samples))
	}
}
