package detect

import "testing"

func TestSpectralFluxDetectorOnClickTrain(t *testing.T) {
	samples := clickTrain(44100, 0.5, 10.0)
	n, err := ComputeNovelty(samples, 44100, 1024, 256, true)
	if err != nil {
		t.Fatalf("ComputeNovelty: %v", err)
	}

	det := NewSpectralFluxDetector(DefaultSpectralFluxConfig())
	candidates := det.Detect(n)

	if len(candidates) == 0 {
		t.Fatal("expected spectral-flux candidates on a click train")
	}
	for _, c := range candidates {
		if c.Source != SourceFlux {
			t.Errorf("source = %v, want %v", c.Source, SourceFlux)
		}
		if len(c.Metadata) != len(DefaultBands()) {
			t.Errorf("expected %d band entries in metadata, got %d", len(DefaultBands()), len(c.Metadata))
		}
	}
}

func TestBandEnergyRatioBounds(t *testing.T) {
	spectrum := make([]float64, 512)
	for i := range spectrum {
		spectrum[i] = 1.0
	}
	ratio := BandEnergyRatio(spectrum, 44100, 1024, 20, 120)
	if ratio < 0 || ratio > 1 {
		t.Errorf("band energy ratio %v out of [0,1]", ratio)
	}
}

func TestBandEnergyRatioOfSilenceIsZero(t *testing.T) {
	spectrum := make([]float64, 512)
	if ratio := BandEnergyRatio(spectrum, 44100, 1024, 20, 120); ratio != 0 {
		t.Errorf("expected 0 ratio for silent spectrum, got %v", ratio)
	}
}
