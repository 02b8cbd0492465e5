package detect

// Band is a named frequency range used by the spectral-flux detector.
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
	Weight float64
}

// DefaultBands returns spec.md §4.5's four bands with its default weights,
// biased toward the low end.
func DefaultBands() []Band {
	return []Band{
		{Name: "sub", LowHz: 20, HighHz: 120, Weight: 0.35},
		{Name: "low", LowHz: 120, HighHz: 500, Weight: 0.3},
		{Name: "mid", LowHz: 500, HighHz: 4000, Weight: 0.2},
		{Name: "high", LowHz: 4000, HighHz: 12000, Weight: 0.15},
	}
}

// SpectralFluxConfig controls the banded spectral-flux detector.
type SpectralFluxConfig struct {
	Bands           []Band
	PeakWindowMs    float64 // ~50ms default, larger than the onset detector's
	Alpha           float64
	ConfidenceScale float64
}

// DefaultSpectralFluxConfig returns spec.md's defaults.
func DefaultSpectralFluxConfig() SpectralFluxConfig {
	return SpectralFluxConfig{
		Bands:           DefaultBands(),
		PeakWindowMs:    50,
		Alpha:           1.5,
		ConfidenceScale: 0.5,
	}
}

// SpectralFluxDetector peak-picks a band-weighted composite flux curve
// computed from the shared per-frame magnitude spectra.
type SpectralFluxDetector struct {
	cfg SpectralFluxConfig
}

// NewSpectralFluxDetector builds a detector with the given configuration.
func NewSpectralFluxDetector(cfg SpectralFluxConfig) *SpectralFluxDetector {
	return &SpectralFluxDetector{cfg: cfg}
}

// Detect computes per-band flux from n.Spectra, combines it into a
// composite curve, and peak-picks candidates whose metadata records each
// band's contribution.
func (d *SpectralFluxDetector) Detect(n *Novelty) []Candidate {
	if len(n.Spectra) < 2 {
		return nil
	}

	bandFlux := make([][]float64, len(d.cfg.Bands))
	for b := range d.cfg.Bands {
		bandFlux[b] = make([]float64, len(n.Spectra))
	}

	binRanges := make([][2]int, len(d.cfg.Bands))
	numBins := len(n.Spectra[0])
	for b, band := range d.cfg.Bands {
		lo := hzToBin(band.LowHz, n.SampleRate, n.FrameSize, numBins)
		hi := hzToBin(band.HighHz, n.SampleRate, n.FrameSize, numBins)
		binRanges[b] = [2]int{lo, hi}
	}

	composite := make([]float64, len(n.Spectra))
	var prev []float64
	for i, spectrum := range n.Spectra {
		if prev != nil {
			for b, band := range d.cfg.Bands {
				lo, hi := binRanges[b][0], binRanges[b][1]
				var flux float64
				for k := lo; k < hi && k < len(spectrum); k++ {
					diff := spectrum[k] - prev[k]
					if diff > 0 {
						flux += diff
					}
				}
				bandFlux[b][i] = flux
				composite[i] += flux * band.Weight
			}
		}
		prev = spectrum
	}

	windowRadius := int(d.cfg.PeakWindowMs / 1000.0 / n.HopDuration())
	if windowRadius < 1 {
		windowRadius = 1
	}
	peaks := pickPeaks(composite, windowRadius, d.cfg.Alpha)

	candidates := make([]Candidate, 0, len(peaks))
	for _, i := range peaks {
		mean, std := localMeanStd(composite, i, windowRadius)
		threshold := mean + d.cfg.Alpha*std
		margin := composite[i] - threshold

		meta := make(map[string]float64, len(d.cfg.Bands))
		for b, band := range d.cfg.Bands {
			meta[band.Name] = bandFlux[b][i]
		}

		candidates = append(candidates, Candidate{
			Timestamp:  n.FrameTime(i),
			Confidence: clamp01(sigmoid(margin, d.cfg.ConfidenceScale)),
			Strength:   composite[i],
			Source:     SourceFlux,
			Metadata:   meta,
		})
	}
	return candidates
}

func hzToBin(hz float64, sampleRate, fftSize, numBins int) int {
	bin := int(hz * float64(fftSize) / float64(sampleRate))
	if bin < 0 {
		return 0
	}
	if bin > numBins {
		return numBins
	}
	return bin
}

// BandEnergyRatio sums the energy of a spectrum within [lowHz,highHz] as a
// fraction of total energy; used by the refiner's genre-adaptation
// descriptors (percussive-band energy ratio), generalizing
// internal/analysis.InstrumentDetector's frequency-range energy sums.
func BandEnergyRatio(spectrum []float64, sampleRate, fftSize int, lowHz, highHz float64) float64 {
	lo := hzToBin(lowHz, sampleRate, fftSize, len(spectrum))
	hi := hzToBin(highHz, sampleRate, fftSize, len(spectrum))

	var bandEnergy, total float64
	for i, mag := range spectrum {
		e := mag * mag
		total += e
		if i >= lo && i < hi {
			bandEnergy += e
		}
	}
	if total == 0 {
		return 0
	}
	return bandEnergy / total
}
