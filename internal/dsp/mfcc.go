package dsp

import "math"

// MelFilterbank is a bank of triangular mel-spaced filters applied to a
// half-spectrum of length fftSize/2.
type MelFilterbank struct {
	filters    [][]float64
	numFilters int
}

// NewMelFilterbank builds numFilters triangular filters spanning 20Hz to
// Nyquist, spaced uniformly in mel scale, generalizing
// internal/analysis.createMelFilterbank to arbitrary filter/FFT-size counts.
func NewMelFilterbank(numFilters, fftSize, sampleRate int) *MelFilterbank {
	hzToMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	melToHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	nyquist := float64(sampleRate) / 2
	lowMel := hzToMel(20)
	highMel := hzToMel(nyquist)

	melPoints := make([]float64, numFilters+2)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*(highMel-lowMel)/float64(numFilters+1)
	}

	hzPoints := make([]float64, numFilters+2)
	for i, m := range melPoints {
		hzPoints[i] = melToHz(m)
	}

	binPoints := make([]int, numFilters+2)
	for i, hz := range hzPoints {
		binPoints[i] = int(math.Floor(hz * float64(fftSize) / float64(sampleRate)))
	}

	half := fftSize / 2
	filters := make([][]float64, numFilters)
	for i := 0; i < numFilters; i++ {
		filters[i] = make([]float64, half)
		for j := binPoints[i]; j < binPoints[i+1] && j < half; j++ {
			if binPoints[i+1] != binPoints[i] {
				filters[i][j] = float64(j-binPoints[i]) / float64(binPoints[i+1]-binPoints[i])
			}
		}
		for j := binPoints[i+1]; j < binPoints[i+2] && j < half; j++ {
			if binPoints[i+2] != binPoints[i+1] {
				filters[i][j] = float64(binPoints[i+2]-j) / float64(binPoints[i+2]-binPoints[i+1])
			}
		}
	}

	return &MelFilterbank{filters: filters, numFilters: numFilters}
}

// Apply projects a magnitude spectrum through the filterbank, returning
// log-compressed mel band energies.
func (mb *MelFilterbank) Apply(spectrum []float64) []float64 {
	energies := make([]float64, mb.numFilters)
	for i := 0; i < mb.numFilters; i++ {
		filter := mb.filters[i]
		var sum float64
		n := len(spectrum)
		if len(filter) < n {
			n = len(filter)
		}
		for j := 0; j < n; j++ {
			sum += spectrum[j] * spectrum[j] * filter[j]
		}
		if sum < 1e-10 {
			sum = 1e-10
		}
		energies[i] = math.Log(sum)
	}
	return energies
}

// MFCC computes K cepstral coefficients from log mel energies via a
// type-II DCT, matching internal/analysis.FeatureExtractor.computeMFCC.
func MFCC(melEnergies []float64, k int) []float64 {
	numMel := len(melEnergies)
	mfcc := make([]float64, k)
	for i := 0; i < k; i++ {
		var sum float64
		for j := 0; j < numMel; j++ {
			sum += melEnergies[j] * math.Cos(math.Pi*float64(i)*(float64(j)+0.5)/float64(numMel))
		}
		mfcc[i] = sum
	}
	return mfcc
}

// SpectralCentroid computes the magnitude-weighted mean frequency.
func SpectralCentroid(spectrum []float64, sampleRate, fftSize int) float64 {
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
	return weightedSum / sum
}

// SpectralRolloff returns the frequency below which rolloffPercent of the
// spectrum's energy is contained.
func SpectralRolloff(spectrum []float64, sampleRate, fftSize int, rolloffPercent float64) float64 {
	var totalEnergy float64
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}
	threshold := totalEnergy * rolloffPercent
	freqPerBin := float64(sampleRate) / float64(fftSize)

	var cum float64
	for i, mag := range spectrum {
		cum += mag * mag
		if cum >= threshold {
			return float64(i) * freqPerBin
		}
	}
	return float64(len(spectrum)) * freqPerBin
}
