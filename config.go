package beatparser

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/austinkregel/beatparser/internal/selector"
)

// OutputFormat selects ParseResult's serialization shape.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputXML  OutputFormat = "xml"
)

// Config enumerates the configuration options spec.md §6 names, mirroring
// the daemon's Config-of-structs-with-json-tags shape
// (internal/config.Config).
type Config struct {
	SampleRate int `json:"sampleRate" yaml:"sampleRate"`
	FrameSize  int `json:"frameSize" yaml:"frameSize"`
	HopSize    int `json:"hopSize" yaml:"hopSize"`

	MinTempo float64 `json:"minTempo" yaml:"minTempo"`
	MaxTempo float64 `json:"maxTempo" yaml:"maxTempo"`

	OnsetWeight    float64 `json:"onsetWeight" yaml:"onsetWeight"`
	TempoWeight    float64 `json:"tempoWeight" yaml:"tempoWeight"`
	SpectralWeight float64 `json:"spectralWeight" yaml:"spectralWeight"`

	ConfidenceThreshold float64 `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	MultiPassEnabled    bool    `json:"multiPassEnabled" yaml:"multiPassEnabled"`
	GenreAdaptive       bool    `json:"genreAdaptive" yaml:"genreAdaptive"`

	EnablePreprocessing bool `json:"enablePreprocessing" yaml:"enablePreprocessing"`
	EnableNormalization bool `json:"enableNormalization" yaml:"enableNormalization"`
	EnableFiltering     bool `json:"enableFiltering" yaml:"enableFiltering"`

	OutputFormat          OutputFormat `json:"outputFormat" yaml:"outputFormat"`
	IncludeMetadata       bool         `json:"includeMetadata" yaml:"includeMetadata"`
	IncludeConfidenceScores bool       `json:"includeConfidenceScores" yaml:"includeConfidenceScores"`

	Plugins []string `json:"plugins" yaml:"plugins"`
}

// DefaultConfig returns spec.md §6's enumerated defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		FrameSize:  2048,
		HopSize:    512,

		MinTempo: 60,
		MaxTempo: 200,

		OnsetWeight:    0.4,
		TempoWeight:    0.4,
		SpectralWeight: 0.2,

		ConfidenceThreshold: 0.5,
		MultiPassEnabled:    true,
		GenreAdaptive:       true,

		EnablePreprocessing: true,
		EnableNormalization: true,
		EnableFiltering:     false,

		OutputFormat:            OutputJSON,
		IncludeMetadata:         true,
		IncludeConfidenceScores: true,
	}
}

// LoadConfigYAML reads a Config from a YAML file, starting from
// DefaultConfig so unset fields keep their defaults, the way the
// daemon's config.Manager.Load seeds from DefaultConfig before
// unmarshalling.
func LoadConfigYAML(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, invalidConfig("read config file: " + err.Error())
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, invalidConfig("parse config file: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants spec.md §4.9 step 1 names: sample rate
// positive, tempo bounds ordered and within [20,400], frame size ≥ 256,
// hop in (0, frame].
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return invalidConfig("sampleRate must be positive")
	}
	if c.FrameSize < 256 {
		return invalidConfig("frameSize must be at least 256")
	}
	if c.HopSize <= 0 || c.HopSize > c.FrameSize {
		return invalidConfig("hopSize must be in (0, frameSize]")
	}
	if c.MinTempo >= c.MaxTempo {
		return invalidConfig("minTempo must be less than maxTempo")
	}
	if c.MinTempo < 20 || c.MaxTempo > 400 {
		return invalidConfig("tempo bounds must lie within [20, 400]")
	}
	return nil
}

// ParseOptions are the per-call overrides spec.md §6 names; zero values
// mean "use the frozen Config". MinConfidence filters the final beat list
// (see filterByMinConfidence in pipeline.go); ChunkSize/Overlap drive
// ChunkBuffer/ParseBufferStreamed for callers that want ParseStream's
// chunk-arrival progress reporting over a plain in-memory buffer.
type ParseOptions struct {
	MinConfidence    float64
	WindowSize       int
	HopSize          int
	SampleRate       int
	TargetBeatCount  int
	SelectionMethod  selector.Method
	Filename         string
	ChunkSize        int
	Overlap          int
	ProgressCallback func(fraction float64)
}
