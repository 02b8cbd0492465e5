// Package beatparser implements a hybrid beat-detection pipeline: three
// peer detectors (onset, tempo/autocorrelation, banded spectral flux)
// feeding a confidence-weighted combiner, an optional genre-adaptive
// refinement pass, and a pluggable selector that narrows the result to a
// caller-requested beat count.
package beatparser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/austinkregel/beatparser/internal/audioprep"
	"github.com/austinkregel/beatparser/internal/combine"
	"github.com/austinkregel/beatparser/internal/detect"
	"github.com/austinkregel/beatparser/internal/selector"
)

// Parser is the pipeline orchestrator (spec.md §4.9). Configuration and
// plugin set freeze on first use, mirroring spec.md §5's ordering
// guarantee ("configuration and plugin set are frozen at initialization").
type Parser struct {
	mu sync.RWMutex

	cfg         Config
	registry    *pluginRegistry
	initialized bool
}

// NewParser builds a Parser with the given configuration, validating it
// up front per spec.md §4.9 step 1.
func NewParser(cfg Config) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Parser{cfg: cfg, registry: newPluginRegistry()}, nil
}

// AddPlugin registers a plugin. Permitted only before initialization.
func (p *Parser) AddPlugin(plugin Plugin) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return fmt.Errorf("%w: cannot add plugin after initialization", ErrAlreadyInitialized)
	}
	return p.registry.add(plugin)
}

// RemovePlugin unregisters a plugin by name. Permitted only before
// initialization.
func (p *Parser) RemovePlugin(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return fmt.Errorf("%w: cannot remove plugin after initialization", ErrAlreadyInitialized)
	}
	return p.registry.remove(name)
}

// ListPlugins returns the registered plugins in registration order.
func (p *Parser) ListPlugins() []Plugin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.registry.list()
}

// UpdateConfig replaces the parser's configuration. Permitted only before
// initialization.
func (p *Parser) UpdateConfig(cfg Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return fmt.Errorf("%w: cannot update configuration after initialization", ErrAlreadyInitialized)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg = cfg
	return nil
}

// GetConfig returns a copy of the current configuration.
func (p *Parser) GetConfig() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Initialize freezes configuration and the plugin set. Idempotent.
func (p *Parser) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	for _, plugin := range p.registry.list() {
		if err := plugin.Init(); err != nil {
			return newPluginError(plugin.Name(), "init", err)
		}
	}
	p.registry.freeze()
	p.initialized = true
	return nil
}

// Cleanup runs every plugin's Cleanup hook, logging and swallowing
// individual failures so Cleanup itself is infallible (spec.md §7).
// Idempotent.
func (p *Parser) Cleanup() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registry.runCleanupHooks()
}

// ParseBuffer runs the full pipeline over an in-memory buffer of raw PCM
// samples (interleaved if channels > 1).
func (p *Parser) ParseBuffer(ctx context.Context, raw []float64, channels, sampleRate int, opts ParseOptions) (ParseResult, error) {
	if err := p.ensureInitialized(); err != nil {
		return ParseResult{}, err
	}
	cfg := p.GetConfig()
	return p.runPipeline(ctx, raw, channels, sampleRate, opts, cfg, 0)
}

// ParseStream accumulates every chunk from chunks into a single buffer,
// counts them for metadata, then runs the offline pipeline (spec.md §5:
// "parseStream... accumulates all chunks into a single buffer... then
// runs the offline pipeline").
func (p *Parser) ParseStream(ctx context.Context, chunks <-chan []float64, channels, sampleRate int, opts ParseOptions) (ParseResult, error) {
	if err := p.ensureInitialized(); err != nil {
		return ParseResult{}, err
	}
	cfg := p.GetConfig()

	var all []float64
	chunkCount := 0
	for chunk := range chunks {
		select {
		case <-ctx.Done():
			return ParseResult{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}
		// opts.Overlap names how many leading samples of every chunk after
		// the first duplicate the tail of the one before it (the shape
		// ChunkBuffer below produces); trim that duplication back out so
		// the reassembled buffer matches the original samples.
		if chunkCount > 0 && opts.Overlap > 0 && opts.Overlap < len(chunk) {
			chunk = chunk[opts.Overlap:]
		}
		all = append(all, chunk...)
		chunkCount++
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(0) // chunk-arrival progress; refined during pipeline stages below
		}
	}

	return p.runPipeline(ctx, all, channels, sampleRate, opts, cfg, chunkCount)
}

// ParseBufferStreamed is ParseBuffer's streamed counterpart: it splits raw
// into opts.ChunkSize/opts.Overlap pieces with ChunkBuffer and feeds them
// through ParseStream, for callers that want ParseStream's chunk-arrival
// progress reporting without managing the channel themselves. A
// non-positive ChunkSize falls back straight to ParseBuffer.
func (p *Parser) ParseBufferStreamed(ctx context.Context, raw []float64, channels, sampleRate int, opts ParseOptions) (ParseResult, error) {
	if opts.ChunkSize <= 0 {
		return p.ParseBuffer(ctx, raw, channels, sampleRate, opts)
	}
	chunks := ChunkBuffer(raw, opts.ChunkSize, opts.Overlap)
	return p.ParseStream(ctx, chunks, channels, sampleRate, opts)
}

// ChunkBuffer splits samples into chunkSize pieces, each overlapping the
// previous by overlap samples, and streams them on a channel sized for the
// whole split so the sender never blocks. ParseStream trims the
// overlapping prefix back out as chunks arrive. overlap is clamped below
// chunkSize; a non-positive chunkSize yields a single chunk containing all
// of samples.
func ChunkBuffer(samples []float64, chunkSize, overlap int) <-chan []float64 {
	if chunkSize <= 0 || chunkSize >= len(samples) {
		out := make(chan []float64, 1)
		out <- samples
		close(out)
		return out
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	step := chunkSize - overlap

	out := make(chan []float64, (len(samples)/step)+1)
	go func() {
		defer close(out)
		for start := 0; start < len(samples); start += step {
			end := start + chunkSize
			if end > len(samples) {
				end = len(samples)
			}
			chunk := make([]float64, end-start)
			copy(chunk, samples[start:end])
			out <- chunk
			if end == len(samples) {
				break
			}
		}
	}()
	return out
}

func (p *Parser) ensureInitialized() error {
	if err := p.Initialize(); err != nil {
		return err
	}
	return nil
}

// runPipeline sequences preparation, plugin pre-processing, parallel
// detection, combination, refinement, plugin post-processing, and
// selection, per spec.md §4.9 step 3.
func (p *Parser) runPipeline(ctx context.Context, raw []float64, channels, sampleRate int, opts ParseOptions, cfg Config, chunkCount int) (ParseResult, error) {
	start := time.Now()
	reportProgress(opts, 0.0)

	effectiveSampleRate := cfg.SampleRate
	if opts.SampleRate > 0 {
		effectiveSampleRate = opts.SampleRate
	}
	sourceRate := sampleRate
	if sourceRate <= 0 {
		sourceRate = effectiveSampleRate
	}

	frameSize := cfg.FrameSize
	if opts.WindowSize > 0 {
		frameSize = opts.WindowSize
	}
	hopSize := cfg.HopSize
	if opts.HopSize > 0 {
		hopSize = opts.HopSize
	}

	prepCfg := audioprep.DefaultConfig()
	prepCfg.TargetSampleRate = effectiveSampleRate
	prepCfg.FrameSize = frameSize
	prepCfg.Normalize = cfg.EnableNormalization
	prepCfg.Filter = cfg.EnableFiltering

	buffer, err := audioprep.Prepare(raw, channels, sourceRate, prepCfg)
	if err != nil {
		return ParseResult{}, translatePrepError(err)
	}

	p.mu.RLock()
	registry := p.registry
	p.mu.RUnlock()

	preparedSamples, err := registry.runPrepareHooks(buffer.Samples, buffer.SampleRate)
	if err != nil {
		return ParseResult{}, err
	}
	buffer.Samples = preparedSamples
	reportProgress(opts, 0.2)

	select {
	case <-ctx.Done():
		return ParseResult{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	default:
	}

	novelty, err := detect.ComputeNovelty(buffer.Samples, buffer.SampleRate, frameSize, hopSize, true)
	if err != nil {
		return ParseResult{}, invalidArgument(err.Error())
	}
	reportProgress(opts, 0.35)

	onsetCandidates, tempoCandidates, fluxCandidates, tempoEstimate, err := runDetectors(ctx, novelty, cfg)
	if err != nil {
		return ParseResult{}, err
	}
	reportProgress(opts, 0.65)

	baseCfg := combine.DefaultConfig()
	baseCfg.Weights = combine.Weights{Onset: cfg.OnsetWeight, Tempo: cfg.TempoWeight, Spectral: cfg.SpectralWeight}
	baseCfg.ConfidenceThreshold = cfg.ConfidenceThreshold

	rcfg := combine.DefaultRefinerConfig()
	rcfg.Enabled = cfg.MultiPassEnabled
	rcfg.GenreAdaptive = cfg.GenreAdaptive

	streams := combine.Streams{Onset: onsetCandidates, Tempo: tempoCandidates, Spectral: fluxCandidates}
	refined := combine.Refine(streams, novelty.Spectra, buffer.SampleRate, frameSize, tempoEstimate, baseCfg, rcfg)
	reportProgress(opts, 0.8)

	beats := candidatesToBeats(refined.Candidates)

	meta := Metadata{
		RunID:            uuid.NewString(),
		SamplesProcessed: len(buffer.Samples),
		Parameters:       cfg,
		ProcessingInfo: ProcessingInfo{
			GenreHint:       string(refined.Genre),
			RefinerAccepted: refined.Refined,
			ChunksProcessed: chunkCount,
		},
	}

	beats, err = registry.runPostProcessHooks(beats, meta)
	if err != nil {
		return ParseResult{}, err
	}

	beats = filterByMinConfidence(beats, opts.MinConfidence)
	beats = selectBeats(beats, tempoEstimate, buffer.Duration(), opts)
	reportProgress(opts, 1.0)

	meta.ProcessingTime = time.Since(start)

	return ParseResult{
		Beats:      beats,
		Tempo:      tempoEstimate.BPM,
		Confidence: meanBeatConfidence(beats),
		Metadata:   meta,
	}, nil
}

// runDetectors runs the three peer detectors over the shared novelty
// function via errgroup: a fault in any one aborts the whole call,
// unlike the daemon's worker pool (internal/analysis.Worker), which
// tolerates per-track failures because spec.md §7's propagation policy
// requires detector faults to abort rather than degrade silently.
func runDetectors(ctx context.Context, novelty *detect.Novelty, cfg Config) ([]detect.Candidate, []detect.Candidate, []detect.Candidate, detect.TempoEstimate, error) {
	var onsetCandidates, fluxCandidates []detect.Candidate
	var tempoCandidates []detect.Candidate
	var tempoEstimate detect.TempoEstimate

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		onsetCandidates = detect.NewOnsetDetector(detect.DefaultOnsetConfig()).Detect(novelty)
		return nil
	})

	g.Go(func() error {
		tempoCfg := detect.DefaultTempoConfig()
		tempoCfg.MinTempo = cfg.MinTempo
		tempoCfg.MaxTempo = cfg.MaxTempo
		candidates, estimate := detect.NewTempoDetector(tempoCfg).Detect(novelty)
		tempoCandidates = candidates
		tempoEstimate = estimate
		return nil
	})

	g.Go(func() error {
		fluxCandidates = detect.NewSpectralFluxDetector(detect.DefaultSpectralFluxConfig()).Detect(novelty)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, detect.TempoEstimate{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return onsetCandidates, tempoCandidates, fluxCandidates, tempoEstimate, nil
}

// filterByMinConfidence drops beats below opts.MinConfidence (spec.md §6:
// "minConfidence... per-call filter option"). A zero threshold keeps
// every beat.
func filterByMinConfidence(beats []Beat, minConfidence float64) []Beat {
	if minConfidence <= 0 {
		return beats
	}
	out := make([]Beat, 0, len(beats))
	for _, b := range beats {
		if b.Confidence >= minConfidence {
			out = append(out, b)
		}
	}
	return out
}

func selectBeats(beats []Beat, tempo detect.TempoEstimate, duration float64, opts ParseOptions) []Beat {
	if opts.TargetBeatCount <= 0 || opts.TargetBeatCount >= len(beats) {
		return beats
	}

	candidates := make([]detect.Candidate, len(beats))
	for i, b := range beats {
		candidates[i] = detect.Candidate{Timestamp: b.Timestamp, Confidence: b.Confidence, Strength: b.Strength, Source: detect.SourceCombined}
	}

	method := opts.SelectionMethod
	if method == "" {
		method = selector.MethodAdaptive
	}

	selected := selector.Select(candidates, tempo, selector.Config{
		Method:    method,
		Count:     opts.TargetBeatCount,
		Duration:  duration,
		Tolerance: 0.05,
	})
	return candidatesToBeats(selected)
}

func candidatesToBeats(candidates []detect.Candidate) []Beat {
	beats := make([]Beat, len(candidates))
	for i, c := range candidates {
		beats[i] = Beat{Timestamp: c.Timestamp, Confidence: c.Confidence, Strength: c.Strength}
	}
	return beats
}

func meanBeatConfidence(beats []Beat) float64 {
	if len(beats) == 0 {
		return 0
	}
	var sum float64
	for _, b := range beats {
		sum += b.Confidence
	}
	return sum / float64(len(beats))
}

func reportProgress(opts ParseOptions, fraction float64) {
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(fraction)
	}
}

// translatePrepError maps internal/audioprep's sentinel errors onto this
// module's InvalidArgument taxonomy (spec.md §7: "null/empty/short
// buffer, non-finite samples... is InvalidArgument").
func translatePrepError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}
