package beatparser

import (
	"fmt"
	"log"
)

// Plugin is the capability set spec.md §9 describes: optional
// pre-processing and post-processing hooks plus lifecycle. A plugin
// need only implement the methods it uses — PrepareAudio/PostProcessBeats are
// checked via the optional interfaces below, mirroring the daemon's
// pattern of small, focused collaborator interfaces
// (internal/audio.Output, internal/audio.Decoder).
type Plugin interface {
	Name() string
	Init() error
	Cleanup() error
}

// AudioPreparer is the optional prepare(audio) → audio hook.
type AudioPreparer interface {
	PrepareAudio(samples []float64, sampleRate int) ([]float64, error)
}

// BeatPostProcessor is the optional postProcess(candidates, meta) →
// candidates hook.
type BeatPostProcessor interface {
	PostProcessBeats(beats []Beat, meta Metadata) ([]Beat, error)
}

// pluginRegistry is an ordered collection keyed by unique name; it
// forbids duplicate names and freezes on first use, per spec.md §9's
// "configuration immutability" design note applied to the plugin set.
type pluginRegistry struct {
	order  []string
	byName map[string]Plugin
	frozen bool
}

func newPluginRegistry() *pluginRegistry {
	return &pluginRegistry{byName: map[string]Plugin{}}
}

func (r *pluginRegistry) add(p Plugin) error {
	if r.frozen {
		return fmt.Errorf("%w: cannot add plugin after initialization", ErrAlreadyInitialized)
	}
	name := p.Name()
	if _, exists := r.byName[name]; exists {
		return invalidArgument(fmt.Sprintf("duplicate plugin name %q", name))
	}
	r.byName[name] = p
	r.order = append(r.order, name)
	return nil
}

func (r *pluginRegistry) remove(name string) error {
	if r.frozen {
		return fmt.Errorf("%w: cannot remove plugin after initialization", ErrAlreadyInitialized)
	}
	if _, exists := r.byName[name]; !exists {
		return invalidArgument(fmt.Sprintf("unknown plugin %q", name))
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *pluginRegistry) list() []Plugin {
	out := make([]Plugin, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n])
	}
	return out
}

func (r *pluginRegistry) freeze() {
	r.frozen = true
}

// runPrepareHooks applies every registered AudioPreparer in registration
// order, aborting the whole call on the first failure (spec.md §7:
// "plugin errors abort the call").
func (r *pluginRegistry) runPrepareHooks(samples []float64, sampleRate int) ([]float64, error) {
	for _, p := range r.list() {
		preparer, ok := p.(AudioPreparer)
		if !ok {
			continue
		}
		out, err := preparer.PrepareAudio(samples, sampleRate)
		if err != nil {
			return nil, newPluginError(p.Name(), "prepare", err)
		}
		samples = out
	}
	return samples, nil
}

// runPostProcessHooks applies every registered BeatPostProcessor in
// registration order.
func (r *pluginRegistry) runPostProcessHooks(beats []Beat, meta Metadata) ([]Beat, error) {
	for _, p := range r.list() {
		processor, ok := p.(BeatPostProcessor)
		if !ok {
			continue
		}
		out, err := processor.PostProcessBeats(beats, meta)
		if err != nil {
			return nil, newPluginError(p.Name(), "postProcess", err)
		}
		beats = out
	}
	return beats, nil
}

// runCleanupHooks calls Cleanup on every plugin, logging and swallowing
// failures so cleanup() remains infallible per spec.md §7.
func (r *pluginRegistry) runCleanupHooks() []error {
	var errs []error
	for _, p := range r.list() {
		if err := p.Cleanup(); err != nil {
			log.Printf("[PLUGIN] %s: cleanup failed: %v", p.Name(), err)
			errs = append(errs, newPluginError(p.Name(), "cleanup", err))
		}
	}
	return errs
}
