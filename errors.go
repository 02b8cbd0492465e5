package beatparser

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy spec.md §7 names. Wrap with
// fmt.Errorf("%w: detail", ErrX) so callers can use errors.Is while the
// message stays descriptive, matching the daemon's error-wrapping idiom
// throughout internal/config and internal/ipc.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnsupportedFormat    = errors.New("unsupported audio format")
	ErrResourceMissing      = errors.New("resource missing")
	ErrAlreadyInitialized   = errors.New("already initialized")
	ErrPluginFailure        = errors.New("plugin failure")
	ErrCancelled            = errors.New("cancelled")
	ErrDecodeFailure        = errors.New("decode failure")
)

// PluginError wraps an error raised inside a plugin hook, retaining the
// plugin's name the way AnalysisResult carries per-track context in the
// daemon's worker.
type PluginError struct {
	Plugin string
	Hook   string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %q failed in %s: %v", e.Plugin, e.Hook, e.Err)
}

func (e *PluginError) Unwrap() error {
	return ErrPluginFailure
}

func newPluginError(name, hook string, err error) error {
	return &PluginError{Plugin: name, Hook: hook, Err: err}
}

func invalidConfig(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, detail)
}

func invalidArgument(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, detail)
}
