package audioprep

import "errors"

// Sentinel errors for the preparation stage, matching the taxonomy
// spec.md §4.2/§7 names. Callers use errors.Is against these; the
// top-level beatparser package wraps them as ErrInvalidArgument so the
// public API surfaces the documented error kind.
var (
	ErrEmptyAudio = errors.New("empty audio")
	ErrTooShort   = errors.New("audio too short")
	ErrNonFinite  = errors.New("non-finite audio sample")
)
