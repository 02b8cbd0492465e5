package beatparser

// version is the static semver string spec.md §6's version() reports.
const version = "1.0.0"

// Version returns the module's semver string.
func Version() string {
	return version
}

// SupportedFormats returns the decoder collaborator's supported
// extensions, re-exported at the package root for convenience.
func SupportedFormats() []string {
	return []string{".wav", ".mp3", ".flac", ".ogg", ".m4a"}
}
