// Package config holds ambient, process-wide flags, mirroring the role
// funxy/internal/config plays for its own test/LSP modes.
package config

// IsTestMode is a process-wide test-mode flag. No code in this module
// sets or reads it.
var IsTestMode = false

// ColorOutput controls whether cmd/relique colorizes diagnostics. It
// defaults to false and is set by the CLI after checking isatty and any
// .relique.yaml sidecar.
var ColorOutput = false

// Sidecar is the optional .relique.yaml project file cmd/relique reads
// from the working directory.
type Sidecar struct {
	Color       string `yaml:"color"`        // "auto" (default), "always", "never"
	SnapshotDir string `yaml:"snapshot_dir"` // directory a bare (no path separator) open/commit filename resolves against
}
