// Package wasibuild provides public constants for external tools
// integrating with wasibuild, such as the container entrypoint wrapper.
package wasibuild

// Exit codes returned by the wasibuild CLI.
// These constants allow wrapper scripts and CI pipelines to check exit
// codes symbolically rather than using magic numbers.
const (
	// ExitSuccess indicates all requested units were built and collected.
	ExitSuccess = 0

	// ExitUsageError indicates malformed command-line arguments.
	ExitUsageError = 1

	// ExitConfigError indicates the environment is valid but the requested
	// work is ill-specified (no manifests, unknown unit name, missing
	// components subdirectory).
	ExitConfigError = 2

	// ExitBuildError indicates the external toolchain failed for a unit.
	ExitBuildError = 3

	// ExitArtifactError indicates the build reported success but the
	// expected outputs are absent, empty, or could not be collected.
	ExitArtifactError = 4

	// ExitEnvironmentError indicates a required executable or the expected
	// source mount is missing.
	ExitEnvironmentError = 5
)
