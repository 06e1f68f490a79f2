// Package config assembles the run configuration for wasibuild.
//
// Configuration flows from three sources with fixed precedence:
// CLI flags > environment variables > the optional .wasibuild/config.yaml
// file. Components never read the ambient environment directly; everything
// is resolved here once and passed on as an immutable RunConfig.
package config

// Mode is the build profile for a run.
type Mode string

const (
	// ModeRelease builds optimized components (default).
	ModeRelease Mode = "release"
	// ModeDebug builds unoptimized components with debug info.
	ModeDebug Mode = "debug"
)

// Subdir returns the toolchain output subdirectory for the mode.
func (m Mode) Subdir() string {
	return string(m)
}

// DiscoveryMode selects how buildable units are located.
type DiscoveryMode string

const (
	// DiscoveryStructural treats each immediate child directory of the scan
	// root that contains a manifest as one unit. This is the primary mode.
	DiscoveryStructural DiscoveryMode = "structural"
	// DiscoveryMarker walks the whole tree and treats any manifest carrying
	// a [package.metadata.component] table as one unit. Compatibility mode
	// for older source layouts; never merged with structural results.
	DiscoveryMarker DiscoveryMode = "marker"
)

// RunConfig holds the fully resolved configuration for one run.
// It is constructed once at startup and read-only thereafter.
type RunConfig struct {
	// RootDir is the mounted source tree. The mount path convention is
	// fixed; it is overridable only in tests.
	RootDir string

	// ComponentsSubdir optionally scopes discovery to RootDir/ComponentsSubdir.
	ComponentsSubdir string

	// Exclude lists folder names that are never treated as units.
	Exclude []string

	// OnlyUnit restricts the run to a single named unit (empty = all).
	OnlyUnit string

	// Mode is the build profile.
	Mode Mode

	// Discovery selects the unit discovery convention.
	Discovery DiscoveryMode

	// OutputDir is the canonical artifact destination, exclusively owned
	// by the collector for the duration of the run.
	OutputDir string

	// TargetDir is the run-scoped cargo target directory. It is deleted
	// and recreated at the start of every run.
	TargetDir string

	// HostUID and HostGID, when both set, enable post-run ownership repair
	// of root-owned files under RootDir.
	HostUID string
	HostGID string
}

// FileConfig is the shape of the optional .wasibuild/config.yaml file.
type FileConfig struct {
	ComponentsDir string   `yaml:"components_dir,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty"`
	Discovery     string   `yaml:"discovery,omitempty"`
}
