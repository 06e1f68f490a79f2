package discover

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the package descriptor file whose presence marks a
// directory as a buildable unit.
const ManifestName = "Cargo.toml"

// namePattern matches the first literal name assignment in a manifest.
// A single-pass text scan is used instead of a full TOML parse on this
// path: the declared name is always a plain literal in practice, and the
// first occurrence wins on ties.
var namePattern = regexp.MustCompile(`^\s*name\s*=\s*"([^"]+)"`)

// ExtractName returns the package name declared in the manifest at path.
// The second return value is false when no name can be extracted.
func ExtractName(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := namePattern.FindStringSubmatch(scanner.Text()); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// componentMetadata is the [package.metadata.component] table that marks a
// manifest as a component in the marker discovery convention.
type componentMetadata struct {
	Package string         `toml:"package"`
	Target  map[string]any `toml:"target"`
}

// manifestMeta is the subset of a manifest needed for marker discovery.
type manifestMeta struct {
	Package struct {
		Name     string `toml:"name"`
		Metadata struct {
			Component *componentMetadata `toml:"component"`
		} `toml:"metadata"`
	} `toml:"package"`
}

// HasComponentMarker reports whether the manifest at path declares the
// component metadata table. Unparseable manifests report false; the caller
// warns and skips them.
func HasComponentMarker(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var meta manifestMeta
	if err := toml.Unmarshal(data, &meta); err != nil {
		return false
	}
	return meta.Package.Metadata.Component != nil
}

// AnyManifestUnder reports whether at least one manifest exists anywhere
// under root. Used by the preflight check to distinguish "nothing to build"
// from a broken environment.
func AnyManifestUnder(root string) bool {
	found := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries don't disprove anything
		}
		if !d.IsDir() && d.Name() == ManifestName {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
