// Package discover enumerates buildable component units under a source tree.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wasmforge/wasibuild/internal/config"
	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/internal/output"
)

// BuildUnit is one independently buildable source package. Units are
// immutable once created and live only for the duration of a run.
type BuildUnit struct {
	// Name is the unique unit identifier: the manifest's declared package
	// name, falling back to the folder name.
	Name string
	// Folder is the unit's folder name (used by the only-filter).
	Folder string
	// SourceDir is the absolute path to the unit's source directory.
	SourceDir string
}

// Options configures one discovery pass.
type Options struct {
	Root    string
	Subdir  string // optional scope under Root
	Exclude []string
	Only    string // restrict to one unit by name or folder
	Mode    config.DiscoveryMode
}

// Discover enumerates build units under the scan root in deterministic
// lexicographic order. It fails with a config error when the scan root is
// missing, when no units are found, or when the only-filter matches nothing.
func Discover(opts Options, out *output.Writer) ([]BuildUnit, error) {
	scanRoot := opts.Root
	if opts.Subdir != "" {
		scanRoot = filepath.Join(opts.Root, opts.Subdir)
		info, err := os.Stat(scanRoot)
		if err != nil || !info.IsDir() {
			return nil, errors.Configf("components subdirectory not found: %s", scanRoot)
		}
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[name] = true
	}

	var units []BuildUnit
	var err error
	switch opts.Mode {
	case config.DiscoveryMarker:
		units, err = discoverMarker(scanRoot, excluded, out)
	default:
		units, err = discoverStructural(scanRoot, excluded, out)
	}
	if err != nil {
		return nil, err
	}

	if opts.Only != "" {
		units = filterOnly(units, opts.Only)
		if len(units) == 0 {
			// A typo must not silently trigger a full-tree build.
			return nil, errors.Configf("unit not found: %q", opts.Only)
		}
	}

	if len(units) == 0 {
		return nil, errors.Configf("no buildable components found under %s", scanRoot)
	}

	return units, nil
}

// discoverStructural treats each immediate child directory of the scan root
// that contains a manifest as one unit.
func discoverStructural(scanRoot string, excluded map[string]bool, out *output.Writer) ([]BuildUnit, error) {
	entries, err := os.ReadDir(scanRoot)
	if err != nil {
		return nil, errors.Configf("cannot read scan root %s: %v", scanRoot, err)
	}

	seen := make(map[string]string) // name -> folder, for uniqueness
	var units []BuildUnit
	// os.ReadDir returns entries sorted by name, so discovery order is
	// stable across runs regardless of directory iteration order.
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := entry.Name()
		if strings.HasPrefix(folder, ".") || excluded[folder] {
			continue
		}

		dir := filepath.Join(scanRoot, folder)
		manifest := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(manifest); err != nil {
			out.Warning("no %s in %s, skipping", ManifestName, folder)
			continue
		}

		unit, ok := resolveUnit(manifest, dir, folder, seen, out)
		if !ok {
			continue
		}
		units = append(units, unit)
	}

	return units, nil
}

// discoverMarker walks the whole tree and treats any manifest carrying the
// component metadata table as one unit. Compatibility mode for layouts that
// predate the one-folder-per-component convention.
func discoverMarker(scanRoot string, excluded map[string]bool, out *output.Writer) ([]BuildUnit, error) {
	seen := make(map[string]string)
	var units []BuildUnit

	walkErr := filepath.WalkDir(scanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != scanRoot && (strings.HasPrefix(name, ".") || excluded[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != ManifestName {
			return nil
		}
		if !HasComponentMarker(path) {
			return nil
		}

		dir := filepath.Dir(path)
		unit, ok := resolveUnit(path, dir, filepath.Base(dir), seen, out)
		if !ok {
			return nil
		}
		units = append(units, unit)
		return nil
	})
	if walkErr != nil {
		return nil, errors.Configf("cannot scan %s: %v", scanRoot, walkErr)
	}

	// WalkDir visits lexicographically, but sort defensively so ordering
	// never depends on walk internals.
	sort.Slice(units, func(i, j int) bool { return units[i].SourceDir < units[j].SourceDir })
	return units, nil
}

// resolveUnit extracts the unit name from a manifest and enforces name
// uniqueness. First-seen wins; later duplicates are skipped with a warning.
func resolveUnit(manifest, dir, folder string, seen map[string]string, out *output.Writer) (BuildUnit, bool) {
	name, ok := ExtractName(manifest)
	if !ok {
		out.Warning("cannot extract package name from %s, skipping", manifest)
		return BuildUnit{}, false
	}

	if prev, dup := seen[name]; dup {
		out.Warning("duplicate unit name %q in %s (already provided by %s), skipping", name, folder, prev)
		return BuildUnit{}, false
	}
	seen[name] = folder

	return BuildUnit{Name: name, Folder: folder, SourceDir: dir}, true
}

// filterOnly keeps units whose resolved name or folder name equals only.
func filterOnly(units []BuildUnit, only string) []BuildUnit {
	var filtered []BuildUnit
	for _, u := range units {
		if u.Name == only || u.Folder == only {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
