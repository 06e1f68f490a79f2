package config

import (
	"fmt"
	"strings"
)

// Validate checks invariants on a resolved RunConfig that the schema cannot
// express (the schema only sees the file, not env overrides).
func Validate(cfg *RunConfig) error {
	switch cfg.Discovery {
	case DiscoveryStructural, DiscoveryMarker:
	default:
		return fmt.Errorf("invalid discovery mode %q: expected %q or %q",
			cfg.Discovery, DiscoveryStructural, DiscoveryMarker)
	}

	for _, name := range cfg.Exclude {
		if strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("invalid exclude entry %q: expected a folder name, not a path", name)
		}
	}

	if strings.HasPrefix(cfg.ComponentsSubdir, "/") {
		return fmt.Errorf("invalid components subdirectory %q: expected a path relative to the source root", cfg.ComponentsSubdir)
	}

	return nil
}
