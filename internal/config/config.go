package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wasmforge/wasibuild/internal/schema"
)

// DefaultRootDir is the fixed mount point for the source tree inside the
// build container. The wrapper script bind-mounts the host checkout here.
const DefaultRootDir = "/src"

// ConfigDirName is the name of the wasibuild configuration directory
// under the source root.
const ConfigDirName = ".wasibuild"

// ConfigFileName is the name of the optional configuration file.
const ConfigFileName = "config.yaml"

// EnvFileName is the name of the optional env file loaded before any
// environment lookups.
const EnvFileName = "build.env"

// OutputDirName is the artifact destination directory under the source root.
const OutputDirName = "dist"

// Environment variables consumed at the process boundary.
const (
	EnvComponentsSubdir = "WASIBUILD_COMPONENTS_DIR"
	EnvExclude          = "WASIBUILD_EXCLUDE"
	EnvHostUID          = "HOST_UID"
	EnvHostGID          = "HOST_GID"
	EnvUmask            = "WASIBUILD_UMASK"
)

// LoadEnvFile loads the optional .wasibuild/build.env file into the process
// environment. Values already present in the environment win, so the file
// can only supply defaults, never override the caller.
func LoadEnvFile(root string) error {
	path := filepath.Join(root, ConfigDirName, EnvFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadFile reads and validates the optional config.yaml under root.
// A missing file is not an error; (nil, nil) is returned.
func LoadFile(root string) (*FileConfig, error) {
	path := filepath.Join(root, ConfigDirName, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := schema.ValidateConfig(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

// Assemble resolves the complete RunConfig for one run. getenv is the single
// environment access point; pass os.Getenv in production.
//
// Precedence: environment variables override config.yaml values; CLI-derived
// fields (OnlyUnit, Mode) are filled in by the caller afterwards.
func Assemble(root string, getenv func(string) string) (*RunConfig, error) {
	cfg := &RunConfig{
		RootDir:   root,
		Mode:      ModeRelease,
		Discovery: DiscoveryStructural,
		OutputDir: filepath.Join(root, OutputDirName),
		TargetDir: filepath.Join(os.TempDir(), "wasibuild-target"),
	}

	fc, err := LoadFile(root)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		cfg.ComponentsSubdir = fc.ComponentsDir
		cfg.Exclude = append([]string(nil), fc.Exclude...)
		if fc.Discovery != "" {
			cfg.Discovery = DiscoveryMode(fc.Discovery)
		}
	}

	if v := getenv(EnvComponentsSubdir); v != "" {
		cfg.ComponentsSubdir = v
	}
	if v := getenv(EnvExclude); v != "" {
		cfg.Exclude = SplitExclude(v)
	}
	cfg.HostUID = getenv(EnvHostUID)
	cfg.HostGID = getenv(EnvHostGID)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SplitExclude parses the comma-separated exclusion list from the
// environment. Entries are trimmed of surrounding whitespace and empty
// entries are dropped.
func SplitExclude(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseUmask parses an octal umask override from the environment.
func ParseUmask(v string) (int, error) {
	mask, err := strconv.ParseInt(v, 8, 32)
	if err != nil || mask < 0 || mask > 0o777 {
		return 0, fmt.Errorf("invalid umask %q: expected octal value between 000 and 777", v)
	}
	return int(mask), nil
}
