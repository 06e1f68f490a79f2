package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func noEnv(string) string { return "" }

func TestAssemble_Defaults(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	cfg, err := Assemble(root, noEnv)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if cfg.RootDir != root {
		t.Errorf("RootDir = %q, want %q", cfg.RootDir, root)
	}
	if cfg.Mode != ModeRelease {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeRelease)
	}
	if cfg.Discovery != DiscoveryStructural {
		t.Errorf("Discovery = %q, want %q", cfg.Discovery, DiscoveryStructural)
	}
	if cfg.OutputDir != filepath.Join(root, OutputDirName) {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.ComponentsSubdir != "" || len(cfg.Exclude) != 0 {
		t.Errorf("expected empty subdir and exclude, got %q / %v", cfg.ComponentsSubdir, cfg.Exclude)
	}
}

func TestAssemble_FileValues(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeConfigFile(t, root, "components_dir: components\nexclude:\n  - vendor\ndiscovery: marker\n")

	cfg, err := Assemble(root, noEnv)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if cfg.ComponentsSubdir != "components" {
		t.Errorf("ComponentsSubdir = %q, want %q", cfg.ComponentsSubdir, "components")
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "vendor" {
		t.Errorf("Exclude = %v, want [vendor]", cfg.Exclude)
	}
	if cfg.Discovery != DiscoveryMarker {
		t.Errorf("Discovery = %q, want %q", cfg.Discovery, DiscoveryMarker)
	}
}

func TestAssemble_EnvOverridesFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeConfigFile(t, root, "components_dir: components\nexclude:\n  - vendor\n")

	env := map[string]string{
		EnvComponentsSubdir: "crates",
		EnvExclude:          " common , testdata ",
		EnvHostUID:          "1000",
		EnvHostGID:          "1000",
	}
	cfg, err := Assemble(root, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if cfg.ComponentsSubdir != "crates" {
		t.Errorf("ComponentsSubdir = %q, want env override", cfg.ComponentsSubdir)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "common" || cfg.Exclude[1] != "testdata" {
		t.Errorf("Exclude = %v, want trimmed env entries", cfg.Exclude)
	}
	if cfg.HostUID != "1000" || cfg.HostGID != "1000" {
		t.Errorf("host identity = %q:%q", cfg.HostUID, cfg.HostGID)
	}
}

func TestAssemble_InvalidFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeConfigFile(t, root, "discovery: recursive\n")

	if _, err := Assemble(root, noEnv); err == nil {
		t.Fatal("Assemble() expected error for invalid discovery value")
	}
}

func TestSplitExclude(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "a,b", []string{"a", "b"}},
		{"whitespace trimmed", " a , b ", []string{"a", "b"}},
		{"empty entries dropped", "a,,b,", []string{"a", "b"}},
		{"all empty", " , ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitExclude(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitExclude(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitExclude(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseUmask(t *testing.T) {
	t.Parallel()
	if mask, err := ParseUmask("022"); err != nil || mask != 0o022 {
		t.Errorf("ParseUmask(022) = %d, %v", mask, err)
	}
	for _, bad := range []string{"", "9z", "1000", "-1"} {
		if _, err := ParseUmask(bad); err == nil {
			t.Errorf("ParseUmask(%q) expected error", bad)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	// Pre-set values must win over the env file.
	t.Setenv("WASIBUILD_TEST_ENVFILE_PRESET", "caller")
	if err := os.WriteFile(filepath.Join(dir, EnvFileName),
		[]byte("WASIBUILD_TEST_ENVFILE=fromfile\nWASIBUILD_TEST_ENVFILE_PRESET=file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFile(root); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("WASIBUILD_TEST_ENVFILE") })

	if got := os.Getenv("WASIBUILD_TEST_ENVFILE"); got != "fromfile" {
		t.Errorf("env value = %q, want %q", got, "fromfile")
	}
	if got := os.Getenv("WASIBUILD_TEST_ENVFILE_PRESET"); got != "caller" {
		t.Errorf("preset value = %q, want caller to win", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	t.Parallel()
	if err := LoadEnvFile(t.TempDir()); err != nil {
		t.Errorf("LoadEnvFile() on missing file = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*RunConfig)
		wantErr bool
	}{
		{"valid default", func(c *RunConfig) {}, false},
		{"bad discovery", func(c *RunConfig) { c.Discovery = "recursive" }, true},
		{"exclude with path separator", func(c *RunConfig) { c.Exclude = []string{"a/b"} }, true},
		{"absolute components subdir", func(c *RunConfig) { c.ComponentsSubdir = "/abs" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &RunConfig{Discovery: DiscoveryStructural}
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
