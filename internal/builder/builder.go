// Package builder invokes the component toolchain for discovered units.
package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wasmforge/wasibuild/internal/config"
	"github.com/wasmforge/wasibuild/internal/discover"
	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/internal/output"
)

// TargetTriple is the toolchain target for component builds. Mode-specific
// outputs land under <target-dir>/wasm32-wasip1/<mode>/.
const TargetTriple = "wasm32-wasip1"

// sourceDateEpoch pins the embedded build timestamp so repeated builds of
// unchanged sources produce byte-identical binaries.
const sourceDateEpoch = "0"

// Builder runs per-unit component builds with a pinned environment.
type Builder struct {
	rootDir   string
	targetDir string
	mode      config.Mode
	out       *output.Writer
	verbose   bool
}

// New creates a Builder. targetDir is the run-scoped cargo target directory.
func New(rootDir, targetDir string, mode config.Mode, out *output.Writer) *Builder {
	return &Builder{
		rootDir:   rootDir,
		targetDir: targetDir,
		mode:      mode,
		out:       out,
	}
}

// SetVerbose enables command echoing.
func (b *Builder) SetVerbose(v bool) {
	b.verbose = v
}

// ModeDir returns the directory the toolchain writes mode-specific outputs
// to for this run.
func (b *Builder) ModeDir() string {
	return filepath.Join(b.targetDir, TargetTriple, b.mode.Subdir())
}

// PrepareTargetDir deletes and recreates the run-scoped target directory so
// no incremental state leaks between runs sharing a mounted cache volume.
func (b *Builder) PrepareTargetDir() error {
	if err := os.RemoveAll(b.targetDir); err != nil {
		return fmt.Errorf("failed to clear target directory %s: %w", b.targetDir, err)
	}
	if err := os.MkdirAll(b.targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", b.targetDir, err)
	}
	return nil
}

// buildEnv returns the process environment with every reproducibility knob
// pinned explicitly. Later entries win, so the overrides shadow whatever the
// caller environment carries.
func (b *Builder) buildEnv() []string {
	env := os.Environ()
	env = append(env,
		"CARGO_TARGET_DIR="+b.targetDir,
		"CARGO_INCREMENTAL=0",
		"CARGO_PROFILE_RELEASE_OPT_LEVEL=z",
		"CARGO_PROFILE_RELEASE_LTO=true",
		"CARGO_PROFILE_RELEASE_CODEGEN_UNITS=1",
		"CARGO_PROFILE_RELEASE_PANIC=abort",
		"CARGO_PROFILE_RELEASE_STRIP=debuginfo",
		"SOURCE_DATE_EPOCH="+sourceDateEpoch,
		"LC_ALL=C",
		"LANG=C",
	)
	return env
}

// buildArgs constructs the toolchain arguments for one unit build.
func (b *Builder) buildArgs(unit discover.BuildUnit) []string {
	args := []string{"build", "--target", TargetTriple}
	if b.mode == config.ModeRelease {
		args = append(args, "--release")
	}
	if b.hasLockfile(unit) {
		// Frozen dependency resolution keeps builds byte-reproducible.
		// Absence of a lockfile degrades to unpinned resolution rather
		// than failing, a deliberate leniency for first-time builds.
		args = append(args, "--locked")
	}
	return args
}

// hasLockfile reports whether the unit or the source root carries a
// Cargo.lock.
func (b *Builder) hasLockfile(unit discover.BuildUnit) bool {
	for _, dir := range []string{unit.SourceDir, b.rootDir} {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.lock")); err == nil {
			return true
		}
	}
	return false
}

// BuildAll builds every unit sequentially in the given order. The run
// aborts on the first failing unit: a missing binary for one unit makes the
// artifact set incomplete, and partial output is worse than no output.
func (b *Builder) BuildAll(ctx context.Context, units []discover.BuildUnit) error {
	for _, unit := range units {
		b.out.UnitStart(unit.Name)
		if err := b.Build(ctx, unit); err != nil {
			b.out.UnitFailed(unit.Name, err)
			return errors.WrapBuild(err, unit.Name, "component build failed")
		}
		b.out.UnitSuccess(unit.Name)
	}
	return nil
}

// Build runs one component build for a unit.
func (b *Builder) Build(ctx context.Context, unit discover.BuildUnit) error {
	args := b.buildArgs(unit)

	cmd := exec.CommandContext(ctx, "cargo-component", args...)
	cmd.Dir = unit.SourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = b.buildEnv()

	if b.verbose {
		b.out.Info("Running: cargo-component %s (in %s)", strings.Join(args, " "), unit.SourceDir)
	}

	return cmd.Run()
}

// Warmup builds ordinary (non-component) dependencies for the unit set to
// warm build-script and macro caches. Failures are warnings: the warm-up is
// an optimization, and the authoritative build is the per-unit component
// build that follows.
func (b *Builder) Warmup(ctx context.Context, units []discover.BuildUnit) {
	for _, unit := range units {
		args := []string{"build", "--target", TargetTriple}
		if b.mode == config.ModeRelease {
			args = append(args, "--release")
		}

		cmd := exec.CommandContext(ctx, "cargo", args...)
		cmd.Dir = unit.SourceDir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = b.buildEnv()

		if err := cmd.Run(); err != nil {
			b.out.Warning("[%s] dependency warm-up failed: %v", unit.Name, err)
		}
	}
}
