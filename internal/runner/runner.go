// Package runner orchestrates the build pipeline: preflight validation,
// unit discovery, sequential builds, and artifact collection.
//
// Units are built one at a time in deterministic discovery order. This is a
// deliberate simplicity/reliability trade-off: the toolchain's shared build
// caches would need careful partitioning to parallelize safely, and
// failures are easier to attribute when serialized.
package runner

import (
	"context"
	"os"
	"strings"

	"github.com/wasmforge/wasibuild/internal/artifact"
	"github.com/wasmforge/wasibuild/internal/builder"
	"github.com/wasmforge/wasibuild/internal/config"
	"github.com/wasmforge/wasibuild/internal/discover"
	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/internal/output"
	"github.com/wasmforge/wasibuild/internal/toolchain"
)

// Runner executes one complete build run.
type Runner struct {
	cfg    *config.RunConfig
	prober toolchain.Prober
	out    *output.Writer

	// Warmup enables the non-fatal dependency pre-pass before the
	// authoritative per-unit builds.
	Warmup bool
	// Verbose enables command echoing in the builder.
	Verbose bool
}

// New creates a Runner with the production tool prober.
func New(cfg *config.RunConfig, out *output.Writer) *Runner {
	return &Runner{
		cfg:    cfg,
		prober: toolchain.ExecProber{},
		out:    out,
	}
}

// SetProber substitutes the tool prober (for testing).
func (r *Runner) SetProber(p toolchain.Prober) {
	r.prober = p
}

// Validate performs the preflight checks, in order: required tools are
// invocable, the source mount exists, and at least one manifest exists
// anywhere under it. Tool and mount failures are environment errors;
// a manifest-free tree is a config error ("nothing to build") because it
// signals a usage mistake rather than a broken environment.
func (r *Runner) Validate(ctx context.Context) error {
	statuses := toolchain.CheckAll(ctx, r.prober, toolchain.Required)
	var missing []string
	for _, st := range statuses {
		if !st.Available {
			missing = append(missing, st.Reason)
		}
	}
	if len(missing) > 0 {
		return errors.Environment(strings.Join(missing, "; "))
	}

	info, err := os.Stat(r.cfg.RootDir)
	if err != nil || !info.IsDir() {
		return errors.Environmentf("source mount not found: %s", r.cfg.RootDir)
	}

	if !discover.AnyManifestUnder(r.cfg.RootDir) {
		return errors.Configf("no %s found under %s: nothing to build", discover.ManifestName, r.cfg.RootDir)
	}

	return nil
}

// Discover runs validation and unit discovery, returning the ordered unit
// set without building anything.
func (r *Runner) Discover(ctx context.Context) ([]discover.BuildUnit, error) {
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}
	return discover.Discover(discover.Options{
		Root:    r.cfg.RootDir,
		Subdir:  r.cfg.ComponentsSubdir,
		Exclude: r.cfg.Exclude,
		Only:    r.cfg.OnlyUnit,
		Mode:    r.cfg.Discovery,
	}, r.out)
}

// Run executes the full pipeline and returns the collection summary.
func (r *Runner) Run(ctx context.Context) (*artifact.Summary, error) {
	units, err := r.Discover(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	r.out.Info("building %d unit(s) in %s mode: %s", len(units), r.cfg.Mode, strings.Join(names, ", "))

	b := builder.New(r.cfg.RootDir, r.cfg.TargetDir, r.cfg.Mode, r.out)
	b.SetVerbose(r.Verbose)

	if err := b.PrepareTargetDir(); err != nil {
		return nil, errors.Environmentf("%v", err)
	}

	if r.Warmup {
		b.Warmup(ctx, units)
	}

	if err := b.BuildAll(ctx, units); err != nil {
		return nil, err
	}

	return artifact.New(b.ModeDir(), r.cfg.OutputDir, r.out).Collect(ctx)
}
