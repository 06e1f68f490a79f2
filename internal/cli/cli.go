// Package cli provides the command-line interface for wasibuild.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/wasmforge/wasibuild/internal/config"
	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/internal/output"
	"github.com/wasmforge/wasibuild/internal/ownership"
	"github.com/wasmforge/wasibuild/internal/runner"
)

// Version is set at build time.
var Version = "dev"

// options holds parsed command-line arguments.
type options struct {
	unit        string
	debug       bool
	quiet       bool
	verbose     bool
	list        bool
	warmup      bool
	showHelp    bool
	showVersion bool
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	return run(args, config.DefaultRootDir, output.New())
}

// run is the testable entry point with the source root injectable.
func run(args []string, root string, w *output.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		w.ErrorPrefix("%v", err)
		printUsage(w)
		w.Diagnostic("exiting with code %d", errors.ExitUsageError)
		return errors.ExitUsageError
	}

	if opts.showHelp {
		printUsage(w)
		return errors.ExitSuccess
	}
	if opts.showVersion {
		w.Println("wasibuild %s", Version)
		return errors.ExitSuccess
	}

	w.SetQuiet(opts.quiet)

	code := execute(opts, root, w)

	// Ownership repair runs on both success and failure paths: the mount
	// is bind-mounted from the host, and leaving root-owned files behind
	// is the caller's problem to clean up otherwise.
	ownership.Repair(root, os.Getenv(config.EnvHostUID), os.Getenv(config.EnvHostGID), w)

	if code != errors.ExitSuccess {
		// Observe and log the failing code; never alter it.
		w.Diagnostic("exiting with code %d", code)
	}
	return code
}

// execute performs the configured run and maps failures to exit codes.
func execute(opts *options, root string, w *output.Writer) int {
	if err := config.LoadEnvFile(root); err != nil {
		w.Warning("cannot load env file: %v", err)
	}

	if v := os.Getenv(config.EnvUmask); v != "" {
		mask, err := config.ParseUmask(v)
		if err != nil {
			w.ErrorPrefix("%v", err)
			return errors.ExitConfigError
		}
		setUmask(mask)
	}

	cfg, err := config.Assemble(root, os.Getenv)
	if err != nil {
		w.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	cfg.OnlyUnit = opts.unit
	if opts.debug {
		cfg.Mode = config.ModeDebug
	}

	r := runner.New(cfg, w)
	r.Warmup = opts.warmup
	r.Verbose = opts.verbose
	ctx := context.Background()

	if opts.list {
		units, err := r.Discover(ctx)
		if err != nil {
			w.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}
		printUnits(w, units, cfg.Mode)
		return errors.ExitSuccess
	}

	summary, err := r.Run(ctx)
	if err != nil {
		w.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	w.Success("wrote %d artifact(s) to %s", summary.Count, cfg.OutputDir)
	return errors.ExitSuccess
}

// parseArgs manually parses the argument list.
//
// Manual parsing is used instead of the stdlib flag package because the
// surface is one optional positional plus boolean flags in any order, and
// unknown flags need a usage error with a hint rather than flag's default
// output.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for _, arg := range args {
		switch {
		case arg == "-h" || arg == "--help":
			opts.showHelp = true
		case arg == "--version":
			opts.showVersion = true
		case arg == "--debug":
			opts.debug = true
		case arg == "-q" || arg == "--quiet":
			opts.quiet = true
		case arg == "-v" || arg == "--verbose":
			opts.verbose = true
		case arg == "--list":
			opts.list = true
		case arg == "--warmup":
			opts.warmup = true
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag %q (see --help)", arg)
		default:
			if opts.unit != "" {
				return nil, fmt.Errorf("unexpected argument %q: at most one unit name may be given", arg)
			}
			opts.unit = arg
		}
	}

	if opts.quiet && opts.verbose {
		return nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	return opts, nil
}
