package cli

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wasmforge/wasibuild/internal/config"
	"github.com/wasmforge/wasibuild/internal/discover"
	"github.com/wasmforge/wasibuild/internal/output"
)

const usageFlagWidth = 14
const usageEnvWidth = 24

func printUsage(w *output.Writer) {
	w.HelpTitle("wasibuild - WASI component build orchestrator")

	w.HelpSection("Usage:")
	w.HelpUsage("wasibuild [UNIT_NAME] [flags]")
	w.HelpUsage("Builds all discovered component units, or only UNIT_NAME if given.")

	w.HelpSection("Flags:")
	w.HelpFlag("--debug", "Build with the debug profile (default release)", usageFlagWidth)
	w.HelpFlag("--list", "List discovered units without building", usageFlagWidth)
	w.HelpFlag("--warmup", "Run the non-fatal dependency warm-up pre-pass", usageFlagWidth)
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", usageFlagWidth)
	w.HelpFlag("-v, --verbose", "Echo toolchain invocations", usageFlagWidth)
	w.HelpFlag("-h, --help", "Show this help", usageFlagWidth)
	w.HelpFlag("--version", "Show version", usageFlagWidth)

	w.HelpSection("Environment:")
	w.HelpEnvVar(config.EnvComponentsSubdir, "Subdirectory to scope discovery to", usageEnvWidth)
	w.HelpEnvVar(config.EnvExclude, "Comma-separated folder names to skip", usageEnvWidth)
	w.HelpEnvVar(config.EnvHostUID+", "+config.EnvHostGID, "Host identity for post-run ownership repair", usageEnvWidth)
	w.HelpEnvVar(config.EnvUmask, "Octal umask override", usageEnvWidth)

	w.HelpSection("Examples:")
	w.HelpExample("wasibuild", "Build all units in release mode")
	w.HelpExample("wasibuild beta --debug", "Build only unit beta with the debug profile")
	w.HelpExample("wasibuild --list", "Show what would be built")
	w.Println("")
}

// printUnits renders the discovered unit table for --list.
func printUnits(w *output.Writer, units []discover.BuildUnit, mode config.Mode) {
	titleCase := cases.Title(language.English)
	w.Section(titleCase.String(string(mode)) + " mode units")

	rows := make([][]string, 0, len(units))
	for _, u := range units {
		rows = append(rows, []string{u.Name, u.Folder, u.SourceDir})
	}
	w.Table([]string{"UNIT", "FOLDER", "SOURCE"}, rows)
}
