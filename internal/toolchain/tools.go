// Package toolchain describes the external build tools wasibuild depends on
// and provides capability probing for them.
package toolchain

// Tool describes one required external executable.
type Tool struct {
	// Name is the executable name looked up on PATH.
	Name string
	// ProbeArgs is a harmless invocation used to confirm the tool runs.
	ProbeArgs []string
}

// Required lists the tools that must be invocable before any work begins.
// cargo-component performs the component builds; wasm-tools strips the
// produced binaries during collection.
var Required = []Tool{
	{Name: "cargo-component", ProbeArgs: []string{"--version"}},
	{Name: "wasm-tools", ProbeArgs: []string{"--version"}},
}

// Status reports the result of probing one tool.
type Status struct {
	Tool      string
	Available bool
	Path      string // Resolved executable path when available
	Version   string // First token of the version output when available
	Reason    string // Why the tool is unavailable
}
