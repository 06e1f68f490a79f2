package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Prober checks whether an external tool is invocable. The production
// implementation spawns the tool; tests substitute a stub.
type Prober interface {
	Probe(ctx context.Context, tool Tool) Status
}

// ExecProber probes tools by resolving them on PATH and running their
// version invocation.
type ExecProber struct{}

// Probe implements Prober.
func (ExecProber) Probe(ctx context.Context, tool Tool) Status {
	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return Status{
			Tool:   tool.Name,
			Reason: fmt.Sprintf("%s not found in PATH", tool.Name),
		}
	}

	cmd := exec.CommandContext(ctx, tool.Name, tool.ProbeArgs...)
	out, err := cmd.Output()
	if err != nil {
		return Status{
			Tool:   tool.Name,
			Path:   path,
			Reason: fmt.Sprintf("%s is present but not runnable: %v", tool.Name, err),
		}
	}

	// Version output is like "cargo-component-component 0.21.1 (...)".
	version := strings.TrimSpace(string(out))
	if parts := strings.Fields(version); len(parts) > 1 {
		version = parts[1]
	}

	return Status{
		Tool:      tool.Name,
		Available: true,
		Path:      path,
		Version:   version,
	}
}

// CheckAll probes every tool in order and returns one status per tool.
func CheckAll(ctx context.Context, p Prober, tools []Tool) []Status {
	statuses := make([]Status, 0, len(tools))
	for _, tool := range tools {
		statuses = append(statuses, p.Probe(ctx, tool))
	}
	return statuses
}
