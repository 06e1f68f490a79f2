// Package artifact collects built component binaries into the canonical
// output directory.
package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/internal/output"
)

// Extension is the binary output extension the toolchain produces.
const Extension = ".wasm"

// destMode is the permission set applied to every collected artifact:
// read-write for owner, read-only for group and other, no execute bits.
const destMode = 0o644

// File describes one collected artifact. Immutable after creation.
type File struct {
	Filename   string
	SourcePath string
	DestPath   string
	SizeBytes  int64
}

// Summary aggregates one collection pass.
type Summary struct {
	Count      int
	TotalBytes int64
}

// Collector moves toolchain outputs into the destination directory. The
// collector owns the destination exclusively for the duration of the run.
type Collector struct {
	modeDir string // mode-specific toolchain output directory
	destDir string
	out     *output.Writer
}

// New creates a Collector reading from modeDir and writing to destDir.
func New(modeDir, destDir string, out *output.Writer) *Collector {
	return &Collector{
		modeDir: modeDir,
		destDir: destDir,
		out:     out,
	}
}

// Collect locates the toolchain outputs, strips each into the destination
// (falling back to a verbatim copy), normalizes permissions, and reports
// per-artifact and aggregate sizes.
func (c *Collector) Collect(ctx context.Context) (*Summary, error) {
	info, err := os.Stat(c.modeDir)
	if err != nil || !info.IsDir() {
		// The build claimed success but produced no recognizable output
		// layout. Hard inconsistency, never silently ignored.
		return nil, errors.Artifactf("build output directory not found: %s", c.modeDir)
	}

	sources, err := c.enumerate()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, errors.Artifactf("no %s outputs found in %s", Extension, c.modeDir)
	}

	if err := c.clearDest(); err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, src := range sources {
		file, err := c.place(ctx, src)
		if err != nil {
			return nil, err
		}
		c.out.Artifact(file.Filename, file.SizeBytes)
		summary.Count++
		summary.TotalBytes += file.SizeBytes
	}

	// Guard against destination-path typos: an apparently successful run
	// with an empty destination is an artifact error, not a success.
	entries, err := os.ReadDir(c.destDir)
	if err != nil || len(entries) == 0 {
		return nil, errors.Artifactf("destination directory %s is empty after collection", c.destDir)
	}

	c.out.Info("collected %d artifact(s), %d bytes total", summary.Count, summary.TotalBytes)
	return summary, nil
}

// enumerate returns the flat (non-recursive) list of binary outputs in the
// mode directory, in stable lexicographic order.
func (c *Collector) enumerate() ([]string, error) {
	entries, err := os.ReadDir(c.modeDir)
	if err != nil {
		return nil, errors.WrapArtifact(err, fmt.Sprintf("cannot read build output directory %s", c.modeDir))
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		sources = append(sources, filepath.Join(c.modeDir, entry.Name()))
	}
	sort.Strings(sources)
	return sources, nil
}

// clearDest removes all pre-existing entries in the destination directory
// so re-runs never accumulate stale artifacts from a previous selection.
func (c *Collector) clearDest() error {
	if err := os.MkdirAll(c.destDir, 0o755); err != nil {
		return errors.WrapArtifact(err, fmt.Sprintf("cannot create destination directory %s", c.destDir))
	}

	entries, err := os.ReadDir(c.destDir)
	if err != nil {
		return errors.WrapArtifact(err, fmt.Sprintf("cannot read destination directory %s", c.destDir))
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.destDir, entry.Name())); err != nil {
			return errors.WrapArtifact(err, fmt.Sprintf("cannot remove stale entry %s", entry.Name()))
		}
	}
	return nil
}

// place strips one artifact into the destination, falling back to a
// verbatim copy when stripping fails. The artifact is never dropped
// silently.
func (c *Collector) place(ctx context.Context, src string) (*File, error) {
	name := filepath.Base(src)
	dest := filepath.Join(c.destDir, name)

	if err := c.strip(ctx, src, dest); err != nil {
		c.out.Warning("strip failed for %s, copying verbatim: %v", name, err)
		if copyErr := copyFile(src, dest); copyErr != nil {
			return nil, errors.WrapArtifact(copyErr, fmt.Sprintf("cannot copy artifact %s", name))
		}
	}

	if err := os.Chmod(dest, destMode); err != nil {
		// The copy itself succeeded; a failed permission fix is a warning.
		c.out.Warning("cannot fix permissions on %s: %v", name, err)
	}

	size, err := fileSize(dest)
	if err != nil {
		return nil, errors.WrapArtifact(err, fmt.Sprintf("cannot determine size of %s", name))
	}

	return &File{
		Filename:   name,
		SourcePath: src,
		DestPath:   dest,
		SizeBytes:  size,
	}, nil
}

// strip runs the size-reducing rewrite, writing directly to dest.
func (c *Collector) strip(ctx context.Context, src, dest string) error {
	cmd := exec.CommandContext(ctx, "wasm-tools", "strip", src, "-o", dest)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// copyFile copies src to dest verbatim.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, destMode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// fileSize probes the artifact's byte size. Stat is tried first; on
// platforms where it misbehaves the literal byte length of the file is the
// fallback.
func fileSize(path string) (int64, error) {
	if info, err := os.Stat(path); err == nil {
		return info.Size(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(io.Discard, f)
}
