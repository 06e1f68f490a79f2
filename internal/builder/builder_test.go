package builder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/wasmforge/wasibuild/internal/config"
	"github.com/wasmforge/wasibuild/internal/discover"
	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/internal/output"
)

// installFakeCargoComponent puts a recording cargo-component stub on PATH.
// Each invocation appends its working directory, arguments, and selected
// environment variables to logPath.
func installFakeCargoComponent(t *testing.T, logPath string, exitCode int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
{
  echo "cwd=$(pwd)"
  echo "args=$*"
  echo "incremental=$CARGO_INCREMENTAL"
  echo "target_dir=$CARGO_TARGET_DIR"
  echo "epoch=$SOURCE_DATE_EPOCH"
  echo "codegen=$CARGO_PROFILE_RELEASE_CODEGEN_UNITS"
} >> "` + logPath + `"
exit ` + itoa(exitCode) + `
`
	if err := os.WriteFile(filepath.Join(dir, "cargo-component"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	return string(rune('0' + n))
}

func testUnit(t *testing.T, name string) discover.BuildUnit {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	return discover.BuildUnit{Name: name, Folder: name, SourceDir: dir}
}

func testWriter() (*output.Writer, *bytes.Buffer) {
	var errBuf bytes.Buffer
	return output.NewWithWriters(&bytes.Buffer{}, &errBuf, false), &errBuf
}

func TestPrepareTargetDir_ClearsStaleState(t *testing.T) {
	t.Parallel()
	targetDir := filepath.Join(t.TempDir(), "target")
	stale := filepath.Join(targetDir, TargetTriple, "release", "stale.wasm")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _ := testWriter()
	b := New(t.TempDir(), targetDir, config.ModeRelease, out)
	if err := b.PrepareTargetDir(); err != nil {
		t.Fatalf("PrepareTargetDir() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale incremental state should have been removed")
	}
	if info, err := os.Stat(targetDir); err != nil || !info.IsDir() {
		t.Error("target directory should exist after preparation")
	}
}

func TestModeDir(t *testing.T) {
	t.Parallel()
	out, _ := testWriter()

	rel := New("/src", "/tmp/target", config.ModeRelease, out)
	if got := rel.ModeDir(); got != filepath.Join("/tmp/target", TargetTriple, "release") {
		t.Errorf("release ModeDir() = %q", got)
	}

	dbg := New("/src", "/tmp/target", config.ModeDebug, out)
	if got := dbg.ModeDir(); got != filepath.Join("/tmp/target", TargetTriple, "debug") {
		t.Errorf("debug ModeDir() = %q", got)
	}
}

func TestBuild_PinnedEnvironmentAndFlags(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "invocations.log")
	installFakeCargoComponent(t, logPath, 0)

	root := t.TempDir()
	unit := testUnit(t, "alpha")
	targetDir := filepath.Join(t.TempDir(), "target")

	out, _ := testWriter()
	b := New(root, targetDir, config.ModeRelease, out)
	if err := b.Build(context.Background(), unit); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	log, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	got := string(log)

	for _, want := range []string{
		"cwd=" + unit.SourceDir,
		"args=build --target " + TargetTriple + " --release",
		"incremental=0",
		"target_dir=" + targetDir,
		"epoch=0",
		"codegen=1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("invocation log missing %q:\n%s", want, got)
		}
	}
}

func TestBuild_DebugModeOmitsRelease(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "invocations.log")
	installFakeCargoComponent(t, logPath, 0)

	unit := testUnit(t, "alpha")
	out, _ := testWriter()
	b := New(t.TempDir(), t.TempDir(), config.ModeDebug, out)
	if err := b.Build(context.Background(), unit); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	log, _ := os.ReadFile(logPath)
	if strings.Contains(string(log), "--release") {
		t.Errorf("debug build passed --release:\n%s", log)
	}
}

func TestBuild_LockedOnlyWithLockfile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "invocations.log")
	installFakeCargoComponent(t, logPath, 0)

	unit := testUnit(t, "alpha")
	out, _ := testWriter()
	b := New(t.TempDir(), t.TempDir(), config.ModeRelease, out)

	if err := b.Build(context.Background(), unit); err != nil {
		t.Fatal(err)
	}
	log, _ := os.ReadFile(logPath)
	if strings.Contains(string(log), "--locked") {
		t.Errorf("--locked passed without a lockfile:\n%s", log)
	}

	if err := os.WriteFile(filepath.Join(unit.SourceDir, "Cargo.lock"), []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if err := b.Build(context.Background(), unit); err != nil {
		t.Fatal(err)
	}
	log, _ = os.ReadFile(logPath)
	if !strings.Contains(string(log), "--locked") {
		t.Errorf("--locked not passed with lockfile present:\n%s", log)
	}
}

func TestBuildAll_FailFast(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "invocations.log")
	installFakeCargoComponent(t, logPath, 1)

	units := []discover.BuildUnit{testUnit(t, "alpha"), testUnit(t, "beta")}
	out, _ := testWriter()
	b := New(t.TempDir(), t.TempDir(), config.ModeRelease, out)

	err := b.BuildAll(context.Background(), units)
	if err == nil {
		t.Fatal("BuildAll() expected error")
	}
	if errors.GetExitCode(err) != errors.ExitBuildError {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitBuildError)
	}

	// Only the first unit may have been attempted.
	log, _ := os.ReadFile(logPath)
	if n := strings.Count(string(log), "args="); n != 1 {
		t.Errorf("toolchain invoked %d times after failure, want 1", n)
	}
}

func TestWarmup_FailureIsWarning(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\nexit 1\n"
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	if err := os.WriteFile(filepath.Join(dir, "cargo"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	unit := testUnit(t, "alpha")
	out, errBuf := testWriter()
	b := New(t.TempDir(), t.TempDir(), config.ModeRelease, out)

	b.Warmup(context.Background(), []discover.BuildUnit{unit})

	if !strings.Contains(errBuf.String(), "warm-up failed") {
		t.Errorf("expected warm-up warning, got %q", errBuf.String())
	}
}
