package wasibuild_test

import (
	"testing"

	"github.com/wasmforge/wasibuild/internal/errors"
	"github.com/wasmforge/wasibuild/pkg/wasibuild"
)

// TestExitCodeValues verifies that exit code constants have the values the
// container entrypoint contract documents.
func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"ExitSuccess", wasibuild.ExitSuccess, 0},
		{"ExitUsageError", wasibuild.ExitUsageError, 1},
		{"ExitConfigError", wasibuild.ExitConfigError, 2},
		{"ExitBuildError", wasibuild.ExitBuildError, 3},
		{"ExitArtifactError", wasibuild.ExitArtifactError, 4},
		{"ExitEnvironmentError", wasibuild.ExitEnvironmentError, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("wasibuild.%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

// TestExitCodeConsistency verifies that public exit code constants match
// the internal errors package constants. This prevents drift between
// the public API and internal implementation.
func TestExitCodeConsistency(t *testing.T) {
	tests := []struct {
		name     string
		public   int
		internal int
	}{
		{"Success", wasibuild.ExitSuccess, errors.ExitSuccess},
		{"UsageError", wasibuild.ExitUsageError, errors.ExitUsageError},
		{"ConfigError", wasibuild.ExitConfigError, errors.ExitConfigError},
		{"BuildError", wasibuild.ExitBuildError, errors.ExitBuildError},
		{"ArtifactError", wasibuild.ExitArtifactError, errors.ExitArtifactError},
		{"EnvironmentError", wasibuild.ExitEnvironmentError, errors.ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.public != tt.internal {
				t.Errorf("exit code mismatch: wasibuild constant = %d, errors constant = %d",
					tt.public, tt.internal)
			}
		})
	}
}
