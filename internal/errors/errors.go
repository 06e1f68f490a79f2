// Package errors provides structured error types and exit codes for wasibuild.
package errors

import (
	"fmt"
)

// Exit codes propagated to the process boundary.
const (
	ExitSuccess          = 0 // All units built and collected
	ExitUsageError       = 1 // Usage error (bad/missing CLI args)
	ExitConfigError      = 2 // Configuration error (no manifests, unknown unit, missing subdir)
	ExitBuildError       = 3 // External toolchain invocation failed
	ExitArtifactError    = 4 // Expected output missing, zero artifacts, copy failure
	ExitEnvironmentError = 5 // Required executables or source mount absent
)

// ErrorKind represents the category of a failure.
type ErrorKind int

const (
	KindUsage ErrorKind = iota
	KindConfig
	KindBuild
	KindArtifact
	KindEnvironment
)

// BuildError is the base error type for wasibuild.
type BuildError struct {
	Kind    ErrorKind
	Message string
	Unit    string // Unit name if applicable
	Cause   error  // Underlying error
}

func (e *BuildError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("[%s] %s", e.Unit, e.Message)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this error.
func (e *BuildError) ExitCode() int {
	switch e.Kind {
	case KindUsage:
		return ExitUsageError
	case KindConfig:
		return ExitConfigError
	case KindBuild:
		return ExitBuildError
	case KindArtifact:
		return ExitArtifactError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitBuildError
	}
}

// Usage creates a new usage error.
func Usage(message string) *BuildError {
	return &BuildError{Kind: KindUsage, Message: message}
}

// Usagef creates a new usage error with formatting.
func Usagef(format string, args ...interface{}) *BuildError {
	return Usage(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *BuildError {
	return &BuildError{Kind: KindConfig, Message: message}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *BuildError {
	return Config(fmt.Sprintf(format, args...))
}

// Build creates a new build error for a specific unit.
func Build(unit, message string) *BuildError {
	return &BuildError{Kind: KindBuild, Unit: unit, Message: message}
}

// Buildf creates a new build error for a unit with formatting.
func Buildf(unit, format string, args ...interface{}) *BuildError {
	return Build(unit, fmt.Sprintf(format, args...))
}

// Artifact creates a new artifact error.
func Artifact(message string) *BuildError {
	return &BuildError{Kind: KindArtifact, Message: message}
}

// Artifactf creates a new artifact error with formatting.
func Artifactf(format string, args ...interface{}) *BuildError {
	return Artifact(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *BuildError {
	return &BuildError{Kind: KindEnvironment, Message: message}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *BuildError {
	return Environment(fmt.Sprintf(format, args...))
}

// WrapBuild wraps a toolchain error for a unit, preserving the cause chain.
func WrapBuild(err error, unit, message string) *BuildError {
	return &BuildError{
		Kind:    KindBuild,
		Unit:    unit,
		Message: message,
		Cause:   err,
	}
}

// WrapArtifact wraps a collection error, preserving the cause chain.
func WrapArtifact(err error, message string) *BuildError {
	return &BuildError{
		Kind:    KindArtifact,
		Message: message,
		Cause:   err,
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if be, ok := err.(*BuildError); ok {
		return be.ExitCode()
	}
	return ExitBuildError
}
