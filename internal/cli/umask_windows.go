//go:build windows

package cli

// setUmask is a no-op on Windows: the build container is Linux-only.
func setUmask(mask int) {}
