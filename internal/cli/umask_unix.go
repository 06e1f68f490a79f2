//go:build !windows

package cli

import "syscall"

// setUmask applies the caller-provided umask override for the run.
func setUmask(mask int) {
	syscall.Umask(mask)
}
