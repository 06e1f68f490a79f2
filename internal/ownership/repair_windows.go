//go:build windows

package ownership

// repairTree is a no-op on Windows: the build container is Linux-only and
// POSIX ownership does not apply.
func repairTree(root string, uid, gid int) (repaired, failed int) {
	return 0, 0
}
