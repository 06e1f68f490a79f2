// Package ownership repairs file ownership under the mounted source tree
// after a run.
//
// The source tree is typically bind-mounted from a host filesystem, and any
// file the build created as root would be left behind for the caller to
// clean up with elevated privileges. When the caller provides its own
// uid/gid, every root-owned entry under the mount is re-owned to it. The
// repair runs on both success and failure paths and never changes the exit
// code.
package ownership

import (
	"strconv"

	"github.com/wasmforge/wasibuild/internal/output"
)

// Repair re-owns every root-owned file and directory under root to
// uid:gid. Both identifiers must be non-empty decimal strings; otherwise
// the repair is skipped entirely. Per-entry failures are counted and
// reported as a single warning.
func Repair(root, uidStr, gidStr string, out *output.Writer) {
	if uidStr == "" || gidStr == "" {
		return
	}

	uid, err := strconv.Atoi(uidStr)
	if err != nil {
		out.Warning("invalid host uid %q, skipping ownership repair", uidStr)
		return
	}
	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		out.Warning("invalid host gid %q, skipping ownership repair", gidStr)
		return
	}

	repaired, failed := repairTree(root, uid, gid)
	if failed > 0 {
		out.Warning("ownership repair: %d entr(ies) could not be re-owned", failed)
	}
	if repaired > 0 {
		out.Info("re-owned %d entr(ies) under %s to %d:%d", repaired, root, uid, gid)
	}
}
