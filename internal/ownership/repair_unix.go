//go:build !windows

package ownership

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// repairTree walks root and re-owns entries currently owned by the
// superuser. Symlinks are re-owned without following them.
func repairTree(root string, uid, gid int) (repaired, failed int) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			failed++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			failed++
			return nil
		}
		st, ok := info.Sys().(*syscall.Stat_t)
		if !ok || st.Uid != 0 {
			return nil
		}

		if err := os.Lchown(path, uid, gid); err != nil {
			failed++
			return nil
		}
		repaired++
		return nil
	})
	return repaired, failed
}
