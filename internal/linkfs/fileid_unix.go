//go:build !windows

package linkfs

import (
	"errors"
	"os"
	"syscall"
)

// FileID uniquely identifies a physical file on disk. On Unix this is the
// (device, inode) pair reported by stat(2); two paths that resolve to the
// same FileID are the same underlying file, whether reached via a hardlink
// or the original path.
type FileID struct {
	Dev uint64
	Ino uint64
}

func (f FileID) IsZero() bool { return f.Dev == 0 && f.Ino == 0 }

// fileID extracts the FileID and hardlink count from os.FileInfo.
func fileID(fi os.FileInfo) (FileID, uint64, error) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, 0, errors.New("linkfs: stat_t unavailable for this FileInfo")
	}
	return FileID{Dev: uint64(st.Dev), Ino: st.Ino}, uint64(st.Nlink), nil //nolint:gosec
}

// sameFilesystem compares device ids, the Unix test for "can these two
// paths be hardlinked to each other".
func sameFilesystem(aInfo, bInfo os.FileInfo) bool {
	a, ok1 := aInfo.Sys().(*syscall.Stat_t)
	b, ok2 := bInfo.Sys().(*syscall.Stat_t)
	if !ok1 || !ok2 {
		return false
	}
	return a.Dev == b.Dev
}
