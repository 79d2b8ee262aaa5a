//go:build windows

package linkfs

import (
	"os"
)

// FileID identifies a physical file on disk. On Windows it is not the
// (volume serial, file index) pair; lacking cgo-free syscalls for that
// in this package's dependency set, same-file detection uses a
// same-size-and-modtime heuristic, good enough for the EEXIST no-op check
// but never used to decide cross-filesystem hardlink eligibility (callers
// fall through to the configured next link method on any hardlink error
// regardless of cause on this platform).
type FileID struct {
	Size    int64
	ModUnix int64
}

func (f FileID) IsZero() bool { return f.Size == 0 && f.ModUnix == 0 }

func fileID(fi os.FileInfo) (FileID, uint64, error) {
	return FileID{Size: fi.Size(), ModUnix: fi.ModTime().Unix()}, 1, nil
}

func sameFilesystem(aInfo, bInfo os.FileInfo) bool {
	return false
}
