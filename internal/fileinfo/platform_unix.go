//go:build !windows
// +build !windows

package fileinfo

import (
	"io/fs"
	"syscall"
)

// ownerIDs extracts uid/gid from the platform stat record
func ownerIDs(info fs.FileInfo) (uint32, uint32) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok && st != nil {
		return st.Uid, st.Gid
	}
	return 0, 0
}
