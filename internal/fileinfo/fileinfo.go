package fileinfo

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"dirview/internal/constants"
	apperrors "dirview/internal/errors"
)

// FileType represents the type of a directory child
type FileType int

const (
	TypeFile FileType = iota
	TypeDirectory
	TypeSymlink
	TypeOther
)

// String returns a short name for the file type
func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "dir"
	case TypeSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// DirectoryEntry is an immutable snapshot of one directory child.
//
// Size is only meaningful when SizeKnown is set. Files get their size at read
// time; directories and symlinks get it later from a size computation.
type DirectoryEntry struct {
	Name       string
	Type       FileType
	Size       int64
	SizeKnown  bool
	SizeFailed bool // size computation failed and Size was resolved to 0
	UID        uint32
	GID        uint32
	Perm       fs.FileMode // 9-bit rwx mask
	ModTime    time.Time
}

// IsDir reports whether the entry is a directory
func (e DirectoryEntry) IsDir() bool {
	return e.Type == TypeDirectory
}

// NeedsSizeComputation reports whether the entry's size is computed off-path
func (e DirectoryEntry) NeedsSizeComputation() bool {
	return e.Type == TypeDirectory || e.Type == TypeSymlink
}

// WithSize returns a copy of the entry with a computed size applied
func (e DirectoryEntry) WithSize(size int64, failed bool) DirectoryEntry {
	e.Size = size
	e.SizeKnown = true
	e.SizeFailed = failed
	return e
}

// SizeText renders the size column: "..." while computing, "?" after a failure
func (e DirectoryEntry) SizeText() string {
	switch {
	case !e.SizeKnown:
		return constants.UnknownSizeText
	case e.SizeFailed:
		return constants.FailedSizeText
	default:
		return FormatFileSize(e.Size)
	}
}

// DetermineFileType maps a mode to a FileType without following symlinks
func DetermineFileType(mode fs.FileMode) FileType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	case mode.IsDir():
		return TypeDirectory
	case mode.IsRegular():
		return TypeFile
	default:
		return TypeOther
	}
}

// FromFileInfo converts one listing record into a DirectoryEntry
func FromFileInfo(info fs.FileInfo) DirectoryEntry {
	fileType := DetermineFileType(info.Mode())
	uid, gid := ownerIDs(info)

	entry := DirectoryEntry{
		Name:    info.Name(),
		Type:    fileType,
		UID:     uid,
		GID:     gid,
		Perm:    info.Mode().Perm(),
		ModTime: info.ModTime(),
	}
	// Only plain files are sized synchronously
	if fileType == TypeFile {
		entry.Size = info.Size()
		entry.SizeKnown = true
	}
	return entry
}

// ReadEntry reads a fresh DirectoryEntry for path
func ReadEntry(fsys afero.Fs, path string) (DirectoryEntry, error) {
	info, err := Lstat(fsys, path)
	if err != nil {
		return DirectoryEntry{}, apperrors.NewFileSystemError("read_entry", path, "unable to read entry metadata", err)
	}
	return FromFileInfo(info), nil
}

// Lstat stats path without following a trailing symlink when the Fs supports it
func Lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

// IsHidden reports whether name is a dot file
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// FormatFileSize formats file size in human-readable IEC units
func FormatFileSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

// PermString renders the rwx mask as nine characters, e.g. "rwxr-x---"
func PermString(perm fs.FileMode) string {
	// FileMode.String prefixes the type character
	return perm.Perm().String()[1:]
}

// PermTriplets splits PermString into owner, group, and other columns
func PermTriplets(perm fs.FileMode) (owner, group, other string) {
	s := PermString(perm)
	return s[0:3], s[3:6], s[6:9]
}
