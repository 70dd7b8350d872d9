package fileinfo

import (
	"path/filepath"

	"github.com/spf13/afero"

	apperrors "dirview/internal/errors"
)

// ListDir reads every child of dir.
//
// The returned error is non-nil only when dir itself cannot be listed. Children
// whose metadata cannot be read are left out and reported in skipped.
func ListDir(fsys afero.Fs, dir string) (entries []DirectoryEntry, skipped []error, err error) {
	f, err := fsys.Open(dir)
	if err != nil {
		return nil, nil, apperrors.NewFileSystemError("list_directory", dir, "unable to open directory", err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, nil, apperrors.NewFileSystemError("list_directory", dir, "unable to read directory", err)
	}

	entries = make([]DirectoryEntry, 0, len(names))
	for _, name := range names {
		entry, rerr := ReadEntry(fsys, filepath.Join(dir, name))
		if rerr != nil {
			skipped = append(skipped, rerr)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}
