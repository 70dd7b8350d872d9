package fileinfo

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dirview/internal/errors"
)

func TestDetermineFileType(t *testing.T) {
	testCases := []struct {
		name     string
		mode     fs.FileMode
		expected FileType
	}{
		{"Regular file", 0644, TypeFile},
		{"Directory", fs.ModeDir | 0755, TypeDirectory},
		{"Symlink", fs.ModeSymlink | 0777, TypeSymlink},
		{"Named pipe", fs.ModeNamedPipe | 0600, TypeOther},
		{"Socket", fs.ModeSocket | 0600, TypeOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineFileType(tc.mode); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestFileTypeString(t *testing.T) {
	assert.Equal(t, "file", TypeFile.String())
	assert.Equal(t, "dir", TypeDirectory.String())
	assert.Equal(t, "symlink", TypeSymlink.String())
	assert.Equal(t, "other", TypeOther.String())
}

func TestReadEntrySizesOnlyFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data/b.txt", make([]byte, 100), 0640))
	require.NoError(t, fsys.MkdirAll("/data/a_dir", 0755))

	file, err := ReadEntry(fsys, "/data/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", file.Name)
	assert.Equal(t, TypeFile, file.Type)
	assert.True(t, file.SizeKnown)
	assert.Equal(t, int64(100), file.Size)
	assert.Equal(t, fs.FileMode(0640), file.Perm)
	assert.False(t, file.NeedsSizeComputation())

	dir, err := ReadEntry(fsys, "/data/a_dir")
	require.NoError(t, err)
	assert.Equal(t, TypeDirectory, dir.Type)
	assert.False(t, dir.SizeKnown, "directory size must be deferred")
	assert.True(t, dir.NeedsSizeComputation())
	assert.Equal(t, "...", dir.SizeText())
}

func TestReadEntryMissingIsFileSystemError(t *testing.T) {
	_, err := ReadEntry(afero.NewMemMapFs(), "/nope/gone.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsFileSystem(err))
}

func TestReadEntrySymlinkOnDisk(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	entry, err := ReadEntry(afero.NewOsFs(), link)
	require.NoError(t, err)
	assert.Equal(t, TypeSymlink, entry.Type)
	assert.False(t, entry.SizeKnown)
	assert.Equal(t, uint32(os.Getuid()), entry.UID)
}

func TestListDirSkipsNothingOnHealthyDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/d/one", []byte("1"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/d/two", []byte("22"), 0644))
	require.NoError(t, fsys.MkdirAll("/d/sub", 0755))

	entries, skipped, err := ListDir(fsys, "/d")
	require.NoError(t, err)
	assert.Empty(t, skipped)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"one", "sub", "two"}, names)
}

func TestListDirMissingDirectory(t *testing.T) {
	_, _, err := ListDir(afero.NewMemMapFs(), "/missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsFileSystem(err))
}

func TestWithSize(t *testing.T) {
	dir := DirectoryEntry{Name: "a_dir", Type: TypeDirectory}
	sized := dir.WithSize(4096, false)

	assert.False(t, dir.SizeKnown, "WithSize must not mutate the receiver")
	assert.True(t, sized.SizeKnown)
	assert.Equal(t, int64(4096), sized.Size)
	assert.Equal(t, "4.0 KiB", sized.SizeText())

	failed := dir.WithSize(0, true)
	assert.Equal(t, "?", failed.SizeText())
}

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
		{-1, "0 B"},
	}

	for _, tc := range testCases {
		if got := FormatFileSize(tc.size); got != tc.expected {
			t.Errorf("For size %d, expected '%s', got '%s'", tc.size, tc.expected, got)
		}
	}
}

func TestPermString(t *testing.T) {
	assert.Equal(t, "rwxr-x---", PermString(0750))
	assert.Equal(t, "rw-r--r--", PermString(0644))
	// Type bits are ignored
	assert.Equal(t, "rwxr-xr-x", PermString(fs.ModeDir|0755))

	owner, group, other := PermTriplets(0741)
	assert.Equal(t, "rwx", owner)
	assert.Equal(t, "r--", group)
	assert.Equal(t, "--x", other)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".bashrc"))
	assert.False(t, IsHidden("bashrc"))
	assert.False(t, IsHidden(""))
}

func TestOwnerNameFallsBackToNumericID(t *testing.T) {
	// An id this large is not expected to map to a real account
	assert.Equal(t, "4000000001", OwnerName(4000000001))
	assert.Equal(t, "42", GroupName(42))
}

func TestOwnerNameIsCached(t *testing.T) {
	ownerNames.Remove(4000000002)
	assert.Equal(t, "4000000002", OwnerName(4000000002))

	cached, ok := ownerNames.Peek(4000000002)
	require.True(t, ok)
	assert.Equal(t, "4000000002", cached)

	// A cached name is served without another lookup
	ownerNames.Add(4000000002, "svc")
	assert.Equal(t, "svc", OwnerName(4000000002))
	ownerNames.Remove(4000000002)
}

func TestOwnerCacheIsBounded(t *testing.T) {
	for uid := uint32(4100000000); uid < 4100000000+2*ownerCacheSize; uid++ {
		OwnerName(uid)
	}
	assert.LessOrEqual(t, ownerNames.Len(), ownerCacheSize)
}

func TestFromFileInfoKeepsModTime(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/f", []byte("x"), 0600))
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fsys.Chtimes("/f", when, when))

	info, err := fsys.Stat("/f")
	require.NoError(t, err)
	entry := FromFileInfo(info)
	assert.True(t, entry.ModTime.Equal(when))
}
