package dirlist

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirview/internal/fileinfo"
	"dirview/internal/watcher"
)

func TestReconcileRemoveThenCreateSamePath(t *testing.T) {
	fsys := newTestFs(t)
	require.NoError(t, afero.WriteFile(fsys, "/data/x.txt", []byte("x"), 0644))
	env := newTestModel(t, fsys, "/data")
	require.Contains(t, names(env.model.Items()), "x.txt")

	batch := []watcher.Event{
		watcher.NewEvent(watcher.KindRemove, "/data/x.txt"),
		watcher.NewEvent(watcher.KindCreate, "/data/x.txt"),
	}
	require.NoError(t, env.model.Reconcile(batch))
	assert.NotContains(t, names(env.model.Items()), "x.txt")
}

func TestReconcileCreateAndRemoveInOneBatch(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	// The file exists on disk but the batch reports it as removed too
	require.NoError(t, afero.WriteFile(env.fs, "/data/tmp.swp", []byte("x"), 0644))

	batch := []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/data/tmp.swp"),
		watcher.NewEvent(watcher.KindModifyData, "/data/tmp.swp"),
		watcher.NewEvent(watcher.KindRemove, "/data/tmp.swp"),
	}
	require.NoError(t, env.model.Reconcile(batch))
	assert.Equal(t, []string{"..", "a_dir", "b.txt"}, names(env.model.Items()))
}

func TestReconcileCreate(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	env.sizes.submitted = nil
	require.NoError(t, env.fs.MkdirAll("/data/0_new_dir", 0755))
	require.NoError(t, afero.WriteFile(env.fs, "/data/c.txt", []byte("abc"), 0644))

	batch := []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/data/c.txt"),
		watcher.NewEvent(watcher.KindCreate, "/data/0_new_dir"),
		// Duplicated report
		watcher.NewEvent(watcher.KindCreate, "/data/c.txt"),
	}
	require.NoError(t, env.model.Reconcile(batch))

	assert.Equal(t, []string{"..", "0_new_dir", "a_dir", "b.txt", "c.txt"}, names(env.model.Items()))
	assert.Equal(t, []string{"0_new_dir"}, env.sizes.submittedNames())
	assert.Equal(t, int64(3), entryNamed(t, env.model, "c.txt").Size)
}

func TestReconcileCreateOfExistingEntryIsUpsert(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, afero.WriteFile(env.fs, "/data/b.txt", make([]byte, 7), 0644))

	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindCreate, "/data/b.txt")}))
	assert.Equal(t, []string{"..", "a_dir", "b.txt"}, names(env.model.Items()))
	assert.Equal(t, int64(7), entryNamed(t, env.model, "b.txt").Size)
}

func TestReconcileRemoveMissingNameIsNoop(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	before := env.model.Items()
	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindRemove, "/data/never-existed")}))
	assert.Equal(t, before, env.model.Items())
}

func TestReconcileCreateOfVanishedPathIsSkipped(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindCreate, "/data/ghost")}))
	assert.Equal(t, []string{"..", "a_dir", "b.txt"}, names(env.model.Items()))
}

func TestReconcileModifyRereadsEntry(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, env.fs.Chmod("/data/b.txt", 0600))

	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindModifyMetadata, "/data/b.txt")}))
	assert.Equal(t, "rw-------", fileinfo.PermString(entryNamed(t, env.model, "b.txt").Perm))
}

func TestReconcileModifyResubmitsDirectorySize(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.True(t, env.model.ApplySizeResult(sizeResult("a_dir", 4096)))
	env.sizes.submitted = nil

	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindModifyData, "/data/a_dir")}))
	assert.Equal(t, []string{"a_dir"}, env.sizes.submittedNames())
	assert.False(t, entryNamed(t, env.model, "a_dir").SizeKnown, "a fresh read supersedes the old size")
}

func TestReconcileIsIdempotent(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, afero.WriteFile(env.fs, "/data/c.txt", []byte("c"), 0644))
	require.NoError(t, env.fs.Remove("/data/b.txt"))
	require.NoError(t, env.fs.Chmod("/data/a_dir", 0700))

	batch := []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/data/c.txt"),
		watcher.NewEvent(watcher.KindRemove, "/data/b.txt"),
		watcher.NewEvent(watcher.KindModifyMetadata, "/data/a_dir"),
	}
	require.NoError(t, env.model.Reconcile(batch))
	once := env.model.Items()

	require.NoError(t, env.model.Reconcile(batch))
	assert.Equal(t, once, env.model.Items())
	assert.Equal(t, []string{"..", "a_dir", "c.txt"}, names(once))
}

func TestReconcileIsOrderTolerant(t *testing.T) {
	setup := func(t *testing.T) *testEnv {
		env := newTestModel(t, newTestFs(t), "/data")
		require.NoError(t, afero.WriteFile(env.fs, "/data/c.txt", []byte("c"), 0644))
		require.NoError(t, afero.WriteFile(env.fs, "/data/d.txt", []byte("d"), 0644))
		require.NoError(t, env.fs.Remove("/data/b.txt"))
		return env
	}
	forward := []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/data/c.txt"),
		watcher.NewEvent(watcher.KindRemove, "/data/b.txt"),
		watcher.NewEvent(watcher.KindCreate, "/data/d.txt"),
	}
	backward := []watcher.Event{forward[2], forward[1], forward[0]}

	a := setup(t)
	require.NoError(t, a.model.Reconcile(forward))
	b := setup(t)
	require.NoError(t, b.model.Reconcile(backward))

	assert.Equal(t, names(a.model.Items()), names(b.model.Items()))
}

func TestReconcileRenameMatchesFreshRefresh(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, env.fs.Rename("/data/b.txt", "/data/z.txt"))

	batch := []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/data/unrelated"),
		watcher.NewEvent(watcher.KindModifyName, "/data/b.txt"),
		watcher.NewEvent(watcher.KindModifyName, "/data/z.txt"),
	}
	require.NoError(t, env.model.Reconcile(batch))

	fresh := newTestModel(t, env.fs, "/data")
	assert.Equal(t, fresh.model.Items(), env.model.Items())
	assert.Equal(t, []string{"..", "a_dir", "z.txt"}, names(env.model.Items()))
}

func TestReconcileIgnoresOtherDirectories(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, afero.WriteFile(env.fs, "/elsewhere/x", []byte("x"), 0644))
	before := env.model.Items()

	batch := []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/elsewhere/x"),
		watcher.NewEvent(watcher.KindRemove, "/data/a_dir/inner"),
	}
	require.NoError(t, env.model.Reconcile(batch))
	assert.Equal(t, before, env.model.Items())
}

func TestReconcileIgnoresRenameInOtherDirectory(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	env.sizes.submitted = nil
	before := env.model.Items()

	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindModifyName, "/elsewhere/old.txt")}))
	assert.Empty(t, env.sizes.submitted, "a foreign rename must not trigger a refresh")
	assert.Equal(t, before, env.model.Items())
}

func TestReconcileRemovalForgetsCursorMemory(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	m := env.model
	m.CursorMemory().Remember("/data/a_dir", "inner")
	m.CursorMemory().Remember("/data/b.txt", "x")
	require.NoError(t, env.fs.RemoveAll("/data/a_dir"))

	require.NoError(t, m.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindRemove, "/data/a_dir")}))
	_, ok := m.CursorMemory().Recall("/data/a_dir")
	assert.False(t, ok)
	_, ok = m.CursorMemory().Recall("/data/b.txt")
	assert.True(t, ok)
}

func TestReconcileChangeToCurrentDirectoryRefreshes(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	require.NoError(t, afero.WriteFile(env.fs, "/data/quiet.txt", []byte("q"), 0644))

	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindModifyMetadata, "/data")}))
	assert.Contains(t, names(env.model.Items()), "quiet.txt")
}

func TestReconcileRefreshFailureIsSurfaced(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	before := env.model.Items()
	require.NoError(t, env.fs.RemoveAll("/data"))

	err := env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindRemove, "/data")})
	require.Error(t, err)
	assert.Equal(t, before, env.model.Items())
}

func TestReconcileKeepsSelectedEntry(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data")
	m := env.model
	m.SelectByName("b.txt")
	m.MarkSelectionFresh()
	require.NoError(t, env.fs.MkdirAll("/data/b_dir", 0755))

	require.NoError(t, m.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindCreate, "/data/b_dir")}))
	item, ok := m.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, "b.txt", item.Name())
	assert.False(t, m.SelectionStale())
}

func TestReconcileRespectsHiddenRule(t *testing.T) {
	env := newTestModel(t, newTestFs(t), "/data", func(o *Options) { o.ShowHidden = false })
	require.NoError(t, afero.WriteFile(env.fs, "/data/.hidden", []byte("x"), 0644))

	require.NoError(t, env.model.Reconcile([]watcher.Event{watcher.NewEvent(watcher.KindCreate, "/data/.hidden")}))
	assert.NotContains(t, names(env.model.Items()), ".hidden")
}

func TestPartition(t *testing.T) {
	b := partition("/d", []watcher.Event{
		watcher.NewEvent(watcher.KindCreate, "/d/a", "/d/b"),
		watcher.NewEvent(watcher.KindModifyData, "/d/a/"),
		watcher.NewEvent(watcher.KindRemove, "/d/b"),
		watcher.NewEvent(watcher.KindOther, "/d/c"),
		watcher.NewEvent(watcher.KindCreate, "/other/e"),
	})

	assert.Equal(t, []string{"a", "b"}, b.created.order)
	assert.Equal(t, []string{"a"}, b.modified.order)
	assert.Equal(t, []string{"b"}, b.removed.order)
	assert.Equal(t, []string{"a"}, b.created.without(&b.removed))
	assert.False(t, b.heavy)
}

func TestPartitionRenameIsHeavyOnlyInDirectory(t *testing.T) {
	assert.False(t, partition("/d", []watcher.Event{watcher.NewEvent(watcher.KindModifyName, "/other/a")}).heavy)
	assert.False(t, partition("/d", []watcher.Event{watcher.NewEvent(watcher.KindModifyName, "/d/sub/a")}).heavy)
	assert.True(t, partition("/d", []watcher.Event{watcher.NewEvent(watcher.KindModifyName, "/d/a")}).heavy)
}
