package dirlist

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"dirview/internal/activity"
	apperrors "dirview/internal/errors"
	"dirview/internal/fileinfo"
	"dirview/internal/logging"
	"dirview/internal/sizecalc"
	"dirview/internal/watcher"
)

// Watcher delivers change notifications for the current directory
type Watcher interface {
	Start(path string) error
	Redirect(path string) error
	Drain() []watcher.Event
	Degraded() bool
	Close() error
}

// SizeCalculator computes directory sizes in the background
type SizeCalculator interface {
	Submit(name, parentDir string)
	Drain() []sizecalc.Result
	Pending() int
}

// Options configures a Model. Zero values select an OS filesystem, no watcher
// and an unbounded size calculator.
type Options struct {
	Fs               afero.Fs
	Sort             SortOption
	ShowHidden       bool
	Filter           string // doublestar pattern applied to file names
	CursorMemorySize int
	Watcher          Watcher
	Sizes            SizeCalculator
	Logger           *zap.Logger
	Activity         *activity.Log
}

// Model is the authoritative view of one directory. It is not safe for
// concurrent use; the control loop owns it and feeds it watcher events and
// size results.
type Model struct {
	fs       afero.Fs
	logger   *zap.Logger
	activity *activity.Log
	watcher  Watcher
	watching bool
	sizes    SizeCalculator
	memory   *CursorMemory

	path           string
	sort           SortOption
	showHidden     bool
	filter         string
	items          []Item
	selected       int
	selectionStale bool
}

// New creates a model for path and performs the initial refresh. A watch
// registration failure is logged and the model runs without notifications.
func New(path string, opts Options) (*Model, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Sizes == nil {
		opts.Sizes = sizecalc.New(sizecalc.Options{Fs: opts.Fs, Logger: opts.Logger, Activity: opts.Activity})
	}
	if opts.Filter != "" && !doublestar.ValidatePattern(opts.Filter) {
		return nil, apperrors.NewConfigError("new_model", "invalid filter pattern "+opts.Filter, nil)
	}

	m := &Model{
		fs:         opts.Fs,
		logger:     logging.OrNop(opts.Logger).Named("dirlist"),
		activity:   opts.Activity,
		watcher:    opts.Watcher,
		sizes:      opts.Sizes,
		memory:     NewCursorMemory(opts.CursorMemorySize),
		sort:       opts.Sort,
		showHidden: opts.ShowHidden,
		filter:     opts.Filter,
		selected:   -1,
	}

	canonical, err := m.canonicalize(path)
	if err != nil {
		return nil, err
	}
	m.path = canonical

	if err := m.Refresh(); err != nil {
		return nil, err
	}
	m.startWatching()
	return m, nil
}

// Path returns the canonical current directory
func (m *Model) Path() string {
	return m.path
}

// SortOption returns the active sort
func (m *Model) SortOption() SortOption {
	return m.sort
}

// ShowHidden reports whether dot files are listed
func (m *Model) ShowHidden() bool {
	return m.showHidden
}

// Filter returns the active name filter
func (m *Model) Filter() string {
	return m.filter
}

// Items returns a copy of the listing in display order
func (m *Model) Items() []Item {
	return append([]Item(nil), m.items...)
}

// Len returns the number of rows
func (m *Model) Len() int {
	return len(m.items)
}

// Refresh re-reads the whole directory. If the directory cannot be listed the
// previous listing is kept and the error is returned.
func (m *Model) Refresh() error {
	entries, skipped, err := fileinfo.ListDir(m.fs, m.path)
	if err != nil {
		m.logger.Warn("refresh failed, keeping previous listing", logging.Path(m.path), logging.Err(err))
		return err
	}
	for _, serr := range skipped {
		m.logger.Debug("skipping entry", logging.Err(serr))
	}

	prev, prevIdx, had := m.selectedIdentity()

	items := make([]Item, 0, len(entries)+1)
	items = append(items, ParentItem())
	for _, e := range entries {
		if !m.visible(e) {
			continue
		}
		m.submitSize(e)
		items = append(items, EntryItem(e))
	}
	m.items = items
	SortItems(m.items, m.sort)
	m.restoreSelection(prev, prevIdx, had)

	m.logger.Debug("refreshed", logging.Path(m.path), logging.Int("items", len(m.items)), logging.Int("skipped", len(skipped)))
	return nil
}

// SortBy changes the sort and reorders the listing, keeping the selection
func (m *Model) SortBy(key SortKey, dir Direction) {
	m.sort = SortOption{Key: key, Direction: dir}
	m.resort()
}

// SetShowHidden toggles dot files and refreshes
func (m *Model) SetShowHidden(show bool) error {
	if m.showHidden == show {
		return nil
	}
	m.showHidden = show
	return m.Refresh()
}

// SetFilter installs a doublestar name pattern and refreshes. An empty
// pattern lists everything.
func (m *Model) SetFilter(pattern string) error {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return apperrors.NewConfigError("set_filter", "invalid filter pattern "+pattern, nil)
	}
	m.filter = pattern
	return m.Refresh()
}

// DrainWatchEvents returns every event queued by the watcher
func (m *Model) DrainWatchEvents() []watcher.Event {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Drain()
}

// DrainSizeResults returns every completed size computation
func (m *Model) DrainSizeResults() []sizecalc.Result {
	return m.sizes.Drain()
}

// ApplySizeResult records a computed size on the matching entry. Results for
// another directory, for a vanished entry or for an entry that no longer
// needs a computed size are ignored.
func (m *Model) ApplySizeResult(r sizecalc.Result) bool {
	if r.ParentDir != m.path {
		return false
	}
	for i, item := range m.items {
		if item.Kind != KindEntry || item.Entry.Name != r.Name {
			continue
		}
		if !item.Entry.NeedsSizeComputation() {
			// The name now belongs to an entry whose size was read from disk
			return false
		}
		m.items[i].Entry = item.Entry.WithSize(r.Size, r.Failed)
		if m.sort.Key == SortSize {
			m.resort()
		}
		return true
	}
	return false
}

// PendingSizes returns how many size computations are still running
func (m *Model) PendingSizes() int {
	return m.sizes.Pending()
}

// Watching reports whether change notifications are being delivered for the
// current directory
func (m *Model) Watching() bool {
	return m.watcher != nil && m.watching && !m.watcher.Degraded()
}

// Tick runs one control loop pass: pending watcher events are reconciled and
// finished size results are applied
func (m *Model) Tick() error {
	var err error
	if events := m.DrainWatchEvents(); len(events) > 0 {
		err = m.Reconcile(events)
	}
	for _, r := range m.DrainSizeResults() {
		m.ApplySizeResult(r)
	}
	return err
}

// SetDir moves the view to path. On failure the previous directory and
// listing are kept.
func (m *Model) SetDir(path string) error {
	target, err := m.canonicalize(path)
	if err != nil {
		return err
	}
	if target == m.path {
		return m.Refresh()
	}

	prevPath := m.path
	prevItems := m.items
	prevSelected := m.selected
	prevName := ""
	if item, ok := m.SelectedItem(); ok && item.Kind == KindEntry {
		prevName = item.Entry.Name
	}

	m.path = target
	m.items = nil
	m.selected = -1
	if err := m.Refresh(); err != nil {
		m.path = prevPath
		m.items = prevItems
		m.selected = prevSelected
		return err
	}

	m.memory.Remember(prevPath, prevName)
	m.redirectWatcher()

	if child, ok := childOf(target, prevPath); ok {
		// Going up lands on the directory we came from
		m.SelectByName(child)
	} else if name, ok := m.memory.Recall(target); ok {
		m.SelectByName(name)
	}
	if _, ok := m.Selected(); !ok {
		m.SelectFirst()
	}
	m.selectionStale = true

	m.logger.Debug("changed directory", logging.String("from", prevPath), logging.String("to", target))
	m.activity.Addf("Opened %s", target)
	return nil
}

// Enter opens the selected row: the parent row goes up, a directory (or a
// symlink to one) is entered. Other rows are left alone.
func (m *Model) Enter() error {
	item, ok := m.SelectedItem()
	if !ok {
		return nil
	}
	switch item.Kind {
	case KindParent:
		return m.Parent()
	case KindEntry:
		target := filepath.Join(m.path, item.Entry.Name)
		switch item.Entry.Type {
		case fileinfo.TypeDirectory:
			return m.SetDir(target)
		case fileinfo.TypeSymlink:
			info, err := m.fs.Stat(target)
			if err != nil || !info.IsDir() {
				return nil
			}
			return m.SetDir(target)
		}
	}
	return nil
}

// Parent moves to the enclosing directory. It is a no-op at the root.
func (m *Model) Parent() error {
	parent := filepath.Dir(m.path)
	if parent == m.path {
		return nil
	}
	return m.SetDir(parent)
}

// CursorMemory exposes the per-directory selection memory
func (m *Model) CursorMemory() *CursorMemory {
	return m.memory
}

// Close stops the watcher
func (m *Model) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}

func (m *Model) resort() {
	prev, prevIdx, had := m.selectedIdentity()
	SortItems(m.items, m.sort)
	if had {
		m.restoreSelection(prev, prevIdx, had)
	}
}

func (m *Model) submitSize(e fileinfo.DirectoryEntry) {
	if e.NeedsSizeComputation() {
		m.sizes.Submit(e.Name, m.path)
	}
}

// visible applies the hidden-file rule and the name filter. Directories are
// never filtered by pattern so navigation stays possible.
func (m *Model) visible(e fileinfo.DirectoryEntry) bool {
	if !m.showHidden && fileinfo.IsHidden(e.Name) {
		return false
	}
	if m.filter == "" || e.IsDir() {
		return true
	}
	matched, err := doublestar.Match(m.filter, e.Name)
	return err == nil && matched
}

func (m *Model) startWatching() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Start(m.path); err != nil {
		m.logger.Warn("watch unavailable, continuing without notifications", logging.Err(err))
		return
	}
	m.watching = true
}

func (m *Model) redirectWatcher() {
	if m.watcher == nil {
		return
	}
	if !m.watching {
		m.startWatching()
		return
	}
	if err := m.watcher.Redirect(m.path); err != nil {
		m.logger.Warn("watch redirect failed", logging.Err(err))
	}
}

// canonicalize makes path absolute, resolves symlinks on the OS filesystem and
// checks that it names a directory
func (m *Model) canonicalize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperrors.NewFileSystemError("canonicalize", path, "empty path", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperrors.NewFileSystemError("canonicalize", path, "unable to make path absolute", err)
	}
	if _, ok := m.fs.(*afero.OsFs); ok {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", apperrors.NewFileSystemError("canonicalize", abs, "unable to resolve path", err)
		}
		abs = resolved
	}

	info, err := m.fs.Stat(abs)
	if err != nil {
		return "", apperrors.NewFileSystemError("canonicalize", abs, "unable to stat directory", err)
	}
	if !info.IsDir() {
		return "", apperrors.NewFileSystemError("canonicalize", abs, "not a directory", os.ErrInvalid)
	}
	return abs, nil
}

// childOf returns the first path element of from below dir, when from lies
// inside dir
func childOf(dir, from string) (string, bool) {
	rel, err := filepath.Rel(dir, from)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return strings.SplitN(rel, string(filepath.Separator), 2)[0], true
}
