package dirlist

import (
	"path/filepath"

	"dirview/internal/fileinfo"
	"dirview/internal/logging"
	"dirview/internal/watcher"
)

// nameSet is an insertion-ordered set of entry names
type nameSet struct {
	order []string
	seen  map[string]struct{}
}

func (s *nameSet) add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s *nameSet) has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// without returns the names of s that are not in other
func (s *nameSet) without(other *nameSet) []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if !other.has(name) {
			out = append(out, name)
		}
	}
	return out
}

// changeBatch is one drained event batch partitioned by kind
type changeBatch struct {
	created  nameSet
	modified nameSet
	removed  nameSet
	heavy    bool // identity of some entry cannot be resolved locally
}

// partition sorts the paths of events into created, modified and removed
// names of direct children of dir
func partition(dir string, events []watcher.Event) *changeBatch {
	b := &changeBatch{}
	for _, ev := range events {
		for _, p := range ev.Paths {
			clean := filepath.Clean(p)
			if clean == dir {
				if ev.Kind != watcher.KindOther {
					b.heavy = true
				}
				continue
			}
			if filepath.Dir(clean) != dir {
				continue
			}
			name := filepath.Base(clean)
			switch {
			case ev.Kind == watcher.KindModifyName:
				// Old and new names arrive separately
				b.heavy = true
			case ev.Kind == watcher.KindCreate:
				b.created.add(name)
			case ev.Kind == watcher.KindRemove:
				b.removed.add(name)
			case ev.Kind.IsModify():
				b.modified.add(name)
			}
		}
	}
	return b
}

// Reconcile applies one batch of watcher events as name-keyed updates:
// removals first, then creations, then modifications. A rename anywhere in the
// batch, or a change to the directory itself, falls back to Refresh.
//
// A path reported as removed is dropped from the created and modified sets, so
// a create and remove of the same path in one batch leaves it absent.
func (m *Model) Reconcile(events []watcher.Event) error {
	if len(events) == 0 {
		return nil
	}
	b := partition(m.path, events)
	if b.heavy {
		// Refresh supersedes every incremental step of this batch
		m.logger.Debug("name change in batch, refreshing", logging.Path(m.path), logging.Int("events", len(events)))
		return m.Refresh()
	}
	prev, prevIdx, had := m.selectedIdentity()

	for _, name := range b.removed.order {
		m.removeEntry(name)
		m.memory.Forget(filepath.Join(m.path, name))
	}

	for _, name := range b.created.without(&b.removed) {
		m.upsertFresh(name)
	}

	for _, name := range b.modified.without(&b.removed) {
		m.removeEntry(name)
		m.upsertFresh(name)
	}

	SortItems(m.items, m.sort)
	m.restoreSelection(prev, prevIdx, had)
	return nil
}

// upsertFresh re-reads name and replaces or appends its entry
func (m *Model) upsertFresh(name string) {
	entry, err := fileinfo.ReadEntry(m.fs, filepath.Join(m.path, name))
	if err != nil {
		m.logger.Debug("skipping unreadable entry", logging.Err(err))
		return
	}
	if !m.visible(entry) {
		m.removeEntry(name)
		return
	}
	m.submitSize(entry)

	for i, item := range m.items {
		if item.Kind == KindEntry && item.Entry.Name == name {
			m.items[i] = EntryItem(entry)
			return
		}
	}
	m.items = append(m.items, EntryItem(entry))
}

// removeEntry drops the entry named name; a missing name is a no-op
func (m *Model) removeEntry(name string) {
	for i, item := range m.items {
		if item.Kind == KindEntry && item.Entry.Name == name {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}
