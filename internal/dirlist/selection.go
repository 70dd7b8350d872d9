package dirlist

// Selected returns the selected index
func (m *Model) Selected() (int, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return -1, false
	}
	return m.selected, true
}

// SelectedItem returns the selected item
func (m *Model) SelectedItem() (Item, bool) {
	idx, ok := m.Selected()
	if !ok {
		return Item{}, false
	}
	return m.items[idx], true
}

// SelectionStale reports whether the selection changed since the last
// MarkSelectionFresh
func (m *Model) SelectionStale() bool {
	return m.selectionStale
}

// MarkSelectionFresh acknowledges the current selection
func (m *Model) MarkSelectionFresh() {
	m.selectionStale = false
}

// SelectByName clears the selection and selects the first entry named name.
// Nothing stays selected when no entry matches.
func (m *Model) SelectByName(name string) {
	m.setSelected(-1)
	for i, item := range m.items {
		if item.Kind == KindEntry && item.Entry.Name == name {
			m.setSelected(i)
			return
		}
	}
}

// SelectNext moves the selection down one row, stopping at the last row
func (m *Model) SelectNext() {
	m.MoveSelection(1)
}

// SelectPrevious moves the selection up one row, stopping at the first row
func (m *Model) SelectPrevious() {
	m.MoveSelection(-1)
}

// MoveSelection moves the selection by delta rows, clamped to the listing.
// With nothing selected the first row is selected.
func (m *Model) MoveSelection(delta int) {
	if len(m.items) == 0 {
		return
	}
	idx, ok := m.Selected()
	if !ok {
		m.setSelected(0)
		return
	}
	m.setSelected(clamp(idx+delta, 0, len(m.items)-1))
}

// SelectFirst selects the first row
func (m *Model) SelectFirst() {
	if len(m.items) == 0 {
		return
	}
	m.setSelected(0)
}

// SelectLast selects the last row
func (m *Model) SelectLast() {
	if len(m.items) == 0 {
		return
	}
	m.setSelected(len(m.items) - 1)
}

func (m *Model) setSelected(idx int) {
	if idx != m.selected {
		m.selectionStale = true
	}
	m.selected = idx
}

// selectedIdentity captures the selected row so it can be found again after
// the listing is rebuilt or reordered
func (m *Model) selectedIdentity() (Item, int, bool) {
	idx, ok := m.Selected()
	if !ok {
		return Item{}, -1, false
	}
	return m.items[idx], idx, true
}

// restoreSelection reselects prev by identity. When prev is gone the old index
// is clamped into range; when nothing was selected the first row is selected.
func (m *Model) restoreSelection(prev Item, prevIdx int, had bool) {
	if !had {
		if len(m.items) > 0 {
			m.setSelected(0)
		} else {
			m.setSelected(-1)
		}
		return
	}

	for i, item := range m.items {
		if sameIdentity(item, prev) {
			m.selected = i
			return
		}
	}

	if len(m.items) == 0 {
		m.setSelected(-1)
		return
	}
	m.setSelected(clamp(prevIdx, 0, len(m.items)-1))
	m.selectionStale = true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
