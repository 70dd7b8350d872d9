// Package dirlist keeps a live, sorted listing of one directory.
package dirlist

import (
	"dirview/internal/constants"
	"dirview/internal/fileinfo"
)

// ItemKind tags the variant held by an Item
type ItemKind int

const (
	KindEntry ItemKind = iota
	KindParent
)

// Item is one row of a listing: either a directory child or the synthetic
// parent row
type Item struct {
	Kind  ItemKind
	Entry fileinfo.DirectoryEntry // valid when Kind == KindEntry
	Label string                  // valid when Kind == KindParent
}

// EntryItem wraps a directory child
func EntryItem(e fileinfo.DirectoryEntry) Item {
	return Item{Kind: KindEntry, Entry: e}
}

// ParentItem returns the ".." row
func ParentItem() Item {
	return Item{Kind: KindParent, Label: constants.ParentDirectoryName}
}

// Name returns the entry name, or the label for the parent row
func (i Item) Name() string {
	switch i.Kind {
	case KindParent:
		return i.Label
	case KindEntry:
		return i.Entry.Name
	default:
		return ""
	}
}

// IsParent reports whether the item is the parent row
func (i Item) IsParent() bool {
	return i.Kind == KindParent
}

// sameIdentity reports whether a and b name the same row
func sameIdentity(a, b Item) bool {
	return a.Kind == b.Kind && a.Name() == b.Name()
}
