package watcher

import (
	"github.com/fsnotify/fsnotify"
)

// Kind is the OS-reported kind of a change notification
type Kind int

const (
	KindOther Kind = iota
	KindCreate
	KindModifyData
	KindModifyMetadata
	KindModifyName // rename; old and new identity arrive as separate events
	KindRemove
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindModifyData:
		return "modify(data)"
	case KindModifyMetadata:
		return "modify(metadata)"
	case KindModifyName:
		return "modify(name)"
	case KindRemove:
		return "remove"
	default:
		return "other"
	}
}

// IsModify reports whether the kind is any modify variant
func (k Kind) IsModify() bool {
	return k == KindModifyData || k == KindModifyMetadata || k == KindModifyName
}

// Event is one raw change notification. It is a value type and is not
// retained beyond one reconciliation pass.
type Event struct {
	Kind  Kind
	Paths []string
}

// NewEvent builds an Event for the given paths
func NewEvent(kind Kind, paths ...string) Event {
	return Event{Kind: kind, Paths: append([]string(nil), paths...)}
}

// opKinds lists fsnotify op bits in the order they are reported
var opKinds = []struct {
	op   fsnotify.Op
	kind Kind
}{
	{fsnotify.Create, KindCreate},
	{fsnotify.Write, KindModifyData},
	{fsnotify.Chmod, KindModifyMetadata},
	{fsnotify.Rename, KindModifyName},
	{fsnotify.Remove, KindRemove},
}

// FromFSNotify converts an fsnotify event into one Event per op bit
func FromFSNotify(ev fsnotify.Event) []Event {
	var out []Event
	for _, ok := range opKinds {
		if ev.Op.Has(ok.op) {
			out = append(out, NewEvent(ok.kind, ev.Name))
		}
	}
	if len(out) == 0 {
		out = append(out, NewEvent(KindOther, ev.Name))
	}
	return out
}
