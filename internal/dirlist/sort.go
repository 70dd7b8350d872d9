package dirlist

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the attribute entries are ordered by
type SortKey int

const (
	SortTypeName SortKey = iota // directories first, then name
	SortName
	SortModified
	SortSize
)

// Direction is the sort direction
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the config name of the key
func (k SortKey) String() string {
	switch k {
	case SortTypeName:
		return "type-name"
	case SortName:
		return "name"
	case SortModified:
		return "modified"
	case SortSize:
		return "size"
	default:
		return "unknown"
	}
}

// String returns the config name of the direction
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortKey parses a config sort key
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type-name", "typename", "type":
		return SortTypeName, nil
	case "name":
		return SortName, nil
	case "modified", "datetime", "date":
		return SortModified, nil
	case "size":
		return SortSize, nil
	default:
		return SortTypeName, fmt.Errorf("unknown sort key %q", s)
	}
}

// ParseDirection parses a config sort order
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "":
		return Ascending, nil
	case "desc", "dec", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown sort order %q", s)
	}
}

// SortOption is a key and direction pair
type SortOption struct {
	Key       SortKey
	Direction Direction
}

// String renders the option for display, e.g. "TypeName (ASC)"
func (o SortOption) String() string {
	var key string
	switch o.Key {
	case SortTypeName:
		key = "TypeName"
	case SortName:
		key = "Name"
	case SortModified:
		key = "DateTime"
	case SortSize:
		key = "Size"
	}
	return fmt.Sprintf("%s (%s)", key, strings.ToUpper(o.Direction.String()))
}

// AllSortOptions lists every option in picker order
func AllSortOptions() []SortOption {
	return []SortOption{
		{SortTypeName, Ascending},
		{SortTypeName, Descending},
		{SortModified, Ascending},
		{SortModified, Descending},
		{SortName, Ascending},
		{SortName, Descending},
		{SortSize, Ascending},
		{SortSize, Descending},
	}
}

// NextSortOption returns the option after o in picker order, wrapping around
func NextSortOption(o SortOption) SortOption {
	all := AllSortOptions()
	for i, opt := range all {
		if opt == o {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// Compare orders two items. The parent row precedes every entry regardless of
// direction; direction only reverses the entry ordering.
func Compare(a, b Item, opt SortOption) int {
	switch {
	case a.Kind == KindParent && b.Kind == KindParent:
		return strings.Compare(a.Label, b.Label)
	case a.Kind == KindParent:
		return -1
	case b.Kind == KindParent:
		return 1
	}

	c := compareEntries(a, b, opt.Key)
	if opt.Direction == Descending {
		c = -c
	}
	return c
}

func compareEntries(a, b Item, key SortKey) int {
	ea, eb := a.Entry, b.Entry
	switch key {
	case SortTypeName:
		if ea.IsDir() != eb.IsDir() {
			if ea.IsDir() {
				return -1
			}
			return 1
		}
	case SortModified:
		if c := ea.ModTime.Compare(eb.ModTime); c != 0 {
			return c
		}
	case SortSize:
		// Unknown sizes sort below every known size
		switch {
		case !ea.SizeKnown && eb.SizeKnown:
			return -1
		case ea.SizeKnown && !eb.SizeKnown:
			return 1
		case ea.SizeKnown && eb.SizeKnown && ea.Size != eb.Size:
			if ea.Size < eb.Size {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(ea.Name, eb.Name)
}

// SortItems sorts items in place
func SortItems(items []Item, opt SortOption) {
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(items[i], items[j], opt) < 0
	})
}
