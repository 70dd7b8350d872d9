package fileinfo

import (
	"os/user"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

const ownerCacheSize = 64

// uid -> user name; lookups can hit NSS so they are cached
var ownerNames, _ = lru.New[uint32, string](ownerCacheSize)

// OwnerName resolves uid to a user name, falling back to the numeric id
func OwnerName(uid uint32) string {
	if name, ok := ownerNames.Get(uid); ok {
		return name
	}

	id := strconv.FormatUint(uint64(uid), 10)
	name := id
	if u, err := user.LookupId(id); err == nil && u.Username != "" {
		name = u.Username
	}
	ownerNames.Add(uid, name)
	return name
}

// GroupName renders a gid; groups are shown numerically
func GroupName(gid uint32) string {
	return strconv.FormatUint(uint64(gid), 10)
}
