package dirlist

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"dirview/internal/constants"
)

// CursorMemory remembers the last selected name per directory. The least
// recently used directory is evicted once the limit is reached.
type CursorMemory struct {
	cache *lru.Cache[string, string]
}

// NewCursorMemory creates a memory holding up to maxEntries directories
func NewCursorMemory(maxEntries int) *CursorMemory {
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCursorMemoryLimit
	}
	// lru.New only fails on a non-positive size
	cache, _ := lru.New[string, string](maxEntries)
	return &CursorMemory{cache: cache}
}

// Remember stores name as the selection for dir
func (cm *CursorMemory) Remember(dir, name string) {
	if name == "" {
		return
	}
	cm.cache.Add(dir, name)
}

// Recall returns the stored selection for dir
func (cm *CursorMemory) Recall(dir string) (string, bool) {
	return cm.cache.Get(dir)
}

// Forget drops the stored selection for dir
func (cm *CursorMemory) Forget(dir string) {
	cm.cache.Remove(dir)
}

// Len returns the number of remembered directories
func (cm *CursorMemory) Len() int {
	return cm.cache.Len()
}
