// Package activity keeps a bounded feed of recent background events
package activity

import (
	"fmt"
	"sync"
	"time"

	"dirview/internal/constants"
)

// Entry is one timestamped activity message
type Entry struct {
	Time    time.Time
	Message string
}

// Log is a bounded, goroutine-safe activity feed. When full, the oldest
// entries are dropped.
type Log struct {
	mu          sync.Mutex
	entries     []Entry
	max         int
	subscribers []func()

	now func() time.Time
}

// New creates an activity log holding up to max entries. A non-positive max
// selects the default.
func New(max int) *Log {
	if max <= 0 {
		max = constants.DefaultActivityEntries
	}
	return &Log{max: max, now: time.Now}
}

// Add appends a message
func (l *Log) Add(message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Time: l.now(), Message: message})
	if len(l.entries) > l.max {
		drop := len(l.entries) - l.max
		l.entries = append([]Entry{}, l.entries[drop:]...)
	}
	subs := append([]func(){}, l.subscribers...)
	l.mu.Unlock()

	// Called without the lock so callbacks may read the log
	for _, cb := range subs {
		cb()
	}
}

// Addf appends a formatted message
func (l *Log) Addf(format string, args ...interface{}) {
	l.Add(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the feed, oldest first
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Last returns up to n of the newest entries, oldest first
func (l *Log) Last(n int) []Entry {
	all := l.Entries()
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Subscribe registers a callback invoked after every Add
func (l *Log) Subscribe(cb func()) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.subscribers = append(l.subscribers, cb)
	l.mu.Unlock()
}
