package constants

import "time"

// Application constants
const (
	ApplicationName  = "dirview"
	ApplicationTitle = "Directory View"
)

// Control loop constants
const (
	// TickInterval is how often the shell drains watcher and size queues
	TickInterval = 250 * time.Millisecond

	// Keyboard navigation
	FastNavigationStep = 20
)

// Directory watcher constants
const (
	WatcherPollInterval = 250 * time.Millisecond
	WatcherRedirectSlot = 1
)

// Size calculation constants
const (
	// DefaultMaxConcurrentSizes of 0 leaves size workers unbounded
	DefaultMaxConcurrentSizes = 0
	UnknownSizeText           = "..."
	FailedSizeText            = "?"
)

// File system constants
const (
	ParentDirectoryName = ".."
)

// Activity log constants
const (
	DefaultActivityEntries = 200
)

// Configuration constants
const (
	ConfigFileName            = "config.json"
	ConfigVendorDir           = "dirview"
	DefaultSortBy             = "type-name"
	DefaultSortOrder          = "asc"
	DefaultShowHiddenFiles    = true
	DefaultCursorMemoryLimit  = 100
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultLogFileName        = "dirview.log"
	DefaultTickIntervalMillis = 250
	DefaultPollIntervalMillis = 250
)
