package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"dirview/internal/constants"
	apperrors "dirview/internal/errors"
	"dirview/internal/logging"
)

// Config represents the application configuration
type Config struct {
	Sort    SortConfig    `json:"sort"`
	UI      UIConfig      `json:"ui"`
	Watcher WatcherConfig `json:"watcher"`
	Size    SizeConfig    `json:"size"`
	Log     LogConfig     `json:"log"`
}

// SortConfig represents listing sort settings
type SortConfig struct {
	SortBy    string `json:"sortBy"`    // "type-name", "name", "modified", "size"
	SortOrder string `json:"sortOrder"` // "asc", "desc"
}

// UIConfig represents shell-related settings
type UIConfig struct {
	ShowHiddenFiles    bool               `json:"showHiddenFiles"`
	Filter             string             `json:"filter"` // Doublestar glob applied to entry names
	TickIntervalMillis int                `json:"tickIntervalMs"`
	CursorMemory       CursorMemoryConfig `json:"cursorMemory"`
}

// CursorMemoryConfig bounds the in-memory per-directory cursor memory
type CursorMemoryConfig struct {
	MaxEntries int `json:"maxEntries"`
}

// WatcherConfig represents directory watcher settings
type WatcherConfig struct {
	PollIntervalMillis int `json:"pollIntervalMs"`
}

// SizeConfig represents background size computation settings
type SizeConfig struct {
	MaxConcurrent int `json:"maxConcurrent"` // 0 = unbounded
}

// LogConfig represents logging settings
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	OutputPath string `json:"outputPath"`
}

// TickInterval returns the control loop interval
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.UI.TickIntervalMillis) * time.Millisecond
}

// PollInterval returns the watcher redirect polling interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watcher.PollIntervalMillis) * time.Millisecond
}

// Manager provides configuration management functionality
type Manager struct {
	configPath string
	logger     *zap.Logger
}

// NewManager creates a new configuration manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		configPath: getConfigPath(),
		logger:     logging.OrNop(logger),
	}
}

// NewManagerWithPath creates a configuration manager for an explicit file
func NewManagerWithPath(path string, logger *zap.Logger) *Manager {
	return &Manager{
		configPath: path,
		logger:     logging.OrNop(logger),
	}
}

// Path returns the configuration file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load loads configuration from file and merges with defaults
func (m *Manager) Load() (*Config, error) {
	config := getDefaultConfig()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		m.logger.Debug("config file not found, using defaults", logging.Path(m.configPath), logging.Err(err))
		return config, nil
	}

	// Fields absent from the file keep their default values
	if err := json.Unmarshal(data, config); err != nil {
		return nil, apperrors.NewConfigError("load_config", "error parsing config file", err)
	}

	normalize(config)
	return config, nil
}

// Save saves configuration to file
func (m *Manager) Save(config *Config) error {
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return apperrors.NewConfigError("save_config", "error creating config directory", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return apperrors.NewConfigError("save_config", "error marshaling config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return apperrors.NewConfigError("save_config", "error writing config file", err)
	}

	return nil
}

// Default returns the default configuration
func Default() *Config {
	return getDefaultConfig()
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Sort: SortConfig{
			SortBy:    constants.DefaultSortBy,
			SortOrder: constants.DefaultSortOrder,
		},
		UI: UIConfig{
			ShowHiddenFiles:    constants.DefaultShowHiddenFiles,
			Filter:             "",
			TickIntervalMillis: constants.DefaultTickIntervalMillis,
			CursorMemory: CursorMemoryConfig{
				MaxEntries: constants.DefaultCursorMemoryLimit,
			},
		},
		Watcher: WatcherConfig{
			PollIntervalMillis: constants.DefaultPollIntervalMillis,
		},
		Size: SizeConfig{
			MaxConcurrent: constants.DefaultMaxConcurrentSizes,
		},
		Log: LogConfig{
			Level:  constants.DefaultLogLevel,
			Format: constants.DefaultLogFormat,
		},
	}
}

// normalize replaces out-of-range values with defaults
func normalize(c *Config) {
	def := getDefaultConfig()

	switch strings.ToLower(c.Sort.SortBy) {
	case "type-name", "name", "modified", "size":
		c.Sort.SortBy = strings.ToLower(c.Sort.SortBy)
	default:
		c.Sort.SortBy = def.Sort.SortBy
	}
	switch strings.ToLower(c.Sort.SortOrder) {
	case "asc", "desc":
		c.Sort.SortOrder = strings.ToLower(c.Sort.SortOrder)
	default:
		c.Sort.SortOrder = def.Sort.SortOrder
	}

	if c.UI.TickIntervalMillis <= 0 {
		c.UI.TickIntervalMillis = def.UI.TickIntervalMillis
	}
	if c.UI.CursorMemory.MaxEntries <= 0 {
		c.UI.CursorMemory.MaxEntries = def.UI.CursorMemory.MaxEntries
	}
	if c.Watcher.PollIntervalMillis <= 0 {
		c.Watcher.PollIntervalMillis = def.Watcher.PollIntervalMillis
	}
	if c.Size.MaxConcurrent < 0 {
		c.Size.MaxConcurrent = def.Size.MaxConcurrent
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// getConfigPath returns the path to the configuration file following OS conventions
func getConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\dirview\config.json
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return constants.ConfigFileName
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, constants.ConfigVendorDir)

	case "darwin":
		// macOS: ~/Library/Application Support/dirview/config.json
		home, err := os.UserHomeDir()
		if err != nil {
			return constants.ConfigFileName
		}
		configDir = filepath.Join(home, "Library", "Application Support", constants.ConfigVendorDir)

	default:
		// Linux/Unix: $XDG_CONFIG_HOME/dirview/config.json or ~/.config/dirview/config.json
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return constants.ConfigFileName
			}
			xdgConfigHome = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(xdgConfigHome, constants.ConfigVendorDir)
	}

	return filepath.Join(configDir, constants.ConfigFileName)
}
