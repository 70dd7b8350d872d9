package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"dirview/internal/activity"
	"dirview/internal/config"
	"dirview/internal/constants"
	"dirview/internal/dirlist"
	"dirview/internal/logging"
	"dirview/internal/sizecalc"
	"dirview/internal/watcher"
)

// Global debug flag
var debugMode bool

// Ensure the background workers satisfy the listing's collaborator interfaces
var (
	_ dirlist.Watcher        = (*watcher.DirectoryWatcher)(nil)
	_ dirlist.SizeCalculator = (*sizecalc.Calculator)(nil)
)

func main() {
	// Parse command line flags
	var startPath, configPath string
	flag.BoolVar(&debugMode, "d", false, "Enable debug mode")
	flag.StringVar(&startPath, "path", "", "Starting directory path")
	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.Parse()

	// If no path specified via flag, check remaining arguments
	if startPath == "" && flag.NArg() > 0 {
		startPath = flag.Arg(0)
	}

	// If still no path, use current working directory
	if startPath == "" {
		pwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting current directory: %v\n", err)
			os.Exit(1)
		}
		startPath = pwd
	}

	var manager *config.Manager
	if configPath != "" {
		manager = config.NewManagerWithPath(configPath, nil)
	} else {
		manager = config.NewManager(nil)
	}
	cfg, err := manager.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(loggingConfig(cfg, debugMode)); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	err = run(startPath, cfg, manager, logging.Named(constants.ApplicationName))
	_ = logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loggingConfig maps the log section to logging.Config. The terminal belongs
// to the UI, so debug mode logs to a file unless a path is configured.
func loggingConfig(cfg *config.Config, debug bool) logging.Config {
	lc := logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
	}
	if debug {
		lc.Level = "debug"
		if lc.OutputPath == "" {
			lc.OutputPath = filepath.Join(os.TempDir(), constants.DefaultLogFileName)
		}
	}
	return lc
}

// modelOptions builds listing options from the configuration
func modelOptions(cfg *config.Config, logger *zap.Logger) dirlist.Options {
	key, err := dirlist.ParseSortKey(cfg.Sort.SortBy)
	if err != nil {
		logger.Warn("invalid sort key, using default", zap.Error(err))
	}
	dir, err := dirlist.ParseDirection(cfg.Sort.SortOrder)
	if err != nil {
		logger.Warn("invalid sort order, using default", zap.Error(err))
	}
	return dirlist.Options{
		Sort:             dirlist.SortOption{Key: key, Direction: dir},
		ShowHidden:       cfg.UI.ShowHiddenFiles,
		Filter:           cfg.UI.Filter,
		CursorMemorySize: cfg.UI.CursorMemory.MaxEntries,
		Logger:           logger,
	}
}

func run(startPath string, cfg *config.Config, manager config.ManagerInterface, logger *zap.Logger) error {
	feed := activity.New(constants.DefaultActivityEntries)
	fsys := afero.NewOsFs()

	opts := modelOptions(cfg, logger)
	opts.Fs = fsys
	opts.Activity = feed
	opts.Watcher = watcher.New(watcher.Options{
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	})
	opts.Sizes = sizecalc.New(sizecalc.Options{
		Fs:            fsys,
		MaxConcurrent: cfg.Size.MaxConcurrent,
		Logger:        logger,
		Activity:      feed,
	})

	model, err := dirlist.New(startPath, opts)
	if err != nil {
		return err
	}
	defer model.Close()

	logger.Info("started", logging.Path(model.Path()), zap.Stringer("sort", model.SortOption()))

	p := tea.NewProgram(newApp(model, feed, cfg, manager, logger), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
