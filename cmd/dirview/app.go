package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"dirview/internal/activity"
	"dirview/internal/config"
	"dirview/internal/constants"
	"dirview/internal/dirlist"
	"dirview/internal/logging"
)

type tickMsg time.Time

// activityMsg signals that the activity feed gained an entry
type activityMsg struct{}

// app is the terminal shell around a dirlist.Model
type app struct {
	model    *dirlist.Model
	activity *activity.Log
	cfg      *config.Config
	manager  config.ManagerInterface
	logger   *zap.Logger
	tick     time.Duration
	// Coalesces feed updates between redraws
	activityCh chan struct{}

	width, height int
	offset        int // first visible row
	detail        string
	status        string
	statusIsError bool
}

func newApp(model *dirlist.Model, feed *activity.Log, cfg *config.Config, manager config.ManagerInterface, logger *zap.Logger) *app {
	tick := cfg.TickInterval()
	if tick <= 0 {
		tick = constants.TickInterval
	}
	a := &app{
		model:      model,
		activity:   feed,
		cfg:        cfg,
		manager:    manager,
		logger:     logging.OrNop(logger).Named("shell"),
		tick:       tick,
		activityCh: make(chan struct{}, 1),
	}
	// Adds happen on worker goroutines and inside Update, so never block
	feed.Subscribe(func() {
		select {
		case a.activityCh <- struct{}{}:
		default:
		}
	})
	return a
}

func (a *app) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(constants.ApplicationTitle),
		a.scheduleTick(),
		a.waitForActivity(),
	)
}

func (a *app) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		<-a.activityCh
		return activityMsg{}
	}
}

func (a *app) scheduleTick() tea.Cmd {
	return tea.Tick(a.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.scrollToSelection()
		return a, nil

	case tickMsg:
		if err := a.model.Tick(); err != nil {
			a.setError(err)
		}
		a.refreshDetail()
		a.scrollToSelection()
		return a, a.scheduleTick()

	case activityMsg:
		return a, a.waitForActivity()

	case tea.KeyMsg:
		cmd := a.handleKey(msg)
		a.refreshDetail()
		a.scrollToSelection()
		return a, cmd
	}
	return a, nil
}

func (a *app) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "j", "down":
		a.model.SelectNext()
	case "k", "up":
		a.model.SelectPrevious()
	case "pgdown", "ctrl+f":
		a.model.MoveSelection(constants.FastNavigationStep)
	case "pgup", "ctrl+b":
		a.model.MoveSelection(-constants.FastNavigationStep)
	case "g", "home":
		a.model.SelectFirst()
	case "G", "end":
		a.model.SelectLast()
	case "enter", "l", "right":
		a.report(a.model.Enter())
	case "backspace", "h", "left":
		a.report(a.model.Parent())
	case "r":
		if err := a.model.Refresh(); err != nil {
			a.setError(err)
		} else {
			a.setStatus("Refreshed")
		}
	case "s":
		next := dirlist.NextSortOption(a.model.SortOption())
		a.model.SortBy(next.Key, next.Direction)
		a.cfg.Sort.SortBy = next.Key.String()
		a.cfg.Sort.SortOrder = next.Direction.String()
		a.saveConfig()
		a.setStatus("Sort: " + next.String())
	case ".":
		show := !a.model.ShowHidden()
		if err := a.model.SetShowHidden(show); err != nil {
			a.setError(err)
			break
		}
		a.cfg.UI.ShowHiddenFiles = show
		a.saveConfig()
		if show {
			a.setStatus("Showing hidden files")
		} else {
			a.setStatus("Hiding hidden files")
		}
	}
	return nil
}

func (a *app) report(err error) {
	if err != nil {
		a.setError(err)
		return
	}
	a.status = ""
	a.statusIsError = false
}

func (a *app) setStatus(s string) {
	a.status = s
	a.statusIsError = false
}

func (a *app) setError(err error) {
	a.logger.Warn("operation failed", logging.Err(err))
	a.status = err.Error()
	a.statusIsError = true
}

func (a *app) saveConfig() {
	if a.manager == nil {
		return
	}
	if err := a.manager.Save(a.cfg); err != nil {
		a.logger.Warn("error saving config", logging.Err(err))
	}
}

// refreshDetail recomputes the detail line only when the selection changed
func (a *app) refreshDetail() {
	if !a.model.SelectionStale() {
		return
	}
	if item, ok := a.model.SelectedItem(); ok {
		a.detail = detailLine(a.model.Path(), item)
	} else {
		a.detail = ""
	}
	a.model.MarkSelectionFresh()
}

// listHeight is the number of rows available for the listing
func (a *app) listHeight() int {
	h := a.height
	if h <= 0 {
		h = defaultHeight
	}
	h -= headerLines + footerLines + activityLines
	if h < 1 {
		h = 1
	}
	return h
}

// scrollToSelection keeps the selected row inside the visible window
func (a *app) scrollToSelection() {
	idx, ok := a.model.Selected()
	if !ok {
		a.offset = 0
		return
	}
	h := a.listHeight()
	if idx < a.offset {
		a.offset = idx
	}
	if idx >= a.offset+h {
		a.offset = idx - h + 1
	}
	maxOffset := a.model.Len() - h
	if maxOffset < 0 {
		maxOffset = 0
	}
	if a.offset > maxOffset {
		a.offset = maxOffset
	}
	if a.offset < 0 {
		a.offset = 0
	}
}
