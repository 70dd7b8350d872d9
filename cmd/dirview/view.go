package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dirview/internal/activity"
	"dirview/internal/dirlist"
	"dirview/internal/fileinfo"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	headerLines   = 2
	footerLines   = 2
	activityLines = 4

	sizeColumn  = 10
	timeColumn  = 16
	ownerColumn = 10
	permColumn  = 11
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	sortStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dirStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	parentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const unwatchedText = "[not watching: press r to refresh]"

const helpText = "j/k move  enter open  h up  s sort  . hidden  r refresh  q quit"

func (a *app) View() string {
	width := a.width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(a.renderHeader(width))
	b.WriteString("\n")
	b.WriteString(truncate(a.detail, width))
	b.WriteString("\n")

	items := a.model.Items()
	selected, hasSelection := a.model.Selected()
	h := a.listHeight()
	for row := 0; row < h; row++ {
		i := a.offset + row
		if i < len(items) {
			line := formatRow(items[i], width)
			if hasSelection && i == selected {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(renderActivity(a.activity, width))

	switch {
	case a.status != "" && a.statusIsError:
		b.WriteString(errorStyle.Render(truncate(a.status, width)))
	case a.status != "":
		b.WriteString(statusStyle.Render(truncate(a.status, width)))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(truncate(helpText, width)))
	return b.String()
}

func (a *app) renderHeader(width int) string {
	sort := sortStyle.Render(" ["+a.model.SortOption().String()+"]") + a.renderIndicators()
	path := a.model.Path()
	room := width - lipgloss.Width(sort) - 1
	if room < 1 {
		room = 1
	}
	return headerStyle.Render(" "+truncateLeft(path, room)) + sort
}

// renderIndicators shows background state: running size computations and a
// directory that is not being watched
func (a *app) renderIndicators() string {
	var parts []string
	if n := a.model.PendingSizes(); n > 0 {
		parts = append(parts, pendingStyle.Render(fmt.Sprintf(" sizing %d", n)))
	}
	if !a.model.Watching() {
		parts = append(parts, warnStyle.Render(" "+unwatchedText))
	}
	return strings.Join(parts, "")
}

// formatRow renders one listing row: name, size, modified, owner, group and
// permissions
func formatRow(item dirlist.Item, width int) string {
	nameWidth := width - (sizeColumn + timeColumn + 2*ownerColumn + permColumn + 5)
	if nameWidth < 8 {
		nameWidth = 8
	}

	if item.Kind == dirlist.KindParent {
		return parentStyle.Render(pad(item.Label, width))
	}

	e := item.Entry
	name := e.Name
	style := lipgloss.NewStyle()
	switch e.Type {
	case fileinfo.TypeDirectory:
		name += string(filepath.Separator)
		style = dirStyle
	case fileinfo.TypeSymlink:
		name += "@"
		style = linkStyle
	}

	size := fmt.Sprintf("%*s", sizeColumn, e.SizeText())
	if !e.SizeKnown {
		size = pendingStyle.Render(size)
	}

	modified := ""
	if !e.ModTime.IsZero() {
		modified = e.ModTime.Format("2006-01-02 15:04")
	}
	owner, group, other := fileinfo.PermTriplets(e.Perm)

	return fmt.Sprintf("%s %s %-*s %-*s %-*s %s",
		style.Render(pad(name, nameWidth)),
		size,
		timeColumn, modified,
		ownerColumn, truncate(fileinfo.OwnerName(e.UID), ownerColumn),
		ownerColumn, truncate(fileinfo.GroupName(e.GID), ownerColumn),
		owner+" "+group+" "+other,
	)
}

// detailLine summarizes the selected row
func detailLine(dir string, item dirlist.Item) string {
	if item.Kind == dirlist.KindParent {
		return filepath.Dir(dir)
	}
	e := item.Entry
	return fmt.Sprintf("%s  %s  %s  %s:%s  %s",
		filepath.Join(dir, e.Name), e.Type, e.SizeText(),
		fileinfo.OwnerName(e.UID), fileinfo.GroupName(e.GID), fileinfo.PermString(e.Perm))
}

func renderActivity(feed *activity.Log, width int) string {
	var b strings.Builder
	entries := feed.Last(activityLines)
	for i := 0; i < activityLines; i++ {
		if i < len(entries) {
			line := entries[i].Time.Format("15:04:05") + " " + entries[i].Message
			b.WriteString(activityStyle.Render(truncate(line, width)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	s = truncate(s, width)
	if n := len([]rune(s)); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// truncateLeft keeps the end of s, which is the informative part of a path
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[len(r)-width:])
	}
	return "…" + string(r[len(r)-width+1:])
}
