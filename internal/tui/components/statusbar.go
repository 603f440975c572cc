package components

import (
	"strings"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/styles"
)

// StatusBar renders a bottom help bar showing contextual key hints.
type StatusBar struct {
	badge string
}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// WithBadge returns a copy that prefixes the items with a short label,
// e.g. "REVIEW" for locked subtasks.
func (s StatusBar) WithBadge(badge string) StatusBar {
	s.badge = badge
	return s
}

// Render returns the status bar string for the given width and items.
// Items are joined with " • ".
func (s StatusBar) Render(width int, items []string) string {
	content := strings.Join(items, " • ")
	if s.badge != "" {
		label := styles.LockedStyle.Render("[" + s.badge + "]")
		if content == "" {
			content = label
		} else {
			content = label + " " + content
		}
	}
	return styles.StatusBarStyle.Width(width).Render(content)
}
