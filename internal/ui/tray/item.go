package tray

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Delegate implements list.ItemDelegate for notification rows.
type Delegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a notification as a title line and a message line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	badge := theme.TypeStyle(n.Type).Render(theme.TypeIcon(n.Type))

	marker := " "
	if !n.Read {
		marker = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
	}

	titleStyle := theme.ReadStyle
	if !n.Read {
		titleStyle = theme.UnreadStyle
	}
	title := titleStyle.Render(n.Title)

	pin := ""
	if n.Pinned {
		pin = lipgloss.NewStyle().Foreground(theme.ColorOrange).Render(" [pinned]")
	}

	age := theme.MutedStyle.Render(relativeAge(d.now(), n.CreatedAt))

	line := fmt.Sprintf("%s %s %s%s  %s", marker, badge, title, pin, age)
	body := "    " + theme.MutedStyle.Render(n.Message)

	width := m.Width()
	if index == m.Index() {
		line = theme.SelectedStyle.MaxWidth(width).Render(line)
		body = theme.SelectedStyle.UnsetBold().MaxWidth(width).Render(body)
	} else {
		line = lipgloss.NewStyle().PaddingLeft(2).MaxWidth(width).Render(line)
		body = lipgloss.NewStyle().PaddingLeft(2).MaxWidth(width).Render(body)
	}

	fmt.Fprint(w, line+"\n"+body)
}

// relativeAge returns a compact age such as "just now", "12s ago" or
// "3m ago". Notifications rarely outlive a few minutes.
func relativeAge(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
