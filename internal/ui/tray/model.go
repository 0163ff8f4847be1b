// Package tray renders the notification store as a navigable list.
package tray

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/clock"
	"github.com/nhle/ticketwatch/internal/keys"
	"github.com/nhle/ticketwatch/internal/notify"
	"github.com/nhle/ticketwatch/internal/theme"
)

// Model is the notification tray view. It reads from and acts on a
// notify.Store; the owner calls Reload whenever the store changes.
type Model struct {
	list   list.Model
	store  *notify.Store
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a tray over store. clk drives the relative ages.
func New(store *notify.Store, clk clock.Clock, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{now: clk.Now}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	m := Model{
		list:   l,
		store:  store,
		keys:   k,
		width:  width,
		height: height,
	}
	m.Reload()
	return m
}

// Reload copies the store's current list into the view, keeping the
// cursor in range.
func (m *Model) Reload() {
	notifications := m.store.List()
	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = Item{Notification: n}
	}
	m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

// Len returns the number of rows shown.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Update handles tray keys and list navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.MarkRead):
			if it, ok := m.Selected(); ok {
				m.store.MarkRead(it.Notification.ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.MarkAllRead):
			m.store.MarkAllRead()
			return m, nil

		case key.Matches(msg, m.keys.Remove):
			if it, ok := m.Selected(); ok {
				m.store.Remove(it.Notification.ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.ClearAll):
			m.store.ClearAll()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the tray.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.\nChanges to tickets and employees will appear here.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
