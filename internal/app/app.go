// Package app is the dashboard's root Bubble Tea model. It routes keys
// to the tray and overlays, listens for poll results and store changes,
// and dispatches palette commands to the action layer.
package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ticketwatch/internal/actions"
	"github.com/nhle/ticketwatch/internal/clock"
	"github.com/nhle/ticketwatch/internal/credential"
	"github.com/nhle/ticketwatch/internal/keys"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/notify"
	"github.com/nhle/ticketwatch/internal/source"
	appsync "github.com/nhle/ticketwatch/internal/sync"
	"github.com/nhle/ticketwatch/internal/theme"
	"github.com/nhle/ticketwatch/internal/ui"
	"github.com/nhle/ticketwatch/internal/ui/command"
	settings "github.com/nhle/ticketwatch/internal/ui/config"
	"github.com/nhle/ticketwatch/internal/ui/detail"
	"github.com/nhle/ticketwatch/internal/ui/filterform"
	helpview "github.com/nhle/ticketwatch/internal/ui/help"
	"github.com/nhle/ticketwatch/internal/ui/tray"
)

// ageTick is how often relative ages and sync times are redrawn.
const ageTick = time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTray ViewState = iota
	ViewHelp
	ViewCommand
	ViewFilter
	ViewDetail
	ViewSettings
)

// Deps are the engine components the dashboard drives.
type Deps struct {
	Store     *notify.Store
	Tickets   *appsync.Scheduler
	Employees *appsync.Scheduler
	Actions   *actions.Desk

	// Service supplies the assignee list for the filter form and the
	// entity lookups of the detail view.
	Service source.DataService

	Clock  clock.Clock
	Logger *slog.Logger

	// Author signs comments added from the palette.
	Author string

	// Config is the running configuration the settings view edits and
	// ConfigPath is where it is saved. Settings are unavailable when
	// Config is nil.
	Config     *model.AppConfig
	ConfigPath string

	// Vault stores a token entered in the settings view.
	Vault *credential.Vault

	// Check tests a connection before settings are saved. Nil skips
	// the test.
	Check settings.CheckFunc
}

// storeChangedMsg signals that the notification store changed at least
// once since the last signal was consumed.
type storeChangedMsg struct{}

// tickMsg redraws time-dependent text.
type tickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	deps         Deps
	keys         *keys.KeyMap
	layout       ui.Layout
	currentView  ViewState
	previousView ViewState

	tray         tray.Model
	helpView     helpview.Model
	commandView  command.Model
	filterForm   filterform.Model
	detailView   detail.Model
	settingsView settings.Model

	changes     chan struct{}
	unsubscribe func()

	flash string
	ready bool
}

// New creates the root model and subscribes it to the store. Call Close
// once the program has exited.
func New(deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Author == "" {
		deps.Author = "ticketwatch"
	}

	k := keys.DefaultKeyMap()

	// Capacity one: a pending signal already covers any later change,
	// since the tray reloads the whole list.
	changes := make(chan struct{}, 1)
	unsubscribe := deps.Store.Subscribe(func(notify.Change) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		deps:         deps,
		keys:         k,
		currentView:  ViewTray,
		tray:         tray.New(deps.Store, deps.Clock, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		filterForm:   filterform.New(80, 24),
		detailView:   detail.New(k, 80, 24),
		settingsView: settings.New(deps.Check, 80, 24),
		changes:      changes,
		unsubscribe:  unsubscribe,
	}
}

// Close detaches the model from the store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts listening for poll results, store changes and the age tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.deps.Tickets.WaitForNextResult(),
		m.deps.Employees.WaitForNextResult(),
		m.waitForChange(),
		tick(),
	)
}

// waitForChange blocks until the store signals a change.
func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return storeChangedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(ageTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.tray.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.filterForm.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case storeChangedMsg:
		m.tray.Reload()
		return m, m.waitForChange()

	case appsync.CycleResult:
		return m, m.handleCycle(msg)

	case tickMsg:
		return m, tick()

	case command.CommandMsg:
		m.currentView = ViewTray
		m.commandView.Blur()
		cmd := m.executeCommand(command.Command(msg))
		return m, cmd

	case actionDoneMsg:
		if msg.err != nil {
			m.flash = msg.err.Error()
		} else {
			m.flash = ""
		}
		return m, nil

	case employeesLoadedMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("loading assignees for filter form", "error", msg.err)
		}
		m.filterForm.SetEmployees(msg.employees)
		m.currentView = ViewFilter
		cmd := m.filterForm.Start(m.deps.Tickets.Filter())
		return m, cmd

	case filterform.SubmittedMsg:
		m.currentView = ViewTray
		m.deps.Tickets.SetFilters(msg.Filter)
		m.flash = ""
		return m, nil

	case filterform.CancelMsg:
		m.currentView = ViewTray
		return m, nil

	case detail.LoadedMsg:
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewTray
		return m, nil

	case settings.SubmittedMsg:
		m.currentView = ViewTray
		return m, m.saveSettings(msg)

	case settings.CancelMsg:
		m.currentView = ViewTray
		return m, nil

	case settingsSavedMsg:
		return m.applySettings(msg), nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work outside text inputs. It
// reports whether the key was consumed.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.currentView {
	case ViewFilter:
		if msg.Type == tea.KeyEsc {
			m.currentView = ViewTray
			return m, nil, true
		}
		return m, nil, false

	case ViewCommand:
		if msg.Type == tea.KeyEsc {
			m.currentView = m.previousView
			m.commandView.Blur()
			return m, nil, true
		}
		return m, nil, false

	case ViewSettings:
		if msg.Type == tea.KeyEsc {
			m.currentView = ViewTray
			return m, nil, true
		}
		return m, nil, false

	case ViewDetail:
		if msg.String() == "q" {
			return m, tea.Quit, true
		}
		return m, nil, false

	case ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "?" {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, true
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit, true

	case "?":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case "f":
		return m, m.loadEmployees(), true

	case "o", "l":
		it, ok := m.tray.Selected()
		if !ok {
			return m, nil, true
		}
		n := it.Notification
		m.deps.Store.MarkRead(n.ID)
		m.detailView.Show(n)
		m.currentView = ViewDetail
		return m, detail.Load(m.deps.Service, n.ID, n.EntityID), true

	case "S":
		if m.deps.Config == nil {
			m.flash = "settings are unavailable without a config file"
			return m, nil, true
		}
		m.currentView = ViewSettings
		cmd := m.settingsView.Start(*m.deps.Config)
		return m, cmd, true

	case "r":
		m.refreshAll()
		return m, nil, true

	case "esc":
		m.flash = ""
		return m, nil, true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTray:
		m.tray, cmd = m.tray.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewFilter:
		m.filterForm, cmd = m.filterForm.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// handleCycle logs a poll outcome and re-subscribes to that screen.
func (m Model) handleCycle(r appsync.CycleResult) tea.Cmd {
	logger := m.deps.Logger.With("screen", r.Screen)
	switch {
	case r.Err != nil:
		logger.Warn("poll failed", "error", r.Err)
	case r.ColdStart:
		logger.Info("baseline recorded", "entities", r.Entities)
	default:
		logger.Debug("poll complete", "entities", r.Entities, "notifications", len(r.Notifications))
	}

	if r.Screen == appsync.ScreenEmployees {
		return m.deps.Employees.WaitForNextResult()
	}
	return m.deps.Tickets.WaitForNextResult()
}

func (m Model) refreshAll() {
	m.deps.Tickets.Refresh()
	m.deps.Employees.Refresh()
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "ticketwatch"
	if n := m.deps.Store.UnreadCount(); n > 0 {
		title = fmt.Sprintf("ticketwatch [%d unread]", n)
	}

	header := m.layout.RenderHeader(title, m.syncSummary())
	statusBar := m.layout.RenderStatusBar(m.statusLine())
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewFilter:
		return m.filterForm.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return m.tray.View()
	}
}

// syncSummary describes both screens, e.g. "tickets 2s ago · employees
// fetching".
func (m Model) syncSummary() string {
	now := m.deps.Clock.Now()
	parts := []string{
		screenSummary(m.deps.Tickets.Status(), now),
		screenSummary(m.deps.Employees.Status(), now),
	}
	return strings.Join(parts, " · ")
}

func screenSummary(s appsync.Status, now time.Time) string {
	label := s.Screen
	if s.Screen == appsync.ScreenTickets && !s.Filter.IsZero() {
		label += "*"
	}

	switch {
	case s.State == appsync.StateDisposed:
		return label + " stopped"
	case s.State != appsync.StateIdle:
		return label + " " + s.State.String()
	case s.LastError != nil:
		return "⚠ " + label + " unreachable"
	case s.LastSync.IsZero():
		return label + " waiting"
	default:
		return fmt.Sprintf("%s %ds ago", label, int(now.Sub(s.LastSync).Seconds()))
	}
}

// statusLine shows the last action error, or key hints for the view.
func (m Model) statusLine() string {
	if m.flash != "" && m.currentView == ViewTray {
		return theme.ErrorTextStyle.Render(m.flash)
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewFilter:
		return "enter next | esc cancel"
	case ViewDetail:
		return "j/k scroll | esc back"
	case ViewSettings:
		return "enter next | esc cancel"
	default:
		return m.helpView.ShortView()
	}
}
