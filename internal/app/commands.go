package app

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
	"github.com/nhle/ticketwatch/internal/theme"
	"github.com/nhle/ticketwatch/internal/ui/command"
	settings "github.com/nhle/ticketwatch/internal/ui/config"
)

// actionDoneMsg reports the outcome of a palette action. Success and
// failure notifications have already reached the store.
type actionDoneMsg struct {
	err error
}

// employeesLoadedMsg carries the assignee choices for the filter form.
type employeesLoadedMsg struct {
	employees []model.Employee
	err       error
}

// settingsSavedMsg reports the outcome of persisting the settings form.
type settingsSavedMsg struct {
	config *model.AppConfig
	err    error
}

// executeCommand handles a parsed palette command.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Verb {
	case command.VerbRefresh:
		m.refreshAll()
		return nil
	case command.VerbQuit:
		return tea.Quit
	case command.VerbReadAll:
		m.deps.Store.MarkAllRead()
		return nil
	case command.VerbClear:
		m.deps.Store.ClearAll()
		return nil
	case command.VerbFilter:
		return m.loadEmployees()
	}

	desk := m.deps.Actions
	author := m.deps.Author
	var run func(ctx context.Context) error

	switch c.Verb {
	case command.VerbAssign:
		run = func(ctx context.Context) error {
			return desk.AssignTicket(ctx, c.Target, c.Arg)
		}
	case command.VerbStatus:
		status := normalizeValue(c.Arg)
		run = func(ctx context.Context) error {
			return desk.ChangeStatus(ctx, c.Target, status)
		}
	case command.VerbPriority:
		priority := normalizeValue(c.Arg)
		run = func(ctx context.Context) error {
			return desk.ChangePriority(ctx, c.Target, priority)
		}
	case command.VerbCategory:
		run = func(ctx context.Context) error {
			return desk.CreateCategory(ctx, source.CategoryInput{Name: c.Arg})
		}
	case command.VerbComment:
		run = func(ctx context.Context) error {
			return desk.AddComment(ctx, c.Target, author, c.Arg)
		}
	case command.VerbDeleteEmployee:
		run = func(ctx context.Context) error {
			return desk.DeleteEmployee(ctx, c.Target)
		}
	case command.VerbDeleteTicket:
		run = func(ctx context.Context) error {
			return desk.DeleteTicket(ctx, c.Target)
		}
	default:
		return nil
	}

	return func() tea.Msg {
		return actionDoneMsg{err: run(context.Background())}
	}
}

// loadEmployees fetches assignee choices, then opens the filter form.
func (m Model) loadEmployees() tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		if svc == nil {
			return employeesLoadedMsg{}
		}
		employees, err := svc.FetchEmployees(context.Background())
		return employeesLoadedMsg{employees: employees, err: err}
	}
}

// normalizeValue maps "In Progress" to "in_progress".
func normalizeValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.Join(strings.Fields(v), "_")
}

// saveSettings validates and writes the submitted config, then stores a
// new token when one was entered.
func (m Model) saveSettings(msg settings.SubmittedMsg) tea.Cmd {
	path := m.deps.ConfigPath
	vault := m.deps.Vault
	tokenKey := ""
	if m.deps.Config != nil {
		tokenKey = m.deps.Config.Service.TokenKey
	}

	return func() tea.Msg {
		cfg := msg.Config
		if err := cfg.Validate(); err != nil {
			return settingsSavedMsg{err: err}
		}
		if path != "" {
			if err := model.SaveConfig(path, cfg); err != nil {
				return settingsSavedMsg{err: err}
			}
		}
		if msg.Token != "" {
			if vault == nil {
				return settingsSavedMsg{err: errors.New("no credential store to save the token in")}
			}
			if err := vault.Set(tokenKey, msg.Token); err != nil {
				return settingsSavedMsg{err: err}
			}
		}
		return settingsSavedMsg{config: cfg}
	}
}

// applySettings adopts saved settings that can change while running.
func (m Model) applySettings(msg settingsSavedMsg) Model {
	if msg.err != nil {
		m.deps.Logger.Warn("saving settings", "error", msg.err)
		m.flash = "settings not saved: " + msg.err.Error()
		return m
	}

	m.deps.Config = msg.config
	theme.ApplyVariant(msg.config.Display.Theme)
	m.flash = ""
	m.deps.Logger.Info("settings saved", "path", m.deps.ConfigPath)
	m.deps.Store.Append(model.Notification{
		Type:    model.NotificationSuccess,
		Title:   "Settings Saved",
		Message: "Polling and service changes apply on the next start",
	})
	return m
}
