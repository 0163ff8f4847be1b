// Package config is the settings view: it edits the service connection,
// polling cadence and display options, tests the connection and hands
// the result back to the app for saving.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/theme"
)

// checkTimeout bounds the connection test.
const checkTimeout = 10 * time.Second

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeIdle       Mode = iota
	ModeForm            // Editing fields
	ModeValidating      // Testing connection
	ModeResult          // Connection test failed
)

// CheckFunc tests that the service answers at baseURL with token.
type CheckFunc func(ctx context.Context, baseURL, token string) error

// SubmittedMsg carries settings that passed (or were saved despite) the
// connection test. Token is empty when the user left it unchanged.
type SubmittedMsg struct {
	Config *model.AppConfig
	Token  string
}

// CancelMsg signals the settings view was closed without saving.
type CancelMsg struct{}

type checkedMsg struct {
	err error
}

// fields holds the form values huh binds to.
type fields struct {
	baseURL   string
	token     string
	interval  string
	retention string
	theme     string
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode    Mode
	form    *huh.Form
	values  *fields
	base    model.AppConfig
	check   CheckFunc
	spinner spinner.Model
	err     error

	width, height int
}

// New creates a settings view. check may be nil to skip the connection
// test.
func New(check CheckFunc, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		check:   check,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start opens the form prefilled from cfg.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.base = cfg
	m.err = nil
	m.values = &fields{
		baseURL:   cfg.Service.BaseURL,
		interval:  strconv.Itoa(cfg.Polling.IntervalMS),
		retention: strconv.Itoa(cfg.Notifications.RetentionSec),
		theme:     cfg.Display.Theme,
	}
	return m.openForm()
}

// Mode returns the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

func (m *Model) openForm() tea.Cmd {
	m.mode = ModeForm
	m.form = buildForm(m.values)
	m.form.WithWidth(m.width - 4)
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkedMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.mode = ModeResult
			return m, nil
		}
		return m, m.submit()

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeResult:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "s":
				return m, m.submit()
			case "enter", "e":
				return m, m.openForm()
			}
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = ModeIdle
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }

	case huh.StateCompleted:
		m.form = nil
		if m.check == nil {
			return m, m.submit()
		}
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.runCheck())
	}
	return m, cmd
}

func (m Model) runCheck() tea.Cmd {
	check := m.check
	baseURL := strings.TrimSpace(m.values.baseURL)
	token := strings.TrimSpace(m.values.token)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		return checkedMsg{err: check(ctx, baseURL, token)}
	}
}

// submit builds the edited config and hands it to the parent.
func (m *Model) submit() tea.Cmd {
	cfg := m.Config()
	token := strings.TrimSpace(m.values.token)
	m.mode = ModeIdle
	return func() tea.Msg { return SubmittedMsg{Config: cfg, Token: token} }
}

// Config returns the base config with the form values applied. Values
// that failed to parse keep their previous setting.
func (m Model) Config() *model.AppConfig {
	cfg := m.base
	if m.values == nil {
		return &cfg
	}
	cfg.Service.BaseURL = strings.TrimSpace(m.values.baseURL)
	if n, err := strconv.Atoi(strings.TrimSpace(m.values.interval)); err == nil {
		cfg.Polling.IntervalMS = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(m.values.retention)); err == nil {
		cfg.Notifications.RetentionSec = n
	}
	if m.values.theme != "" {
		cfg.Display.Theme = m.values.theme
	}
	return &cfg
}

// View renders the settings view.
func (m Model) View() string {
	panel := theme.PanelStyle.Width(m.width - 4).MaxHeight(m.height)
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)

	switch m.mode {
	case ModeForm:
		if m.form == nil {
			return ""
		}
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
			heading.Render("Settings"),
			m.form.View(),
			theme.MutedStyle.Render("Polling and service changes take effect on the next start."),
		))

	case ModeValidating:
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
			heading.Render("Settings"),
			m.spinner.View()+" Testing connection to "+m.values.baseURL+"...",
		))

	case ModeResult:
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
			heading.Render("Connection failed"),
			theme.ErrorTextStyle.Render(m.err.Error()),
			"",
			theme.MutedStyle.Render("s save anyway | enter edit | esc cancel"),
		))
	}
	return ""
}

// SetSize updates the settings view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form.WithWidth(width - 4)
	}
}

func buildForm(v *fields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service URL").
				Placeholder("http://localhost:8000/api").
				Value(&v.baseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("API token").
				Description("Leave empty to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&v.token),
			huh.NewInput().
				Title("Poll interval (ms)").
				Value(&v.interval).
				Validate(validatePositive),
			huh.NewInput().
				Title("Keep notifications for (s)").
				Value(&v.retention).
				Validate(validatePositive),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Default", "default"),
					huh.NewOption("Monochrome", "mono"),
				).
				Value(&v.theme),
		),
	).WithShowHelp(false)
}

func validateBaseURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a whole number")
	}
	if n <= 0 {
		return errors.New("must be positive")
	}
	return nil
}
