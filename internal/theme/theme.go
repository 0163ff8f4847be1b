package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorCyan    = lipgloss.AdaptiveColor{Dark: "#66D9E8", Light: "#0987A0"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top header bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlays such as help, filters and the palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// UnreadStyle renders the title of an unread notification.
var UnreadStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// ReadStyle renders the title of a notification that has been read.
var ReadStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// SelectedStyle highlights the focused tray row.
var SelectedStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue).
	PaddingLeft(1)

// MutedStyle is used for secondary text such as ages and hints.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorTextStyle renders sync errors in the header and status bar.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// ApplyVariant switches the palette for the configured display theme.
// "default" keeps the adaptive colors.
func ApplyVariant(name string) {
	switch name {
	case "mono":
		for _, c := range []*lipgloss.AdaptiveColor{
			&ColorBlue, &ColorGreen, &ColorYellow, &ColorRed,
			&ColorOrange, &ColorMagenta, &ColorCyan,
		} {
			*c = ColorWhite
		}
		HeaderStyle = HeaderStyle.Background(ColorSubtle)
		SelectedStyle = SelectedStyle.Foreground(ColorWhite).BorderForeground(ColorWhite)
		ErrorTextStyle = ErrorTextStyle.Foreground(ColorWhite).Underline(true)
	}
}

// TypeStyle returns a color-coded style for a notification type badge.
func TypeStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch t {
	case model.NotificationSuccess:
		return base.Foreground(ColorGreen)
	case model.NotificationError:
		return base.Foreground(ColorRed)
	case model.NotificationTicketCreated:
		return base.Foreground(ColorBlue)
	case model.NotificationTicketUpdated:
		return base.Foreground(ColorYellow)
	case model.NotificationAssignment:
		return base.Foreground(ColorMagenta)
	case model.NotificationComment:
		return base.Foreground(ColorCyan)
	default:
		return base.Foreground(ColorGray)
	}
}

// TypeIcon returns the single-glyph badge shown before a notification.
func TypeIcon(t model.NotificationType) string {
	switch t {
	case model.NotificationSuccess:
		return "✓"
	case model.NotificationError:
		return "✗"
	case model.NotificationTicketCreated:
		return "+"
	case model.NotificationTicketUpdated:
		return "~"
	case model.NotificationAssignment:
		return "→"
	case model.NotificationComment:
		return "✎"
	default:
		return "•"
	}
}

// StatusStyle returns a color-coded style for a ticket status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.StatusOpen:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorYellow)
	case model.StatusResolved:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for a ticket priority.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityUrgent:
		return base.Foreground(ColorRed)
	case model.PriorityHigh:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}
