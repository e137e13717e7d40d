package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/closeboard/internal/engine"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan: headings
	colorAccent  = lipgloss.Color("#FFD700") // Gold: warning
	colorSuccess = lipgloss.Color("#00E676") // Green: completed
	colorDanger  = lipgloss.Color("#FF5252") // Red: errors, overdue
	colorMuted   = lipgloss.Color("#636363") // Gray: de-emphasized
	colorBlue    = lipgloss.Color("#5B8DEF") // Blue: on time
)

// Status icons.
const (
	iconDone    = "✓"
	iconBlocked = "✗"
	iconOnTime  = "◎"
	iconWaiting = "·"
	iconWarning = "⚠"
)

var (
	styleHeading = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	styleError   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleID      = lipgloss.NewStyle().Bold(true)
)

var statusStyles = map[engine.Status]lipgloss.Style{
	engine.StatusCompleted:  lipgloss.NewStyle().Foreground(colorSuccess),
	engine.StatusOverdue:    lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
	engine.StatusWarning:    lipgloss.NewStyle().Foreground(colorAccent),
	engine.StatusOnTime:     lipgloss.NewStyle().Foreground(colorBlue),
	engine.StatusNotStarted: lipgloss.NewStyle().Foreground(colorMuted),
}

var statusIcons = map[engine.Status]string{
	engine.StatusCompleted:  iconDone,
	engine.StatusOverdue:    iconBlocked,
	engine.StatusWarning:    iconWarning,
	engine.StatusOnTime:     iconOnTime,
	engine.StatusNotStarted: iconWaiting,
}

// StatusLabel renders a status with its icon and color.
func StatusLabel(s engine.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(statusIcons[s] + " " + string(s))
}
