package transport

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Border    = lipgloss.Color("#4B5563") // Light gray
	Text      = lipgloss.Color("#F9FAFB") // White
	TextMuted = lipgloss.Color("#9CA3AF") // Gray
	TextDim   = lipgloss.Color("#6B7280") // Darker gray
)

var (
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Foreground(Text)

	disabledStyle = buttonStyle.
			Foreground(TextDim).
			BorderForeground(TextDim)

	playingStyle = buttonStyle.
			Foreground(Success).
			BorderForeground(Success)

	pausedStyle = buttonStyle.
			Foreground(Warning).
			BorderForeground(Warning)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	mutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
