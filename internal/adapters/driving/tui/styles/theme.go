// Package styles provides the colour theme and lipgloss styles shared by
// the interactive prompts and the styled command output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette.
type Theme struct {
	// Primary is the main accent colour, used for titles and the cursor.
	Primary lipgloss.Color

	// Secondary is used for subtitles and table headers.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for hints and secondary values.
	Muted lipgloss.Color

	// Success marks completed subtypes and saved files.
	Success lipgloss.Color

	// Warning marks estimates and skipped items.
	Warning lipgloss.Color

	// Error marks failed subtypes.
	Error lipgloss.Color

	// Border is the border colour of tables and previews.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for prompt titles and report headers.
	Title lipgloss.Style

	// Subtitle style for section headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for hints.
	Muted lipgloss.Style

	// Cursor style for the highlighted option.
	Cursor lipgloss.Style

	// Checked style for chosen options of a multi-select.
	Checked lipgloss.Style

	// Error style for failures.
	Error lipgloss.Style

	// Success style for completions.
	Success lipgloss.Style

	// Warning style for estimates and cautions.
	Warning lipgloss.Style

	// Label style for key/value labels.
	Label lipgloss.Style

	// TableHeader style for table header cells.
	TableHeader lipgloss.Style

	// TableCell style for table body cells.
	TableCell lipgloss.Style

	// TableBorder style for table borders.
	TableBorder lipgloss.Style

	// Preview style for boxed artifact previews.
	Preview lipgloss.Style

	// Help style for key hints.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Cursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Checked: lipgloss.NewStyle().
			Foreground(theme.Success),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(16),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary).
			Padding(0, 1),

		TableCell: lipgloss.NewStyle().
			Padding(0, 1),

		TableBorder: lipgloss.NewStyle().
			Foreground(theme.Border),

		Preview: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
