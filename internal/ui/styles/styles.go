// Package styles contains Lip Gloss style definitions for the terminal page.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Green      = lipgloss.Color("#00ff41")
	GreenDim   = lipgloss.Color("#008f11")
	GreenDark  = lipgloss.Color("#003b00")
	Cyan       = lipgloss.Color("#00e5ff")
	Magenta    = lipgloss.Color("#ff00c8")
	Red        = lipgloss.Color("#ff3131")
	Black      = lipgloss.Color("#000000")
	TextMuted  = lipgloss.Color("#4d7a57")
	BorderDim  = lipgloss.Color("#1f5f2a")
	BorderLive = lipgloss.Color("#00ff41")
)

// Header styles. Scrolled switches to a solid bar once the page is scrolled.
var (
	Header = lipgloss.NewStyle().
		Foreground(Green).
		Bold(true).
		Padding(0, 1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderBottom(true)

	HeaderScrolled = Header.
			Background(GreenDark).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(BorderLive)

	AudioOn  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	AudioOff = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// Section styles.
var (
	SectionTitle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true).
			Underline(true)

	// GlitchTitle replaces SectionTitle while a section glitches.
	GlitchTitle = lipgloss.NewStyle().
			Foreground(Magenta).
			Background(Cyan).
			Bold(true)

	SectionBody = lipgloss.NewStyle().
			Foreground(GreenDim)

	Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BorderDim).
		Padding(0, 1)

	CardFocused = Card.
			BorderForeground(BorderLive)

	CardGlitch = Card.
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(Magenta).
			Foreground(Cyan)

	Tag = lipgloss.NewStyle().
		Foreground(Black).
		Background(GreenDim).
		Padding(0, 1)

	SkillName = lipgloss.NewStyle().Foreground(Green)
)

// Terminal panel styles.
var (
	Terminal = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(BorderLive).
			Padding(0, 1)

	Prompt   = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	Command  = lipgloss.NewStyle().Foreground(Green)
	Response = lipgloss.NewStyle().Foreground(GreenDim)
	Cursor   = lipgloss.NewStyle().Foreground(Black).Background(Green)
)

// Overlay styles.
var (
	Overlay = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(BorderLive).
		Padding(1, 3).
		Foreground(Green)

	Toast = lipgloss.NewStyle().
		Foreground(Black).
		Background(Green).
		Bold(true).
		Padding(0, 2)

	Alert = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	Menu = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderLive).
		Background(Black).
		Padding(0, 1)

	MenuItem         = lipgloss.NewStyle().Foreground(GreenDim)
	MenuItemSelected = lipgloss.NewStyle().Foreground(Black).Background(Green)

	Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
)

// Rain holds the matrix rain shades, brightest first.
var Rain = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#d7ffd7")).Bold(true),
	lipgloss.NewStyle().Foreground(Green),
	lipgloss.NewStyle().Foreground(GreenDim),
	lipgloss.NewStyle().Foreground(GreenDark),
}
