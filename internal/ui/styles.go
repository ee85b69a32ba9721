package ui

import (
	"nippo/internal/config"
	"nippo/internal/storage"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the colors that change between light and dark mode.
type palette struct {
	bg        string
	bgLight   string
	text      string
	textMuted string
}

var (
	lightPalette = palette{bg: "#FFFFFF", bgLight: "#E5E7EB", text: "#111827", textMuted: "#6B7280"}
	darkPalette  = palette{bg: "#1F2937", bgLight: "#374151", text: "#F9FAFB", textMuted: "#9CA3AF"}
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	Mode storage.Theme

	// Colors
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	SectionStyle     lipgloss.Style
	CustomerStyle    lipgloss.Style
	TaskStyle        lipgloss.Style
	DetailStyle      lipgloss.Style
	PlaceholderStyle lipgloss.Style
	SelectedStyle    lipgloss.Style

	PopupStyle         lipgloss.Style
	PopupItemStyle     lipgloss.Style
	PopupSelectedStyle lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle  lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	InputPromptStyle lipgloss.Style
	InputTextStyle   lipgloss.Style

	StatLabelStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config in the given
// light/dark mode.
func NewStyles(cfg *config.Config, mode storage.Theme) *Styles {
	return NewStylesFromTheme(&cfg.Theme, mode)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig, mode storage.Theme) *Styles {
	if !mode.Valid() {
		mode = storage.ThemeLight
	}
	p := lightPalette
	if mode == storage.ThemeDark {
		p = darkPalette
	}

	s := &Styles{Mode: mode}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#2563EB")
	s.ColorAccent = colorOrDefault(theme.Accent, "#10B981")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")

	// Fixed semantic colors (not configurable from theme)
	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")

	s.ColorBg = lipgloss.Color(p.bg)
	s.ColorBgLight = lipgloss.Color(p.bgLight)
	s.ColorText = lipgloss.Color(p.text)
	s.ColorTextMuted = lipgloss.Color(p.textMuted)

	s.initComponentStyles()

	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

// GlamourStyle names the glamour standard style matching the mode.
func (s *Styles) GlamourStyle() string {
	if s.Mode == storage.ThemeDark {
		return "dark"
	}
	return "light"
}

// initComponentStyles initializes all component styles based on the color palette.
func (s *Styles) initComponentStyles() {
	// Title bar
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DateStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	// Panes
	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary)

	// Editor rows
	s.SectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorAccent)

	s.CustomerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText)

	s.TaskStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.DetailStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.PlaceholderStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Italic(true)

	s.SelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	// Suggestion popup
	s.PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(s.ColorMuted).
		PaddingLeft(1)

	s.PopupItemStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.PopupSelectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(s.ColorPrimary)

	// Help bar
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	// Status messages
	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.WarningStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	// Input
	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.InputTextStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
