package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders the keyboard reference.
type HelpOverlay struct {
	width   int
	height  int
	styles  *Styles
	global  GlobalKeyMap
	editor  EditorKeyMap
	history HistoryKeyMap
	input   InputKeyMap
}

// NewHelpOverlay creates a help overlay listing the given bindings.
func NewHelpOverlay(styles *Styles, global GlobalKeyMap, editor EditorKeyMap, history HistoryKeyMap, input InputKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles:  styles,
		global:  global,
		editor:  editor,
		history: history,
		input:   input,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// SetStyles swaps the styles after a theme change.
func (h *HelpOverlay) SetStyles(styles *Styles) {
	h.styles = styles
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 64
	if h.width > 0 {
		overlayWidth = min(64, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	section := func(b *strings.Builder, name string, bindings ...key.Binding) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, k := range bindings {
			help := k.Help()
			b.WriteString(keyStyle.Render(help.Key) + descStyle.Render(help.Desc) + "\n")
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📖 nippo - Keyboard Shortcuts"))
	b.WriteString("\n")

	g := h.global
	section(&b, "Global", g.NextPane, g.Save, g.Copy, g.NextDay, g.Clear, g.ToggleTheme, g.ToggleRender, g.Help, g.Quit)

	e := h.editor
	section(&b, "Editor", e.Edit, e.AddItem, e.AddTask, e.Delete, e.MoveUp, e.MoveDown, e.MoveAcross, e.CopyToPlans)

	r := h.history
	section(&b, "History", r.Load, r.Delete, r.Up, r.Down)

	in := h.input
	section(&b, "Input Mode", in.Confirm, in.Cancel, in.Prev, in.Next)

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())

	return RenderCentered(content, h.width, h.height)
}

// RenderCentered centers content in the terminal
func RenderCentered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
