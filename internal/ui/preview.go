package ui

import (
	"strings"

	"nippo/internal/config"
	"nippo/internal/logging"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// PreviewPane shows the report text that Save and Copy will produce, either
// verbatim or rendered as markdown.
type PreviewPane struct {
	styles   *Styles
	viewport viewport.Model
	text     string
	rendered bool
	focused  bool
	width    int
	height   int
	keys     NavigationKeyMap
}

// NewPreviewPane creates a preview. rendered selects the markdown view.
func NewPreviewPane(styles *Styles, keys *config.KeysConfig, rendered bool) *PreviewPane {
	return &PreviewPane{
		styles:   styles,
		viewport: viewport.New(0, 0),
		rendered: rendered,
		keys:     NewNavigationKeyMap(keys),
	}
}

// SetContent replaces the report text.
func (p *PreviewPane) SetContent(text string) {
	if text == p.text {
		return
	}
	p.text = text
	p.refresh()
}

// Content returns the raw report text.
func (p *PreviewPane) Content() string {
	return p.text
}

// SetStyles swaps the styles after a theme change and re-renders.
func (p *PreviewPane) SetStyles(styles *Styles) {
	p.styles = styles
	p.refresh()
}

// Rendered reports whether the markdown view is on.
func (p *PreviewPane) Rendered() bool {
	return p.rendered
}

// ToggleRendered switches between the raw and markdown views.
func (p *PreviewPane) ToggleRendered() {
	p.rendered = !p.rendered
	p.refresh()
}

// SetSize sets the pane dimensions.
func (p *PreviewPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = max(10, width-4)
	p.viewport.Height = max(1, height-paneHeaderRows-1)
	p.refresh()
}

// SetFocused sets whether the pane has focus.
func (p *PreviewPane) SetFocused(focused bool) {
	p.focused = focused
}

func (p *PreviewPane) refresh() {
	content := p.text
	if strings.TrimSpace(content) == "" {
		content = p.styles.PlaceholderStyle.Render("Nothing to preview yet. Add a customer with 'a'.")
	} else if p.rendered {
		out, err := renderMarkdown(content, p.styles.GlamourStyle(), p.viewport.Width)
		if err != nil {
			logging.Debug("ui", "render preview: %v", err)
		} else {
			content = out
		}
	}
	p.viewport.SetContent(content)
}

// renderMarkdown renders md with the named glamour style wrapped to width.
func renderMarkdown(md, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(10, width-2)),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// Update scrolls the preview.
func (p *PreviewPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.keys.Top):
			p.viewport.GotoTop()
			return nil
		case key.Matches(msg, p.keys.Bottom):
			p.viewport.GotoBottom()
			return nil
		}
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// View renders the preview pane.
func (p *PreviewPane) View() string {
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}

	mode := "raw"
	if p.rendered {
		mode = "markdown"
	}
	title := p.styles.PaneTitleStyle.Render("👁 PREVIEW") + " " + p.styles.StatLabelStyle.Render("("+mode+")")

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(p.styles.DetailStyle.Render(strings.Repeat("─", max(10, p.width-4))))
	b.WriteString("\n")
	b.WriteString(p.viewport.View())

	return style.Width(p.width).Height(p.height).Render(b.String())
}
