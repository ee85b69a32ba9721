package ui

import (
	"fmt"
	"strings"
	"time"

	"nippo/internal/config"
	"nippo/internal/report"
	"nippo/internal/storage"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// HistoryPane lists saved reports, newest first, and shows the text of the
// highlighted one below the list.
type HistoryPane struct {
	storage *storage.Storage
	styles  *Styles
	reports []storage.Report
	cursor  int
	offset  int
	focused bool
	width   int
	height  int
	keys    HistoryKeyMap
}

// NewHistoryPane creates an empty history pane.
func NewHistoryPane(store *storage.Storage, styles *Styles, keys *config.KeysConfig) *HistoryPane {
	return &HistoryPane{
		storage: store,
		styles:  styles,
		keys:    NewHistoryKeyMap(keys),
	}
}

// SetReports replaces the listed reports.
func (p *HistoryPane) SetReports(reports []storage.Report) {
	p.reports = reports
	p.cursor = min(p.cursor, len(reports)-1)
	p.cursor = max(p.cursor, 0)
}

// Reports returns the listed reports.
func (p *HistoryPane) Reports() []storage.Report {
	return p.reports
}

// Selected returns the highlighted report.
func (p *HistoryPane) Selected() (storage.Report, bool) {
	if p.cursor < 0 || p.cursor >= len(p.reports) {
		return storage.Report{}, false
	}
	return p.reports[p.cursor], true
}

// SetSize sets the pane dimensions.
func (p *HistoryPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether the pane has focus.
func (p *HistoryPane) SetFocused(focused bool) {
	p.focused = focused
}

// listRows is the number of list lines shown above the selected report text.
func (p *HistoryPane) listRows() int {
	body := max(1, p.height-paneHeaderRows-1)
	return max(1, min(len(p.reports), body/2))
}

// Update handles keys and mouse events routed to the history pane.
func (p *HistoryPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			p.cursor = min(p.cursor+1, max(len(p.reports)-1, 0))
		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, p.keys.Top):
			p.cursor = 0
		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(len(p.reports)-1, 0)
		case key.Matches(msg, p.keys.Load):
			return p.loadSelected()
		case key.Matches(msg, p.keys.Delete):
			return p.requestDelete()
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			p.cursor = max(p.cursor-1, 0)
			return nil
		case tea.MouseButtonWheelDown:
			p.cursor = min(p.cursor+1, max(len(p.reports)-1, 0))
			return nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		idx := msg.Y - paneHeaderRows + p.offset
		if msg.Y < paneHeaderRows || idx >= len(p.reports) || idx-p.offset >= p.listRows() {
			return nil
		}
		if idx == p.cursor {
			return p.loadSelected()
		}
		p.cursor = idx
	}
	return nil
}

func (p *HistoryPane) loadSelected() tea.Cmd {
	r, ok := p.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return loadReportMsg{report: r}
	}
}

func (p *HistoryPane) requestDelete() tea.Cmd {
	r, ok := p.Selected()
	if !ok {
		return nil
	}
	store := p.storage
	return func() tea.Msg {
		return confirmMsg{
			title: "Delete saved report?",
			body:  reportLabel(r),
			action: func() tea.Cmd {
				return deleteReportCmd(store, r.ID)
			},
		}
	}
}

// reportLabel names a report by its result date header.
func reportLabel(r storage.Report) string {
	return displayDate(r.ResultDate) + report.ResultSuffix
}

// View renders the history pane.
func (p *HistoryPane) View() string {
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	inner := max(10, p.width-4)

	var b strings.Builder
	b.WriteString(p.styles.PaneTitleStyle.Render(fmt.Sprintf("🗂 HISTORY (%d)", len(p.reports))))
	b.WriteString("\n")
	b.WriteString(p.styles.DetailStyle.Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	if len(p.reports) == 0 {
		b.WriteString(p.styles.PlaceholderStyle.Render("No saved reports yet. Press ctrl+s to save."))
		return style.Width(p.width).Height(p.height).Render(b.String())
	}

	rows := p.listRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}

	now := p.now()
	for i := p.offset; i < len(p.reports) && i < p.offset+rows; i++ {
		r := p.reports[i]
		age := humanize.RelTime(r.Created, now, "ago", "from now")
		line := fmt.Sprintf("%s  %d件 · %s", reportLabel(r), len(r.Results), age)
		line = runewidth.Truncate(line, inner, "…")
		if i == p.cursor && p.focused {
			line = p.styles.SelectedStyle.Render(line)
		} else if i == p.cursor {
			line = p.styles.CustomerStyle.Render(line)
		} else {
			line = p.styles.TaskStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if sel, ok := p.Selected(); ok {
		b.WriteString(p.styles.DetailStyle.Render(strings.Repeat("─", inner)))
		b.WriteString("\n")
		room := max(0, p.height-paneHeaderRows-1-rows-1)
		lines := strings.Split(strings.TrimRight(sel.Markdown, "\n"), "\n")
		for i, l := range lines {
			if i >= room {
				break
			}
			b.WriteString(p.styles.DetailStyle.Render(runewidth.Truncate(l, inner, "…")))
			b.WriteString("\n")
		}
	}

	return style.Width(p.width).Height(p.height).Render(strings.TrimRight(b.String(), "\n"))
}

func (p *HistoryPane) now() time.Time {
	if p.storage != nil {
		return p.storage.Now()
	}
	return time.Now()
}
