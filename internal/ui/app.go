// Package ui provides the terminal interface for nippo.
// This file contains the main App model which coordinates the editor,
// preview and history panes and routes messages using the Bubble Tea
// architecture.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"nippo/internal/config"
	"nippo/internal/form"
	"nippo/internal/history"
	"nippo/internal/logging"
	"nippo/internal/notify"
	"nippo/internal/report"
	"nippo/internal/storage"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneEditor PaneID = iota
	PanePreview
	PaneHistory
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows the editor on the left with preview and history
	// stacked on the right.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	Theme                 config.ThemeConfig
	ConfirmDeletions      bool
	RenderPreview         bool
	NarrowLayoutThreshold int
	Notifier              notify.Notifier
}

// AppConfigFrom maps the loaded configuration onto app settings.
func AppConfigFrom(cfg *config.Config, n notify.Notifier) *AppConfig {
	return &AppConfig{
		Keys:                  &cfg.Keys,
		Theme:                 cfg.Theme,
		ConfirmDeletions:      cfg.UX.ConfirmDeletions,
		RenderPreview:         cfg.UX.RenderPreview,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
		Notifier:              n,
	}
}

type confirmState struct {
	title  string
	body   string
	action func() tea.Cmd
}

// App is the main application model that coordinates all panes.
type App struct {
	storage     *storage.Storage
	styles      *Styles
	config      *AppConfig
	form        *form.Form
	hist        *history.History
	editor      *EditorPane
	preview     *PreviewPane
	historyPane *HistoryPane
	helpOverlay *HelpOverlay
	confirm     *confirmState
	activePane  PaneID
	layoutMode  LayoutMode
	showHelp    bool
	saving      bool
	width       int
	height      int
	clock       time.Time
	status      string
	statusLevel notify.Level
	statusSeq   int
	quitting    bool

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Pane positions for mouse click detection
	editorEnd  int
	rightStart int
	historyTop int
	contentTop int
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking; only the theme is read up front so
// the first frame has the right colors.
func NewApp(store *storage.Storage, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			Keys:                  &config.KeysConfig{},
			ConfirmDeletions:      true,
			RenderPreview:         false,
			NarrowLayoutThreshold: 100,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	styles := NewStylesFromTheme(&cfg.Theme, store.Theme())
	now := store.Now()
	f := form.New(now)

	editor := NewEditorPane(store, styles, f, cfg.Keys)
	preview := NewPreviewPane(styles, cfg.Keys, cfg.RenderPreview)
	historyPane := NewHistoryPane(store, styles, cfg.Keys)

	keys := NewGlobalKeyMap(cfg.Keys)
	helpOverlay := NewHelpOverlay(styles, keys, editor.keys, historyPane.keys, editor.inputKeys)

	app := &App{
		storage:     store,
		styles:      styles,
		config:      cfg,
		form:        f,
		hist:        &history.History{},
		editor:      editor,
		preview:     preview,
		historyPane: historyPane,
		helpOverlay: helpOverlay,
		activePane:  PaneEditor,
		clock:       now,
		keys:        keys,
		helpKeys:    DefaultHelpKeyMap(),
	}

	editor.SetFocused(true)
	preview.SetFocused(false)
	historyPane.SetFocused(false)
	app.refreshPreview()

	return app
}

// Init loads the history, saved reports and last session asynchronously and
// starts the clock.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(a.storage),
		clockCmd(),
	)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Storage results and internal events first, regardless of which pane
	// is active.
	switch msg := msg.(type) {
	case loadedMsg:
		var cmd tea.Cmd
		if msg.err != nil {
			cmd = a.setStatus("Load: "+msg.err.Error(), notify.Error)
		}
		a.setHistory(msg.history)
		a.historyPane.SetReports(msg.reports)
		if msg.session != nil {
			a.form = form.FromSession(msg.session, a.storage.Now())
			a.editor.SetForm(a.form)
			logging.Debug("ui", "restored session from %s", msg.session.Timestamp.Format(time.RFC3339))
		}
		a.refreshPreview()
		return a, cmd

	case savedMsg:
		a.saving = false
		if msg.err != nil {
			if errors.Is(msg.err, storage.ErrNothingToSave) {
				return a, a.setStatus("Nothing to save", notify.Warning)
			}
			text := "Save failed: " + msg.err.Error()
			return a, tea.Batch(
				a.setStatus(text, notify.Error),
				notifyCmd(a.config.Notifier, notify.Error, text),
			)
		}
		a.setHistory(msg.history)
		a.historyPane.SetReports(msg.reports)
		text := "Saved " + reportLabel(*msg.report)
		return a, tea.Batch(
			a.setStatus(text, notify.Success),
			notifyCmd(a.config.Notifier, notify.Success, text),
		)

	case sessionSavedMsg:
		if msg.err != nil {
			return a, a.setStatus("Session: "+msg.err.Error(), notify.Error)
		}
		return a, nil

	case selectionSavedMsg:
		if msg.err != nil {
			return a, a.setStatus("History: "+msg.err.Error(), notify.Error)
		}
		a.setHistory(msg.history)
		return a, nil

	case reportDeletedMsg:
		if msg.err != nil {
			return a, a.setStatus("Delete report: "+msg.err.Error(), notify.Error)
		}
		a.historyPane.SetReports(msg.reports)
		return a, a.setStatus("Deleted report "+msg.id, notify.Info)

	case themeSavedMsg:
		if msg.err != nil {
			return a, a.setStatus("Theme: "+msg.err.Error(), notify.Error)
		}
		return a, nil

	case copiedMsg:
		if msg.err != nil {
			return a, a.setStatus("Copy failed: "+msg.err.Error(), notify.Error)
		}
		return a, a.setStatus("Copied to clipboard", notify.Success)

	case formChangedMsg:
		a.refreshPreview()
		return a, saveSessionCmd(a.storage, a.form.Clone())

	case statusMsg:
		return a, a.setStatus(msg.text, msg.level)

	case statusExpiredMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case confirmMsg:
		return a, a.requestConfirm(msg)

	case loadReportMsg:
		a.form.Load(msg.report.Parsed())
		a.editor.SetForm(a.form)
		a.setActivePane(PaneEditor)
		return a, tea.Batch(
			changedCmd,
			a.setStatus("Loaded "+reportLabel(msg.report), notify.Info),
		)

	case clockMsg:
		a.clock = time.Time(msg)
		return a, clockCmd()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.confirm != nil {
			switch msg.String() {
			case "y", "Y", "enter":
				action := a.confirm.action
				a.confirm = nil
				return a, action()
			case "n", "N", "esc":
				a.confirm = nil
				return a, a.setStatus("Canceled", notify.Info)
			default:
				return a, nil
			}
		}

		// Help overlay takes priority
		if a.showHelp {
			if key.Matches(msg, a.helpKeys.Close) {
				a.showHelp = false
			}
			return a, nil
		}

		if key.Matches(msg, a.keys.Quit) {
			a.quitting = true
			return a, tea.Quit
		}

		if a.editor.IsEditing() {
			return a, a.editor.Update(msg)
		}

		switch {
		case key.Matches(msg, a.keys.Help):
			a.showHelp = true
			return a, nil

		case key.Matches(msg, a.keys.NextPane):
			a.switchPane()
			return a, nil

		case key.Matches(msg, a.keys.Pane1):
			a.setActivePane(PaneEditor)
			return a, nil

		case key.Matches(msg, a.keys.Pane2):
			a.setActivePane(PanePreview)
			return a, nil

		case key.Matches(msg, a.keys.Pane3):
			a.setActivePane(PaneHistory)
			return a, nil

		case key.Matches(msg, a.keys.Save):
			return a, a.save()

		case key.Matches(msg, a.keys.Copy):
			text := a.form.Render()
			if strings.TrimSpace(text) == "" {
				return a, a.setStatus("Nothing to copy", notify.Warning)
			}
			return a, copyCmd(text)

		case key.Matches(msg, a.keys.NextDay):
			if !a.form.CarryOver() {
				return a, a.setStatus("No plans to carry over", notify.Warning)
			}
			a.editor.SetForm(a.form)
			return a, tea.Batch(
				changedCmd,
				a.setStatus("Plans moved to "+displayDate(a.form.ResultDate)+report.ResultSuffix, notify.Success),
			)

		case key.Matches(msg, a.keys.Clear):
			return a, a.requestConfirm(confirmMsg{
				title:  "Clear the form?",
				body:   "Both sections are emptied and the dates reset to today.",
				action: a.clearForm,
			})

		case key.Matches(msg, a.keys.ToggleTheme):
			mode := a.styles.Mode.Toggle()
			*a.styles = *NewStylesFromTheme(&a.config.Theme, mode)
			a.preview.SetStyles(a.styles)
			return a, setThemeCmd(a.storage, mode)

		case key.Matches(msg, a.keys.ToggleRender):
			a.preview.ToggleRendered()
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)
	}

	if a.showHelp || a.confirm != nil {
		return a, nil
	}
	return a, a.updateActive(msg)
}

// updateActive forwards msg to the focused pane.
func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	switch a.activePane {
	case PaneEditor:
		return a.editor.Update(msg)
	case PanePreview:
		return a.preview.Update(msg)
	case PaneHistory:
		return a.historyPane.Update(msg)
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.confirm != nil {
		if msg.Action == tea.MouseActionPress {
			a.confirm = nil
			return a.setStatus("Canceled", notify.Info)
		}
		return nil
	}

	if a.showHelp {
		// Any click closes help
		if msg.Action == tea.MouseActionPress {
			a.showHelp = false
		}
		return nil
	}

	if msg.Action == tea.MouseActionMotion {
		return nil
	}

	wheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown

	// In narrow mode, check for tab bar clicks
	if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
		if msg.Action == tea.MouseActionPress && !wheel {
			tabWidth := max(1, a.width/3)
			a.setActivePane(PaneID(min(msg.X/tabWidth, int(PaneHistory))))
		}
		return nil
	}

	if msg.Y < a.contentTop {
		return nil
	}

	pane, left, top := a.paneAt(msg.X, msg.Y)
	if pane != a.activePane {
		if wheel {
			return nil
		}
		a.setActivePane(pane)
	}

	local := msg
	local.X = msg.X - left
	local.Y = msg.Y - top
	return a.updateActive(local)
}

// paneAt returns which pane is at the given position and the pane's origin.
func (a *App) paneAt(x, y int) (PaneID, int, int) {
	if a.layoutMode == LayoutNarrow {
		return a.activePane, 0, a.contentTop
	}
	if x < a.editorEnd {
		return PaneEditor, 0, a.contentTop
	}
	if y >= a.historyTop {
		return PaneHistory, a.rightStart, a.historyTop
	}
	return PanePreview, a.rightStart, a.contentTop
}

// switchPane cycles through panes.
func (a *App) switchPane() {
	switch a.activePane {
	case PaneEditor:
		a.setActivePane(PanePreview)
	case PanePreview:
		a.setActivePane(PaneHistory)
	case PaneHistory:
		a.setActivePane(PaneEditor)
	}
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane

	a.editor.SetFocused(pane == PaneEditor)
	a.preview.SetFocused(pane == PanePreview)
	a.historyPane.SetFocused(pane == PaneHistory)
}

// =============================================================================
// Actions
// =============================================================================

func (a *App) save() tea.Cmd {
	if a.saving {
		return a.setStatus("Save: busy", notify.Warning)
	}
	if a.form.Empty() {
		return a.setStatus("Nothing to save: add a customer with at least one task", notify.Warning)
	}
	a.saving = true
	return saveReportCmd(a.storage, a.form.Clone())
}

func (a *App) clearForm() tea.Cmd {
	a.form.Clear(a.storage.Now())
	a.editor.SetForm(a.form)
	a.refreshPreview()
	return tea.Batch(
		clearSessionCmd(a.storage),
		a.setStatus("Cleared", notify.Info),
	)
}

// requestConfirm shows the confirmation dialog, or runs the action directly
// when confirmations are turned off.
func (a *App) requestConfirm(msg confirmMsg) tea.Cmd {
	if !a.config.ConfirmDeletions {
		return msg.action()
	}
	a.confirm = &confirmState{title: msg.title, body: msg.body, action: msg.action}
	return nil
}

func (a *App) setHistory(h *history.History) {
	if h == nil {
		return
	}
	a.hist = h
	a.editor.SetHistory(h)
}

func (a *App) refreshPreview() {
	a.preview.SetContent(a.form.Render())
}

// setStatus shows a toast in the help bar until statusTTL passes or another
// status replaces it.
func (a *App) setStatus(text string, level notify.Level) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusLevel = level
	if level == notify.Error {
		logging.Warn("ui", "%s", logging.Truncate(text, 200))
	}
	return statusExpireCmd(a.statusSeq)
}

// =============================================================================
// Layout
// =============================================================================

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Title bar (1), help bar (1) and the pane borders (2)
	contentHeight := max(a.height-4, 10)

	a.contentTop = 1
	a.helpOverlay.SetSize(a.width, a.height)

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 100
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow

		// Leave room for the tab bar
		narrowHeight := max(contentHeight-1, 8)
		paneWidth := max(a.width-2, 20)

		a.editor.SetSize(paneWidth, narrowHeight)
		a.preview.SetSize(paneWidth, narrowHeight)
		a.historyPane.SetSize(paneWidth, narrowHeight)

		a.contentTop = 2
		a.editorEnd = a.width
		a.rightStart = 0
		a.historyTop = a.contentTop
		return
	}

	a.layoutMode = LayoutWide

	// Every pane adds two columns of border; one column separates them.
	totalWidth := a.width - 5
	editorWidth := totalWidth * 55 / 100
	rightWidth := totalWidth - editorWidth

	previewHeight := (contentHeight - 2) / 2
	historyHeight := contentHeight - 2 - previewHeight

	a.editor.SetSize(editorWidth, contentHeight)
	a.preview.SetSize(rightWidth, previewHeight)
	a.historyPane.SetSize(rightWidth, historyHeight)

	a.editorEnd = editorWidth + 2
	a.rightStart = a.editorEnd + 1
	a.historyTop = a.contentTop + previewHeight + 2
}

// =============================================================================
// View
// =============================================================================

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}

	if a.confirm != nil {
		return a.renderConfirm()
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder

	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderNarrowContent())
	default:
		b.WriteString(a.renderWideContent())
	}
	b.WriteString("\n")

	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderConfirm() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger).
		MarginBottom(1)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirm.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirm.body))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] confirm    [n/esc] cancel"))

	return RenderCentered(overlayStyle.Render(b.String()), a.width, a.height)
}

// renderWideContent renders the editor beside the stacked preview and history.
func (a *App) renderWideContent() string {
	right := lipgloss.JoinVertical(lipgloss.Left, a.preview.View(), a.historyPane.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, a.editor.View(), " ", right)
}

// renderNarrowContent renders the focused pane with a tab bar.
func (a *App) renderNarrowContent() string {
	var b strings.Builder

	b.WriteString(a.renderPaneTabs())
	b.WriteString("\n")

	switch a.activePane {
	case PaneEditor:
		b.WriteString(a.editor.View())
	case PanePreview:
		b.WriteString(a.preview.View())
	case PaneHistory:
		b.WriteString(a.historyPane.View())
	}

	return b.String()
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	tabs := []struct {
		id    PaneID
		label string
	}{
		{PaneEditor, "Editor"},
		{PanePreview, "Preview"},
		{PaneHistory, "History"},
	}

	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	tabWidth := max(1, a.width/3)
	var parts []string
	for _, tab := range tabs {
		var label string
		if tab.id == a.activePane {
			label = activeTabStyle.Render("[" + tab.label + "]")
		} else {
			label = inactiveTabStyle.Render(" " + tab.label + " ")
		}
		parts = append(parts, lipgloss.PlaceHorizontal(tabWidth, lipgloss.Center, label))
	}

	return strings.Join(parts, "")
}

func (a *App) renderGoodbye() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  お疲れさまでした!\n")
	b.WriteString("\n")
	if n := len(a.historyPane.Reports()); n > 0 {
		b.WriteString(fmt.Sprintf("  Saved reports: %d\n\n", n))
	}
	return b.String()
}

// renderTitleBar creates the top title bar with the report dates and clock.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" nippo ")

	dates := a.styles.StatLabelStyle.Render(fmt.Sprintf("%s%s → %s",
		displayDate(a.form.ResultDate), report.ResultSuffix, displayDate(a.form.PlanDate)))

	clock := a.styles.DateStyle.Render(a.clock.Format("Mon Jan 2 · 15:04"))

	used := lipgloss.Width(title) + 2 + lipgloss.Width(dates) + lipgloss.Width(clock)
	spacer := max(a.width-used, 2)

	return title + "  " + dates + strings.Repeat(" ", spacer) + clock
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		text := a.statusLevel.Symbol() + " " + a.status
		switch a.statusLevel {
		case notify.Error:
			return a.styles.ErrorStyle.Render(text)
		case notify.Warning:
			return a.styles.WarningStyle.Render(text)
		}
		return a.styles.StatusStyle.Render(text)
	}

	if a.editor.IsEditing() {
		return a.styles.RenderHelp(
			"enter", "confirm",
			"↑/↓", "suggestions",
			"esc", "cancel",
		)
	}

	g := a.keys
	switch a.activePane {
	case PaneEditor:
		e := a.editor.keys
		return a.styles.RenderHelp(
			helpOf(e.AddItem), "customer",
			helpOf(e.AddTask), "task",
			helpOf(e.Edit), "edit",
			helpOf(e.Delete), "del",
			helpOf(g.Save), "save",
			helpOf(g.Copy), "copy",
			helpOf(g.NextDay), "next day",
			"?", "help",
		)
	case PanePreview:
		return a.styles.RenderHelp(
			"j/k", "scroll",
			helpOf(g.ToggleRender), "raw/markdown",
			helpOf(g.Copy), "copy",
			helpOf(g.NextPane), "pane",
			"?", "help",
		)
	case PaneHistory:
		h := a.historyPane.keys
		return a.styles.RenderHelp(
			helpOf(h.Load), "load",
			helpOf(h.Delete), "del",
			"j/k", "nav",
			helpOf(g.NextPane), "pane",
			"?", "help",
		)
	}

	return ""
}

func helpOf(b key.Binding) string {
	return b.Help().Key
}

// Run starts the Bubble Tea program with the given storage and config.
func Run(store *storage.Storage, cfg *AppConfig) error {
	app := NewApp(store, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
