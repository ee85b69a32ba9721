package ui

import (
	"errors"
	"fmt"
	"strings"

	"nippo/internal/config"
	"nippo/internal/form"
	"nippo/internal/history"
	"nippo/internal/notify"
	"nippo/internal/report"
	"nippo/internal/storage"
	"nippo/internal/suggest"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// paneHeaderRows is the number of lines above the first row: the top border,
// the pane title and the separator.
const paneHeaderRows = 3

// field identifies which part of the form is being typed into.
type field int

const (
	fieldNone field = iota
	fieldDate
	fieldCustomer
	fieldTaskMain
	fieldTaskSub
)

// rowKind is the kind of a line in the editor tree.
type rowKind int

const (
	rowDate rowKind = iota
	rowItem
	rowTask
)

// row is one selectable line: a section date, a customer or a task.
type row struct {
	kind rowKind
	sec  form.Section
	item int
	task int
}

// editState is the field currently open in the text input.
type editState struct {
	field field
	sec   form.Section
	item  int
	task  int
}

// EditorPane shows the report form as a tree of sections, customers and
// tasks, and edits it in place.
type EditorPane struct {
	storage *storage.Storage
	styles  *Styles
	form    *form.Form
	hist    *history.History

	rows    []row
	cursor  int
	offset  int
	focused bool
	width   int
	height  int

	editing     *editState
	input       textinput.Model
	suggestions *suggest.Cursor
	popupHidden bool
	popupTop    int // pane line of the first suggestion, -1 when not drawn

	keys      EditorKeyMap
	inputKeys InputKeyMap
}

// NewEditorPane creates an editor for f.
func NewEditorPane(store *storage.Storage, styles *Styles, f *form.Form, keys *config.KeysConfig) *EditorPane {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 200

	p := &EditorPane{
		storage:     store,
		styles:      styles,
		hist:        &history.History{},
		input:       ti,
		suggestions: suggest.NewCursor(nil),
		popupTop:    -1,
		keys:        NewEditorKeyMap(keys),
		inputKeys:   NewInputKeyMap(keys),
	}
	p.SetForm(f)
	return p
}

// SetForm replaces the form being edited and closes any open field.
func (p *EditorPane) SetForm(f *form.Form) {
	p.form = f
	p.stopEdit()
	p.cursor = 0
	p.offset = 0
	p.rebuildRows()
}

// Form returns the form being edited.
func (p *EditorPane) Form() *form.Form {
	return p.form
}

// SetHistory replaces the usage history that feeds the suggestions.
func (p *EditorPane) SetHistory(h *history.History) {
	if h == nil {
		h = &history.History{}
	}
	p.hist = h
	if p.editing != nil {
		p.refreshSuggestions()
	}
}

// SetSize sets the pane dimensions.
func (p *EditorPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-14)
}

// SetFocused sets whether the pane has focus. Losing focus closes the open field.
func (p *EditorPane) SetFocused(focused bool) {
	p.focused = focused
	if !focused {
		p.stopEdit()
	}
}

// IsEditing reports whether a field is open.
func (p *EditorPane) IsEditing() bool {
	return p.editing != nil
}

// =============================================================================
// Rows
// =============================================================================

func (p *EditorPane) rebuildRows() {
	p.rows = p.rows[:0]
	for _, sec := range []form.Section{form.Results, form.Plans} {
		p.rows = append(p.rows, row{kind: rowDate, sec: sec})
		for i, it := range p.form.Items(sec) {
			p.rows = append(p.rows, row{kind: rowItem, sec: sec, item: i})
			for j := range it.Tasks {
				p.rows = append(p.rows, row{kind: rowTask, sec: sec, item: i, task: j})
			}
		}
	}
	p.cursor = min(max(p.cursor, 0), len(p.rows)-1)
}

func (p *EditorPane) findRow(kind rowKind, sec form.Section, item, task int) int {
	for idx, r := range p.rows {
		if r.kind != kind || r.sec != sec {
			continue
		}
		if kind == rowDate ||
			(kind == rowItem && r.item == item) ||
			(kind == rowTask && r.item == item && r.task == task) {
			return idx
		}
	}
	return p.cursor
}

func (p *EditorPane) current() (row, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return row{}, false
	}
	return p.rows[p.cursor], true
}

// =============================================================================
// Update
// =============================================================================

// Update handles keys and mouse events routed to the editor.
func (p *EditorPane) Update(msg tea.Msg) tea.Cmd {
	if p.editing != nil {
		return p.updateEditing(msg)
	}
	if !p.focused {
		return nil
	}
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)
	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return nil
}

func (p *EditorPane) handleKey(msg tea.KeyMsg) tea.Cmd {
	r, ok := p.current()

	switch {
	case key.Matches(msg, p.keys.MoveUp):
		return p.moveRow(r, ok, -1)
	case key.Matches(msg, p.keys.MoveDown):
		return p.moveRow(r, ok, 1)
	case key.Matches(msg, p.keys.Down):
		p.cursor = min(p.cursor+1, len(p.rows)-1)
	case key.Matches(msg, p.keys.Up):
		p.cursor = max(p.cursor-1, 0)
	case key.Matches(msg, p.keys.Top):
		p.cursor = 0
	case key.Matches(msg, p.keys.Bottom):
		p.cursor = len(p.rows) - 1

	case key.Matches(msg, p.keys.Edit):
		if ok {
			return p.startEdit(r)
		}

	case key.Matches(msg, p.keys.AddItem):
		sec := form.Results
		if ok {
			sec = r.sec
		}
		i := p.form.AddItem(sec)
		p.rebuildRows()
		p.cursor = p.findRow(rowItem, sec, i, 0)
		return tea.Batch(changedCmd, p.startEdit(p.rows[p.cursor]))

	case key.Matches(msg, p.keys.AddTask):
		if !ok || r.kind == rowDate {
			return statusCmd("Select a customer to add a task", notify.Warning)
		}
		j, err := p.form.AddTask(r.sec, r.item)
		if err != nil {
			return p.errorStatus(err)
		}
		p.rebuildRows()
		p.cursor = p.findRow(rowTask, r.sec, r.item, j)
		return tea.Batch(changedCmd, p.startEdit(p.rows[p.cursor]))

	case key.Matches(msg, p.keys.Delete):
		if !ok || r.kind == rowDate {
			return nil
		}
		return p.requestDelete(r)

	case key.Matches(msg, p.keys.MoveAcross):
		if ok {
			return p.moveAcross(r)
		}

	case key.Matches(msg, p.keys.CopyToPlans):
		if ok {
			return p.copyToPlans(r)
		}
	}
	return nil
}

func (p *EditorPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if p.editing != nil {
			return nil
		}
		p.cursor = max(p.cursor-1, 0)
		return nil
	case tea.MouseButtonWheelDown:
		if p.editing != nil {
			return nil
		}
		p.cursor = min(p.cursor+1, len(p.rows)-1)
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	if p.popupVisible() && p.popupTop >= 0 {
		idx := msg.Y - p.popupTop
		if idx >= 0 && idx < p.suggestions.Len() && p.suggestions.Set(idx) {
			return p.confirmEdit()
		}
	}
	if p.editing != nil {
		return nil
	}

	idx := msg.Y - paneHeaderRows + p.offset
	if idx < p.offset || idx >= len(p.rows) {
		return nil
	}
	if idx == p.cursor {
		return p.startEdit(p.rows[idx])
	}
	p.cursor = idx
	return nil
}

// =============================================================================
// Structural Edits
// =============================================================================

func (p *EditorPane) requestDelete(r row) tea.Cmd {
	title := "Delete customer?"
	var body string
	if r.kind == rowItem {
		if it, err := p.form.Item(r.sec, r.item); err == nil {
			body = it.Customer
		}
	} else {
		title = "Delete task?"
		if t, err := p.form.Task(r.sec, r.item, r.task); err == nil {
			body = t.String()
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "(blank)"
	}

	action := func() tea.Cmd {
		var err error
		if r.kind == rowItem {
			err = p.form.RemoveItem(r.sec, r.item)
		} else {
			err = p.form.RemoveTask(r.sec, r.item, r.task)
		}
		if err != nil {
			return p.errorStatus(err)
		}
		p.rebuildRows()
		return changedCmd
	}
	return func() tea.Msg {
		return confirmMsg{title: title, body: body, action: action}
	}
}

func (p *EditorPane) moveRow(r row, ok bool, delta int) tea.Cmd {
	if !ok {
		return nil
	}
	switch r.kind {
	case rowItem:
		i, err := p.form.MoveItem(r.sec, r.item, delta)
		if err != nil {
			return p.errorStatus(err)
		}
		if i == r.item {
			return nil
		}
		p.rebuildRows()
		p.cursor = p.findRow(rowItem, r.sec, i, 0)
	case rowTask:
		j, err := p.form.MoveTask(r.sec, r.item, r.task, delta)
		if err != nil {
			return p.errorStatus(err)
		}
		if j == r.task {
			return nil
		}
		p.rebuildRows()
		p.cursor = p.findRow(rowTask, r.sec, r.item, j)
	default:
		return nil
	}
	return changedCmd
}

func (p *EditorPane) moveAcross(r row) tea.Cmd {
	to := r.sec.Other()
	switch r.kind {
	case rowItem:
		i, err := p.form.MoveItemAcross(r.sec, r.item)
		if err != nil {
			return p.errorStatus(err)
		}
		p.rebuildRows()
		p.cursor = p.findRow(rowItem, to, i, 0)
	case rowTask:
		i, j, err := p.form.MoveTaskAcross(r.sec, r.item, r.task)
		if err != nil {
			return p.errorStatus(err)
		}
		p.rebuildRows()
		p.cursor = p.findRow(rowTask, to, i, j)
	default:
		return nil
	}
	return tea.Batch(changedCmd, statusCmd("Moved to "+to.String(), notify.Success))
}

func (p *EditorPane) copyToPlans(r row) tea.Cmd {
	if r.sec != form.Results || r.kind == rowDate {
		return statusCmd("Only results can be copied to plans", notify.Warning)
	}
	var err error
	if r.kind == rowItem {
		_, err = p.form.CopyItemToPlans(r.item)
	} else {
		_, _, err = p.form.CopyTaskToPlans(r.item, r.task)
	}
	if err != nil {
		return p.errorStatus(err)
	}
	p.rebuildRows()
	return tea.Batch(changedCmd, statusCmd("Copied to plans", notify.Success))
}

// errorStatus turns a form error into a status message.
func (p *EditorPane) errorStatus(err error) tea.Cmd {
	switch {
	case errors.Is(err, form.ErrNothingToMove):
		return statusCmd("Nothing to move: the entry is blank", notify.Warning)
	case errors.Is(err, form.ErrNoCustomer):
		return statusCmd("Enter a customer name first", notify.Warning)
	}
	return statusCmd(err.Error(), notify.Error)
}

// =============================================================================
// Field Editing
// =============================================================================

func (p *EditorPane) startEdit(r row) tea.Cmd {
	switch r.kind {
	case rowDate:
		date := p.form.ResultDate
		if r.sec == form.Plans {
			date = p.form.PlanDate
		}
		return p.beginInput(editState{field: fieldDate, sec: r.sec}, date, "YYYY-MM-DD")
	case rowItem:
		it, err := p.form.Item(r.sec, r.item)
		if err != nil {
			return nil
		}
		return p.beginInput(editState{field: fieldCustomer, sec: r.sec, item: r.item}, it.Customer, "顧客・案件名")
	case rowTask:
		t, err := p.form.Task(r.sec, r.item, r.task)
		if err != nil {
			return nil
		}
		placeholder := "実施内容"
		if r.sec == form.Plans {
			placeholder = "予定内容"
		}
		return p.beginInput(editState{field: fieldTaskMain, sec: r.sec, item: r.item, task: r.task}, t.Main, placeholder)
	}
	return nil
}

func (p *EditorPane) beginInput(st editState, value, placeholder string) tea.Cmd {
	p.editing = &st
	p.popupHidden = false
	p.input.SetValue(value)
	p.input.Placeholder = placeholder
	p.input.CursorEnd()
	p.refreshSuggestions()
	return p.input.Focus()
}

func (p *EditorPane) stopEdit() {
	p.editing = nil
	p.popupHidden = false
	p.popupTop = -1
	p.input.Blur()
	p.input.SetValue("")
	p.suggestions.Reset(nil)
}

func (p *EditorPane) refreshSuggestions() {
	var items []string
	switch p.editing.field {
	case fieldCustomer:
		items = p.hist.CustomerSuggestions(p.input.Value())
	case fieldTaskMain:
		items = p.hist.TaskSuggestions(p.input.Value())
	}
	p.suggestions.Reset(items)
}

func (p *EditorPane) popupVisible() bool {
	return p.editing != nil && !p.popupHidden && p.suggestions.Len() > 0
}

func (p *EditorPane) updateEditing(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.inputKeys.Confirm):
			return p.confirmEdit()
		case key.Matches(msg, p.inputKeys.Cancel):
			if p.popupVisible() {
				p.popupHidden = true
				return nil
			}
			p.stopEdit()
			return nil
		case key.Matches(msg, p.inputKeys.Next):
			if p.popupVisible() {
				p.suggestions.Next()
			} else if p.editing.field == fieldDate {
				p.shiftDate(1)
			}
			return nil
		case key.Matches(msg, p.inputKeys.Prev):
			if p.popupVisible() {
				p.suggestions.Prev()
			} else if p.editing.field == fieldDate {
				p.shiftDate(-1)
			}
			return nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.popupHidden = false
		p.refreshSuggestions()
	}
	return cmd
}

// dateInput reads a typed date as YYYY-MM-DD or as the YYYY/MM/DD shown in
// the report headers.
func dateInput(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if report.ValidDate(value) {
		return value, true
	}
	iso, err := report.ParseDisplayDate(value)
	if err != nil {
		return value, false
	}
	return iso, true
}

func (p *EditorPane) shiftDate(days int) {
	value, ok := dateInput(p.input.Value())
	if !ok {
		return
	}
	if days > 0 {
		value = report.NextDay(value)
	} else {
		value = report.PrevDay(value)
	}
	p.input.SetValue(value)
	p.input.CursorEnd()
}

// confirmEdit writes the input back into the form. A highlighted suggestion
// replaces the typed text and is recorded as selected.
func (p *EditorPane) confirmEdit() tea.Cmd {
	st := *p.editing
	value := p.input.Value()

	var cmds []tea.Cmd
	if p.popupVisible() {
		if sel, ok := p.suggestions.Selected(); ok {
			value = sel
			if p.storage != nil {
				cmds = append(cmds, selectCmd(p.storage, st.field, sel))
			}
		}
	}

	switch st.field {
	case fieldDate:
		date, ok := dateInput(value)
		if !ok {
			return statusCmd(fmt.Sprintf("Invalid date %q: use YYYY-MM-DD or YYYY/MM/DD", date), notify.Warning)
		}
		value = date
		if st.sec == form.Results {
			p.form.ResultDate = value
		} else {
			p.form.PlanDate = value
		}
		p.stopEdit()

	case fieldCustomer:
		it, err := p.form.Item(st.sec, st.item)
		p.stopEdit()
		if err != nil {
			return p.errorStatus(err)
		}
		it.Customer = value

	case fieldTaskMain:
		t, err := p.form.Task(st.sec, st.item, st.task)
		if err != nil {
			p.stopEdit()
			return p.errorStatus(err)
		}
		t.Main = value
		st.field = fieldTaskSub
		cmds = append(cmds, p.beginInput(st, t.Sub, "詳細 (任意)"))

	case fieldTaskSub:
		t, err := p.form.Task(st.sec, st.item, st.task)
		p.stopEdit()
		if err != nil {
			return p.errorStatus(err)
		}
		t.Sub = value
	}

	cmds = append(cmds, changedCmd)
	return tea.Batch(cmds...)
}

// =============================================================================
// View
// =============================================================================

// visibleRows is the number of tree lines that fit in the pane body.
func (p *EditorPane) visibleRows() int {
	return max(1, p.height-paneHeaderRows-1)
}

func (p *EditorPane) ensureVisible(reserve int) {
	visible := max(1, p.visibleRows()-reserve)
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+visible {
		p.offset = p.cursor - visible + 1
	}
	p.offset = max(0, min(p.offset, len(p.rows)-1))
}

// View renders the editor pane.
func (p *EditorPane) View() string {
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	inner := max(10, p.width-4)

	var b strings.Builder
	b.WriteString(p.styles.PaneTitleStyle.Render("📝 EDITOR"))
	b.WriteString("\n")
	b.WriteString(p.styles.DetailStyle.Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	popup := 0
	if p.popupVisible() {
		popup = p.suggestions.Len()
	}
	p.ensureVisible(popup)
	p.popupTop = -1

	lines := 0
	limit := p.visibleRows()
	for idx := p.offset; idx < len(p.rows) && lines < limit; idx++ {
		r := p.rows[idx]
		if p.editing != nil && idx == p.cursor {
			b.WriteString(p.renderInputRow(r, inner))
			b.WriteString("\n")
			lines++
			if popup > 0 {
				p.popupTop = paneHeaderRows + lines
				for i, s := range p.suggestions.Items() {
					b.WriteString(p.renderSuggestion(s, i == p.suggestions.Index(), inner))
					b.WriteString("\n")
					lines++
				}
			}
			continue
		}
		b.WriteString(p.renderRow(r, idx == p.cursor, inner))
		b.WriteString("\n")
		lines++
	}

	return style.Width(p.width).Height(p.height).Render(strings.TrimRight(b.String(), "\n"))
}

func (p *EditorPane) renderRow(r row, selected bool, width int) string {
	var text string
	style := p.styles.TaskStyle

	switch r.kind {
	case rowDate:
		if r.sec == form.Results {
			text = "▾ " + displayDate(p.form.ResultDate) + report.ResultSuffix
		} else {
			text = "▾ " + displayDate(p.form.PlanDate) + report.PlanSuffix
		}
		style = p.styles.SectionStyle
	case rowItem:
		it := p.form.Items(r.sec)[r.item]
		if strings.TrimSpace(it.Customer) == "" {
			text = "  (customer)"
			style = p.styles.PlaceholderStyle
		} else {
			text = "  " + it.Customer
			style = p.styles.CustomerStyle
		}
	case rowTask:
		t := p.form.Items(r.sec)[r.item].Tasks[r.task]
		if t.Blank() {
			text = "    - (task)"
			style = p.styles.PlaceholderStyle
		} else {
			text = "    - " + t.String()
		}
	}

	text = runewidth.Truncate(text, width, "…")
	if selected && p.focused {
		return p.styles.SelectedStyle.Render(text)
	}
	return style.Render(text)
}

func (p *EditorPane) renderInputRow(r row, width int) string {
	prompt := "  "
	switch p.editing.field {
	case fieldDate:
		prompt = "▾ "
	case fieldTaskMain:
		prompt = "    - "
	case fieldTaskSub:
		t := p.form.Items(r.sec)[r.item].Tasks[r.task]
		prompt = runewidth.Truncate("    - "+t.Main, width/2, "…") + " ("
	}
	return p.styles.InputPromptStyle.Render(prompt) + p.input.View()
}

func (p *EditorPane) renderSuggestion(s string, selected bool, width int) string {
	text := runewidth.Truncate(s, max(4, width-8), "…")
	if selected {
		text = p.styles.PopupSelectedStyle.Render(text)
	} else {
		text = p.styles.PopupItemStyle.Render(text)
	}
	return "    " + p.styles.PopupStyle.Render(text)
}

// displayDate shows an ISO date as YYYY/MM/DD, or a placeholder when unset.
func displayDate(date string) string {
	if date == "" {
		return "----/--/--"
	}
	return report.FormatDisplayDate(date)
}
