// Package form holds the editable state of the report being written: two
// ordered sections of customer items, each with ordered task rows.
//
// Drafts keep whatever the user typed, including blank rows. Extract is the
// boundary where blank items and tasks are dropped before rendering,
// persisting or recording usage.
package form

import (
	"errors"
	"strings"
	"time"

	"nippo/internal/report"
)

var (
	// ErrOutOfRange is returned when an item or task index does not exist.
	ErrOutOfRange = errors.New("form: index out of range")
	// ErrNothingToMove is returned when a move or copy source has no content.
	ErrNothingToMove = errors.New("form: nothing to move")
	// ErrNoCustomer is returned when a task is moved out of an item whose
	// customer name is blank.
	ErrNoCustomer = errors.New("form: customer name is empty")
)

// ContinuedMark is appended to the detail of tasks copied into plans.
const ContinuedMark = "続き"

// Section identifies one of the two lists in the report.
type Section int

const (
	Results Section = iota
	Plans
)

// Other returns the opposite section.
func (s Section) Other() Section {
	if s == Results {
		return Plans
	}
	return Results
}

func (s Section) String() string {
	if s == Results {
		return "results"
	}
	return "plans"
}

// TaskDraft is one task row: the main text and an optional detail.
type TaskDraft struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

// Blank reports whether the row has no main text.
func (t TaskDraft) Blank() bool {
	return strings.TrimSpace(t.Main) == ""
}

// String joins the row as it appears in the report.
func (t TaskDraft) String() string {
	return report.JoinTask(t.Main, t.Sub)
}

// ItemDraft is one customer block.
type ItemDraft struct {
	Customer string      `json:"customer"`
	Tasks    []TaskDraft `json:"tasks"`
}

// Blank reports whether the item has neither a customer nor any task text.
func (it ItemDraft) Blank() bool {
	if strings.TrimSpace(it.Customer) != "" {
		return false
	}
	for _, t := range it.Tasks {
		if !t.Blank() {
			return false
		}
	}
	return true
}

func (it ItemDraft) filledTasks() []TaskDraft {
	var out []TaskDraft
	for _, t := range it.Tasks {
		if !t.Blank() {
			out = append(out, TaskDraft{Main: strings.TrimSpace(t.Main), Sub: strings.TrimSpace(t.Sub)})
		}
	}
	return out
}

func blankItem() ItemDraft {
	return ItemDraft{Tasks: []TaskDraft{{}}}
}

// Form is the full editing state.
type Form struct {
	ResultDate string      `json:"resultDate"`
	PlanDate   string      `json:"planDate"`
	Results    []ItemDraft `json:"results"`
	Plans      []ItemDraft `json:"plans"`
}

// New returns an empty form dated yesterday (results) and today (plans).
func New(now time.Time) *Form {
	f := &Form{}
	f.Clear(now)
	return f
}

// Clear resets dates and both sections to a single blank item.
func (f *Form) Clear(now time.Time) {
	f.ResultDate, f.PlanDate = report.DefaultDates(now)
	f.Results = []ItemDraft{blankItem()}
	f.Plans = []ItemDraft{blankItem()}
}

// Clone returns a deep copy of the form.
func (f *Form) Clone() *Form {
	c := &Form{ResultDate: f.ResultDate, PlanDate: f.PlanDate}
	c.Results = cloneItems(f.Results)
	c.Plans = cloneItems(f.Plans)
	return c
}

func cloneItems(items []ItemDraft) []ItemDraft {
	out := make([]ItemDraft, len(items))
	for i, it := range items {
		out[i] = ItemDraft{Customer: it.Customer, Tasks: append([]TaskDraft(nil), it.Tasks...)}
	}
	return out
}

func (f *Form) list(sec Section) *[]ItemDraft {
	if sec == Results {
		return &f.Results
	}
	return &f.Plans
}

// Items returns the drafts of a section.
func (f *Form) Items(sec Section) []ItemDraft {
	return *f.list(sec)
}

// Item returns a pointer to item i for in-place editing.
func (f *Form) Item(sec Section, i int) (*ItemDraft, error) {
	items := *f.list(sec)
	if i < 0 || i >= len(items) {
		return nil, ErrOutOfRange
	}
	return &items[i], nil
}

// Task returns a pointer to task j of item i for in-place editing.
func (f *Form) Task(sec Section, i, j int) (*TaskDraft, error) {
	item, err := f.Item(sec, i)
	if err != nil {
		return nil, err
	}
	if j < 0 || j >= len(item.Tasks) {
		return nil, ErrOutOfRange
	}
	return &item.Tasks[j], nil
}

// AddItem appends a blank item and returns its index.
func (f *Form) AddItem(sec Section) int {
	l := f.list(sec)
	*l = append(*l, blankItem())
	return len(*l) - 1
}

// RemoveItem deletes item i. A section is never left empty: removing the
// last item leaves a fresh blank one.
func (f *Form) RemoveItem(sec Section, i int) error {
	l := f.list(sec)
	if i < 0 || i >= len(*l) {
		return ErrOutOfRange
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	if len(*l) == 0 {
		*l = []ItemDraft{blankItem()}
	}
	return nil
}

// AddTask appends a blank task row to item i and returns its index.
func (f *Form) AddTask(sec Section, i int) (int, error) {
	item, err := f.Item(sec, i)
	if err != nil {
		return 0, err
	}
	item.Tasks = append(item.Tasks, TaskDraft{})
	return len(item.Tasks) - 1, nil
}

// RemoveTask deletes task j of item i, leaving a blank row if it was the
// last one.
func (f *Form) RemoveTask(sec Section, i, j int) error {
	item, err := f.Item(sec, i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(item.Tasks) {
		return ErrOutOfRange
	}
	item.Tasks = append(item.Tasks[:j], item.Tasks[j+1:]...)
	if len(item.Tasks) == 0 {
		item.Tasks = []TaskDraft{{}}
	}
	return nil
}

// MoveItem shifts item i by delta positions within its section and returns
// its new index. Moves past either edge leave the order unchanged.
func (f *Form) MoveItem(sec Section, i, delta int) (int, error) {
	items := *f.list(sec)
	if i < 0 || i >= len(items) {
		return i, ErrOutOfRange
	}
	to := i + delta
	if to < 0 || to >= len(items) {
		return i, nil
	}
	items[i], items[to] = items[to], items[i]
	return to, nil
}

// MoveTask shifts task j of item i by delta within the item.
func (f *Form) MoveTask(sec Section, i, j, delta int) (int, error) {
	item, err := f.Item(sec, i)
	if err != nil {
		return j, err
	}
	if j < 0 || j >= len(item.Tasks) {
		return j, ErrOutOfRange
	}
	to := j + delta
	if to < 0 || to >= len(item.Tasks) {
		return j, nil
	}
	item.Tasks[j], item.Tasks[to] = item.Tasks[to], item.Tasks[j]
	return to, nil
}

// MoveItemAcross moves item i to the end of the other section, keeping only
// task rows that have main text. It returns the index in the target section.
func (f *Form) MoveItemAcross(sec Section, i int) (int, error) {
	item, err := f.Item(sec, i)
	if err != nil {
		return 0, err
	}
	tasks := item.filledTasks()
	customer := strings.TrimSpace(item.Customer)
	if customer == "" || len(tasks) == 0 {
		return 0, ErrNothingToMove
	}

	to := f.appendItem(sec.Other(), ItemDraft{Customer: customer, Tasks: tasks})
	if err := f.RemoveItem(sec, i); err != nil {
		return 0, err
	}
	return to, nil
}

// MoveTaskAcross moves task j of item i under the same customer in the other
// section, creating that customer's item when absent. It returns the item
// and task index in the target section.
func (f *Form) MoveTaskAcross(sec Section, i, j int) (int, int, error) {
	task, err := f.Task(sec, i, j)
	if err != nil {
		return 0, 0, err
	}
	if task.Blank() {
		return 0, 0, ErrNothingToMove
	}
	item, _ := f.Item(sec, i)
	customer := strings.TrimSpace(item.Customer)
	if customer == "" {
		return 0, 0, ErrNoCustomer
	}

	moved := TaskDraft{Main: strings.TrimSpace(task.Main), Sub: strings.TrimSpace(task.Sub)}
	ti, tj := f.appendTask(sec.Other(), customer, moved)

	if err := f.RemoveTask(sec, i, j); err != nil {
		return 0, 0, err
	}
	return ti, tj, nil
}

// CopyItemToPlans copies result item i into plans with every detail marked
// as continued.
func (f *Form) CopyItemToPlans(i int) (int, error) {
	item, err := f.Item(Results, i)
	if err != nil {
		return 0, err
	}
	tasks := item.filledTasks()
	customer := strings.TrimSpace(item.Customer)
	if customer == "" || len(tasks) == 0 {
		return 0, ErrNothingToMove
	}
	for k := range tasks {
		tasks[k].Sub = continued(tasks[k].Sub)
	}
	return f.appendItem(Plans, ItemDraft{Customer: customer, Tasks: tasks}), nil
}

// CopyTaskToPlans copies result task j of item i under the same customer in
// plans, marking its detail as continued.
func (f *Form) CopyTaskToPlans(i, j int) (int, int, error) {
	task, err := f.Task(Results, i, j)
	if err != nil {
		return 0, 0, err
	}
	if task.Blank() {
		return 0, 0, ErrNothingToMove
	}
	item, _ := f.Item(Results, i)
	customer := strings.TrimSpace(item.Customer)
	if customer == "" {
		return 0, 0, ErrNoCustomer
	}

	copied := TaskDraft{Main: strings.TrimSpace(task.Main), Sub: continued(task.Sub)}
	ti, tj := f.appendTask(Plans, customer, copied)
	return ti, tj, nil
}

func continued(sub string) string {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return ContinuedMark
	}
	return sub + "・" + ContinuedMark
}

// CarryOver advances the form by one day: filled plans become results, the
// result date takes the plan date, the plan date moves to the following day
// and plans reset to one blank item. It reports false and changes nothing
// when plans have no content.
func (f *Form) CarryOver() bool {
	plans := f.Extract(Plans)
	if len(plans) == 0 {
		return false
	}

	f.Results = draftsFromItems(plans)
	f.ResultDate = f.PlanDate
	f.PlanDate = report.NextDay(f.PlanDate)
	f.Plans = []ItemDraft{blankItem()}
	return true
}

// appendItem adds item at the end of sec. A section holding only a blank
// placeholder has it replaced instead.
func (f *Form) appendItem(sec Section, item ItemDraft) int {
	l := f.list(sec)
	if len(*l) == 1 && (*l)[0].Blank() {
		(*l)[0] = item
		return 0
	}
	*l = append(*l, item)
	return len(*l) - 1
}

func (f *Form) appendTask(sec Section, customer string, task TaskDraft) (int, int) {
	items := *f.list(sec)
	for i := range items {
		if strings.TrimSpace(items[i].Customer) == customer {
			items[i].Tasks = append(items[i].Tasks, task)
			return i, len(items[i].Tasks) - 1
		}
	}
	return f.appendItem(sec, ItemDraft{Customer: customer, Tasks: []TaskDraft{task}}), 0
}

// Extract returns the filled items of a section in report form: customers
// and tasks are trimmed, tasks without main text are dropped and items left
// with no customer or no tasks are dropped.
func (f *Form) Extract(sec Section) []report.Item {
	items := []report.Item{}
	for _, it := range *f.list(sec) {
		customer := strings.TrimSpace(it.Customer)
		if customer == "" {
			continue
		}
		var tasks []string
		for _, t := range it.filledTasks() {
			tasks = append(tasks, t.String())
		}
		if len(tasks) == 0 {
			continue
		}
		items = append(items, report.Item{Customer: customer, Tasks: tasks})
	}
	return items
}

// Empty reports whether neither section has anything to report.
func (f *Form) Empty() bool {
	return len(f.Extract(Results)) == 0 && len(f.Extract(Plans)) == 0
}

// Render produces the text report for the current state.
func (f *Form) Render() string {
	return report.Render(f.ResultDate, f.PlanDate, f.Extract(Results), f.Extract(Plans))
}

// Load replaces the sections with the given report content. Dates are only
// taken when present; an empty section becomes a single blank item.
func (f *Form) Load(p *report.Parsed) {
	if p.ResultDate != "" {
		f.ResultDate = p.ResultDate
	}
	if p.PlanDate != "" {
		f.PlanDate = p.PlanDate
	}
	f.Results = draftsFromItems(p.Results)
	f.Plans = draftsFromItems(p.Plans)
}

func draftsFromItems(items []report.Item) []ItemDraft {
	if len(items) == 0 {
		return []ItemDraft{blankItem()}
	}
	out := make([]ItemDraft, 0, len(items))
	for _, it := range items {
		d := ItemDraft{Customer: it.Customer}
		for _, task := range it.Tasks {
			main, sub := report.SplitTask(task)
			d.Tasks = append(d.Tasks, TaskDraft{Main: main, Sub: sub})
		}
		if len(d.Tasks) == 0 {
			d.Tasks = []TaskDraft{{}}
		}
		out = append(out, d)
	}
	return out
}
