// Package history keeps the customer and task usage records that feed
// autocomplete suggestions.
package history

import (
	"time"

	"nippo/internal/report"
	"nippo/internal/suggest"
)

// CustomerEntry records how often and how recently a customer name was used.
type CustomerEntry struct {
	Name       string     `json:"name"`
	UseCount   int        `json:"useCount"`
	LastUsed   time.Time  `json:"lastUsed"`
	SelectedAt *time.Time `json:"selectedAt,omitempty"`
}

func (c CustomerEntry) Key() string { return c.Name }
func (c CustomerEntry) Uses() int   { return c.UseCount }

// RecencyAt returns SelectedAt, falling back to LastUsed.
func (c CustomerEntry) RecencyAt() time.Time {
	if c.SelectedAt != nil {
		return *c.SelectedAt
	}
	return c.LastUsed
}

// TaskEntry records usage of a task's main text (detail stripped).
type TaskEntry struct {
	Text       string     `json:"text"`
	UseCount   int        `json:"useCount"`
	LastUsed   time.Time  `json:"lastUsed"`
	SelectedAt *time.Time `json:"selectedAt,omitempty"`
}

func (t TaskEntry) Key() string { return t.Text }
func (t TaskEntry) Uses() int   { return t.UseCount }

// RecencyAt returns SelectedAt, falling back to LastUsed.
func (t TaskEntry) RecencyAt() time.Time {
	if t.SelectedAt != nil {
		return *t.SelectedAt
	}
	return t.LastUsed
}

// History holds both suggestion lists.
type History struct {
	Customers []CustomerEntry `json:"customers"`
	Tasks     []TaskEntry     `json:"tasks"`
}

// RecordUsage bumps UseCount and LastUsed for every customer and task main
// text in items. Entries seen for the first time are created with SelectedAt
// set to now so that they appear in the empty-prefix list. SelectedAt on
// existing entries is left alone.
func RecordUsage(h *History, items []report.Item, now time.Time) {
	for _, item := range items {
		ci := h.customerIndex(item.Customer)
		if ci < 0 {
			selected := now
			h.Customers = append(h.Customers, CustomerEntry{Name: item.Customer, LastUsed: now, SelectedAt: &selected})
			ci = len(h.Customers) - 1
		}
		h.Customers[ci].UseCount++
		h.Customers[ci].LastUsed = now

		for _, task := range item.Tasks {
			main := report.MainText(task)
			if main == "" {
				continue
			}
			ti := h.taskIndex(main)
			if ti < 0 {
				selected := now
				h.Tasks = append(h.Tasks, TaskEntry{Text: main, LastUsed: now, SelectedAt: &selected})
				ti = len(h.Tasks) - 1
			}
			h.Tasks[ti].UseCount++
			h.Tasks[ti].LastUsed = now
		}
	}
}

// MarkCustomerSelected sets SelectedAt for the customer with exactly this
// name. It reports whether an entry was found.
func (h *History) MarkCustomerSelected(name string, now time.Time) bool {
	i := h.customerIndex(name)
	if i < 0 {
		return false
	}
	h.Customers[i].SelectedAt = &now
	return true
}

// MarkTaskSelected sets SelectedAt for the task with exactly this text.
func (h *History) MarkTaskSelected(text string, now time.Time) bool {
	i := h.taskIndex(text)
	if i < 0 {
		return false
	}
	h.Tasks[i].SelectedAt = &now
	return true
}

// Customer returns the entry for name.
func (h *History) Customer(name string) (CustomerEntry, bool) {
	if i := h.customerIndex(name); i >= 0 {
		return h.Customers[i], true
	}
	return CustomerEntry{}, false
}

// Task returns the entry for text.
func (h *History) Task(text string) (TaskEntry, bool) {
	if i := h.taskIndex(text); i >= 0 {
		return h.Tasks[i], true
	}
	return TaskEntry{}, false
}

// CustomerSuggestions ranks customer names for the autocomplete popup.
func (h *History) CustomerSuggestions(prefix string) []string {
	return suggest.Suggest(h.Customers, prefix)
}

// TaskSuggestions ranks task main texts for the autocomplete popup.
func (h *History) TaskSuggestions(prefix string) []string {
	return suggest.Suggest(h.Tasks, prefix)
}

// Stats returns the number of customer and task entries.
func (h *History) Stats() (customers, tasks int) {
	return len(h.Customers), len(h.Tasks)
}

func (h *History) customerIndex(name string) int {
	for i := range h.Customers {
		if h.Customers[i].Name == name {
			return i
		}
	}
	return -1
}

func (h *History) taskIndex(text string) int {
	for i := range h.Tasks {
		if h.Tasks[i].Text == text {
			return i
		}
	}
	return -1
}

// normalize guarantees non-nil slices so that encoded JSON carries [] rather
// than null.
func (h *History) normalize() {
	if h.Customers == nil {
		h.Customers = []CustomerEntry{}
	}
	if h.Tasks == nil {
		h.Tasks = []TaskEntry{}
	}
}
