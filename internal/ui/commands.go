package ui

import (
	"time"

	"nippo/internal/form"
	"nippo/internal/logging"
	"nippo/internal/notify"
	"nippo/internal/storage"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Intervals for the title bar clock and status toasts.
const (
	clockInterval = time.Minute
	statusTTL     = 3 * time.Second
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// =============================================================================
// Storage Commands
// =============================================================================

// loadCmd reads everything the app needs at startup.
func loadCmd(store *storage.Storage) tea.Cmd {
	return func() tea.Msg {
		d, err := store.LoadData()
		return loadedMsg{
			history: &d.History,
			reports: d.Reports,
			session: store.LoadSession(),
			err:     err,
		}
	}
}

// saveReportCmd saves a snapshot of the form as a report.
func saveReportCmd(store *storage.Storage, f *form.Form) tea.Cmd {
	return func() tea.Msg {
		r, err := store.SaveReport(f)
		if err != nil {
			return savedMsg{err: err}
		}
		d, err := store.LoadData()
		return savedMsg{report: r, history: &d.History, reports: d.Reports, err: err}
	}
}

// saveSessionCmd persists a snapshot of the form.
func saveSessionCmd(store *storage.Storage, f *form.Form) tea.Cmd {
	return func() tea.Msg {
		return sessionSavedMsg{err: store.SaveSession(f)}
	}
}

// clearSessionCmd removes the saved session.
func clearSessionCmd(store *storage.Storage) tea.Cmd {
	return func() tea.Msg {
		return sessionSavedMsg{err: store.ClearSession()}
	}
}

// selectCmd records that a suggestion was picked.
func selectCmd(store *storage.Storage, f field, value string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if f == fieldCustomer {
			err = store.SelectCustomer(value)
		} else {
			err = store.SelectTask(value)
		}
		if err != nil {
			return selectionSavedMsg{err: err}
		}
		h, err := store.History()
		return selectionSavedMsg{history: h, err: err}
	}
}

// deleteReportCmd removes a saved report.
func deleteReportCmd(store *storage.Storage, id string) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteReport(id); err != nil {
			return reportDeletedMsg{id: id, err: err}
		}
		reports, err := store.Reports()
		return reportDeletedMsg{id: id, reports: reports, err: err}
	}
}

// setThemeCmd persists the theme preference.
func setThemeCmd(store *storage.Storage, theme storage.Theme) tea.Cmd {
	return func() tea.Msg {
		return themeSavedMsg{theme: theme, err: store.SetTheme(theme)}
	}
}

// =============================================================================
// Side Effects
// =============================================================================

// copyCmd writes text to the system clipboard.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: writeClipboard(text)}
	}
}

// notifyCmd forwards a message to the desktop notifier. Failures are only
// logged since the status bar already shows the message.
func notifyCmd(n notify.Notifier, level notify.Level, text string) tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		if err := n.Notify(level, text); err != nil {
			logging.Debug("ui", "notify: %v", err)
		}
		return nil
	}
}

// =============================================================================
// Timers and Helpers
// =============================================================================

// clockCmd ticks on each wall-clock minute.
func clockCmd() tea.Cmd {
	return tea.Every(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func statusExpireCmd(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

func changedCmd() tea.Msg {
	return formChangedMsg{}
}

func statusCmd(text string, level notify.Level) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, level: level}
	}
}
