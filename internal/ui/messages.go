package ui

import (
	"time"

	"nippo/internal/form"
	"nippo/internal/history"
	"nippo/internal/notify"
	"nippo/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
)

// Storage results come back to Update as these messages so that the event
// loop never blocks on disk I/O.

// =============================================================================
// Storage Messages
// =============================================================================

// loadedMsg is sent once the history, saved reports and last session are read.
type loadedMsg struct {
	history *history.History
	reports []storage.Report
	session *form.Session
	err     error
}

// savedMsg is sent when a report has been saved and usage recorded.
type savedMsg struct {
	report  *storage.Report
	history *history.History
	reports []storage.Report
	err     error
}

// sessionSavedMsg is sent after the form snapshot is written.
type sessionSavedMsg struct {
	err error
}

// selectionSavedMsg is sent after a suggestion pick updates selectedAt.
type selectionSavedMsg struct {
	history *history.History
	err     error
}

// reportDeletedMsg is sent when a saved report is removed.
type reportDeletedMsg struct {
	id      string
	reports []storage.Report
	err     error
}

// themeSavedMsg is sent after the theme preference is persisted.
type themeSavedMsg struct {
	theme storage.Theme
	err   error
}

// copiedMsg is sent when the clipboard write finishes.
type copiedMsg struct {
	err error
}

// =============================================================================
// UI Messages
// =============================================================================

// formChangedMsg tells the app the form was edited.
type formChangedMsg struct{}

// statusMsg asks the app to show a toast in the status bar.
type statusMsg struct {
	text  string
	level notify.Level
}

// statusExpiredMsg clears the status bar if no newer message replaced it.
type statusExpiredMsg struct {
	seq int
}

// confirmMsg asks the app to confirm a destructive action before running it.
type confirmMsg struct {
	title  string
	body   string
	action func() tea.Cmd
}

// loadReportMsg asks the app to replace the form with a saved report.
type loadReportMsg struct {
	report storage.Report
}

// clockMsg refreshes the title bar clock.
type clockMsg time.Time
