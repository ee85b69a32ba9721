package ui

import (
	"bytes"
	"testing"
	"time"

	"nippo/internal/form"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func TestE2E_WriteAndSaveReport(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)

	tm := teatest.NewTestModel(t, NewApp(store, nil), teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("EDITOR"))
	}, teatest.WithDuration(3*time.Second))

	// Customer on the first results row.
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Type("Acme")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// Its task, leaving the detail empty.
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Type("Design")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Saved"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second))

	app, ok := fm.(*App)
	if !ok {
		t.Fatalf("final model is %T, want *App", fm)
	}
	if got := app.form.Extract(form.Results); len(got) != 1 || got[0].Customer != "Acme" || got[0].Tasks[0] != "Design" {
		t.Errorf("results = %+v, want Acme / Design", got)
	}

	reports, err := store.Reports()
	if err != nil {
		t.Fatalf("Reports() error = %v", err)
	}
	if len(reports) != 1 || reports[0].Markdown != app.form.Render() {
		t.Errorf("Reports() = %+v, want the rendered form", reports)
	}
}
