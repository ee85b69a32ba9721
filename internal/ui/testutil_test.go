package ui

import (
	"testing"
	"time"

	"nippo/internal/config"
	"nippo/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var testNow = time.Date(2024, 1, 16, 18, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
// It disables colors so output can be matched as plain text.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStorage creates an in-memory Storage with a fixed clock.
func createTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store := storage.New(storage.NewMemoryKV())
	store.SetNowFunc(func() time.Time { return testNow })
	t.Cleanup(func() { store.Close() })
	return store
}

// createTestStyles creates a default light Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{}, storage.ThemeLight)
}

// createTestApp builds an app sized for the wide layout with its initial
// load applied.
func createTestApp(t *testing.T, store *storage.Storage, cfg *AppConfig) *App {
	t.Helper()
	setupTest(t)
	if cfg == nil {
		cfg = &AppConfig{
			Keys:                  &config.KeysConfig{},
			ConfirmDeletions:      true,
			NarrowLayoutThreshold: 100,
		}
	}
	app := NewApp(store, cfg)
	app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	drain(t, app, loadCmd(store))
	return app
}

// keyMsg builds a key message from its string form.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "shift+up":
		return tea.KeyMsg{Type: tea.KeyShiftUp}
	case "shift+down":
		return tea.KeyMsg{Type: tea.KeyShiftDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends each key to the app and drains the resulting commands.
func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := app.Update(keyMsg(k))
		drain(t, app, cmd)
	}
}

// typeText sends s as a single runes message, the way a paste arrives.
func typeText(t *testing.T, app *App, s string) {
	t.Helper()
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	drain(t, app, cmd)
}

// drain runs cmd and feeds every resulting message back into the app until
// nothing is left. Timers (clock, status expiry, cursor blink) do not fire
// within cmdTimeout and are dropped.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for n := 0; len(queue) > 0; n++ {
		if n > 200 {
			t.Fatal("drain: too many commands")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok {
			continue
		}
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		case tea.QuitMsg:
		default:
			_, next := app.Update(m)
			queue = append(queue, next)
		}
	}
}

const cmdTimeout = 100 * time.Millisecond

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, msg != nil
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

// stubClipboard captures clipboard writes for the duration of a test.
func stubClipboard(t *testing.T) *string {
	t.Helper()
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })
	return &got
}
