package ui

import (
	"strings"

	"nippo/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// helpKey is the first key of a binding, used in help text.
func helpKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func binding(custom string, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey(keys), desc))
}

// =============================================================================
// Global Keys (available outside text input)
// =============================================================================

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit         key.Binding
	Help         key.Binding
	NextPane     key.Binding
	Pane1        key.Binding
	Pane2        key.Binding
	Pane3        key.Binding
	Save         key.Binding
	Copy         key.Binding
	NextDay      key.Binding
	Clear        key.Binding
	ToggleTheme  key.Binding
	ToggleRender key.Binding
}

// DefaultGlobalKeyMap returns the default global key bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return NewGlobalKeyMap(&config.KeysConfig{})
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:         binding(cfg.Quit, "quit", "ctrl+c"),
		Help:         binding(cfg.Help, "help", "?"),
		NextPane:     binding(cfg.NextPane, "next pane", "tab"),
		Pane1:        binding(cfg.Pane1, "editor", "1"),
		Pane2:        binding(cfg.Pane2, "preview", "2"),
		Pane3:        binding(cfg.Pane3, "history", "3"),
		Save:         binding(cfg.Save, "save", "ctrl+s"),
		Copy:         binding(cfg.Copy, "copy", "y"),
		NextDay:      binding(cfg.NextDay, "next day", "n"),
		Clear:        binding(cfg.Clear, "clear", "ctrl+l"),
		ToggleTheme:  binding(cfg.ToggleTheme, "theme", "T"),
		ToggleRender: binding(cfg.ToggleRender, "render", "r"),
	}
}

// =============================================================================
// Navigation Keys (shared by list-based panes)
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Up, "k", "up")...),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Down, "j", "down")...),
			key.WithHelp("j/↓", "down"),
		),
		Top:    binding(cfg.Top, "top", "g", "home"),
		Bottom: binding(cfg.Bottom, "bottom", "G", "end"),
	}
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode. Up and down move through the
// suggestion popup.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
	Prev    key.Binding
	Next    key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: binding(cfg.Confirm, "confirm", "enter"),
		Cancel:  binding(cfg.Cancel, "cancel", "esc"),
		Prev: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous suggestion"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next suggestion"),
		),
	}
}

// =============================================================================
// Editor Pane Keys
// =============================================================================

// EditorKeyMap defines keys for the editor pane.
type EditorKeyMap struct {
	Edit        key.Binding
	AddItem     key.Binding
	AddTask     key.Binding
	Delete      key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	MoveAcross  key.Binding
	CopyToPlans key.Binding
	NavigationKeyMap
}

// DefaultEditorKeyMap returns the default editor key bindings.
func DefaultEditorKeyMap() EditorKeyMap {
	return NewEditorKeyMap(&config.KeysConfig{})
}

// NewEditorKeyMap creates editor key bindings from config.
func NewEditorKeyMap(cfg *config.KeysConfig) EditorKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return EditorKeyMap{
		Edit:             binding(cfg.Edit, "edit", "enter", "e"),
		AddItem:          binding(cfg.AddItem, "add customer", "a"),
		AddTask:          binding(cfg.AddTask, "add task", "t"),
		Delete:           binding(cfg.Delete, "delete", "x", "delete"),
		MoveUp:           binding(cfg.MoveUp, "move up", "K", "shift+up"),
		MoveDown:         binding(cfg.MoveDown, "move down", "J", "shift+down"),
		MoveAcross:       binding(cfg.MoveAcross, "move to other section", "m"),
		CopyToPlans:      binding(cfg.CopyToPlans, "copy to plans", "c"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the editor pane (implements help.KeyMap).
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.AddItem, k.AddTask, k.Delete}
}

// FullHelp returns the full help for the editor pane (implements help.KeyMap).
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Edit, k.AddItem, k.AddTask, k.Delete},
		{k.MoveUp, k.MoveDown, k.MoveAcross, k.CopyToPlans},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// History Pane Keys
// =============================================================================

// HistoryKeyMap defines keys for the saved-report list.
type HistoryKeyMap struct {
	Load   key.Binding
	Delete key.Binding
	NavigationKeyMap
}

// NewHistoryKeyMap creates history pane key bindings from config.
func NewHistoryKeyMap(cfg *config.KeysConfig) HistoryKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return HistoryKeyMap{
		Load:             binding(cfg.Load, "load", "enter", "l"),
		Delete:           binding(cfg.Delete, "delete", "x", "delete"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the history pane (implements help.KeyMap).
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Load, k.Delete, k.Down}
}

// FullHelp returns the full help for the history pane (implements help.KeyMap).
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Load, k.Delete},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
