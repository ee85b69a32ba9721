// Package config handles configuration loading and defaults for nippo.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/nippo/config.yaml), then overridden by environment variables,
// optionally seeded from a .env file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"nippo/internal/fsutil"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDataDir = "NIPPO_DATA_DIR"
	EnvStorage = "NIPPO_STORAGE"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.nippo)
	DataDir string `yaml:"data_dir,omitempty"`

	// Storage selects the backend: "file" (JSON files) or "sqlite"
	Storage string `yaml:"storage,omitempty"`

	// Theme customizes the accent colors
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty"`

	// Notifications configures desktop notifications
	Notifications NotificationConfig `yaml:"notifications,omitempty"`

	// Export configures where exported files are written
	Export ExportConfig `yaml:"export,omitempty"`
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	// Enabled sends save/copy/export results to the desktop as well
	Enabled bool `yaml:"enabled,omitempty"`

	// Sound enables notification sounds
	Sound bool `yaml:"sound,omitempty"`
}

// ExportConfig defines export defaults.
type ExportConfig struct {
	// Dir is the directory exported reports are written to
	Dir string `yaml:"dir,omitempty"`
}

// ThemeConfig defines color overrides. The light/dark scheme itself is a
// stored preference toggled from the app.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit     string `yaml:"quit,omitempty"`      // default: "ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextPane string `yaml:"next_pane,omitempty"` // default: "tab"
	Pane1    string `yaml:"pane_1,omitempty"`    // default: "1"
	Pane2    string `yaml:"pane_2,omitempty"`    // default: "2"
	Pane3    string `yaml:"pane_3,omitempty"`    // default: "3"

	// Navigation keys
	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g,home"
	Bottom string `yaml:"bottom,omitempty"` // default: "G,end"

	// Editing keys
	Edit        string `yaml:"edit,omitempty"`          // default: "enter,e"
	AddItem     string `yaml:"add_item,omitempty"`      // default: "a"
	AddTask     string `yaml:"add_task,omitempty"`      // default: "t"
	Delete      string `yaml:"delete,omitempty"`        // default: "x,delete"
	MoveUp      string `yaml:"move_up,omitempty"`       // default: "K,shift+up"
	MoveDown    string `yaml:"move_down,omitempty"`     // default: "J,shift+down"
	MoveAcross  string `yaml:"move_across,omitempty"`   // default: "m"
	CopyToPlans string `yaml:"copy_to_plans,omitempty"` // default: "c"

	// Report keys
	Save         string `yaml:"save,omitempty"`          // default: "ctrl+s"
	Copy         string `yaml:"copy,omitempty"`          // default: "y"
	NextDay      string `yaml:"next_day,omitempty"`      // default: "n"
	Clear        string `yaml:"clear,omitempty"`         // default: "ctrl+l"
	Load         string `yaml:"load,omitempty"`          // default: "enter,l"
	ToggleTheme  string `yaml:"toggle_theme,omitempty"`  // default: "T"
	ToggleRender string `yaml:"toggle_render,omitempty"` // default: "r"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions shows confirmation dialogs before deleting items
	ConfirmDeletions bool `yaml:"confirm_deletions,omitempty"` // default: true

	// RenderPreview renders the preview pane as markdown instead of raw text
	RenderPreview bool `yaml:"render_preview,omitempty"` // default: false

	// NarrowLayoutThreshold is the terminal width below which to use stacked layout
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 100
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: "file",
		Theme: ThemeConfig{
			Primary: "#2563EB", // Blue
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			RenderPreview:         false,
			NarrowLayoutThreshold: 100,
		},
		Notifications: NotificationConfig{
			Enabled: false,
			Sound:   false,
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nippo"
	}
	return filepath.Join(home, ".nippo")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nippo")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "nippo")
}

// Path returns the path to the config file.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults, then applies
// environment overrides. If no config file exists, defaults are used.
func Load() (*Config, error) {
	cfg := Default()

	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.mergeYAML(data); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	loadDotEnv()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeYAML(data []byte) error {
	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return err
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	c.mergeFromYAML(&userCfg, &doc)
	return nil
}

// loadDotEnv seeds the environment from .env files. Variables that are
// already set win, and missing files are ignored.
func loadDotEnv() {
	paths := []string{".env"}
	if dir := configDir(); dir != "" {
		paths = append([]string{filepath.Join(dir, ".env")}, paths...)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorage)); v != "" {
		c.Storage = v
	}
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.Storage != "" {
		c.Storage = other.Storage
	}

	if other.Theme.Primary != "" {
		c.Theme.Primary = other.Theme.Primary
	}
	if other.Theme.Accent != "" {
		c.Theme.Accent = other.Theme.Accent
	}
	if other.Theme.Muted != "" {
		c.Theme.Muted = other.Theme.Muted
	}

	dst, src := c.Keys.bindings(), other.Keys.bindings()
	for i := range dst {
		if *src[i] != "" {
			*dst[i] = *src[i]
		}
	}

	if other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}

	if other.Export.Dir != "" {
		c.Export.Dir = other.Export.Dir
	}
}

// bindings lists every key field in a fixed order.
func (k *KeysConfig) bindings() []*string {
	return []*string{
		&k.Quit, &k.Help, &k.NextPane, &k.Pane1, &k.Pane2, &k.Pane3,
		&k.Up, &k.Down, &k.Top, &k.Bottom,
		&k.Edit, &k.AddItem, &k.AddTask, &k.Delete, &k.MoveUp, &k.MoveDown, &k.MoveAcross, &k.CopyToPlans,
		&k.Save, &k.Copy, &k.NextDay, &k.Clear, &k.Load, &k.ToggleTheme, &k.ToggleRender,
		&k.Confirm, &k.Cancel,
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a node tree, booleans keep their defaults.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "ux", "render_preview") {
		c.UX.RenderPreview = other.UX.RenderPreview
	}
	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notifications.Enabled = other.Notifications.Enabled
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notifications.Sound = other.Notifications.Sound
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return expandHome(c.DataDir)
}

// GetExportDir returns the resolved export directory path.
func (c *Config) GetExportDir() string {
	if c.Export.Dir == "" {
		return "."
	}
	return expandHome(c.Export.Dir)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
