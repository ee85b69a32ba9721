package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nippo/internal/config"
	"nippo/internal/fsutil"
	"nippo/internal/logging"
	"nippo/internal/notify"
	"nippo/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// loadConfig loads the config file and environment, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openStorage opens the configured backend in the data directory.
func openStorage(cfg *config.Config) *storage.Storage {
	store, err := storage.Open(cfg.GetDataDir(), cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	return store
}

// desktopNotifier builds the notifier for cfg. Messages also go to w when it
// is non-nil. An empty title keeps the default.
func desktopNotifier(cfg *config.Config, w io.Writer, title string) notify.Notifier {
	var opts []notify.Option
	if title != "" {
		opts = append(opts, notify.WithTitle(title))
	}
	if cfg.Notifications.Sound {
		opts = append(opts, notify.WithSound())
	}
	return notify.New(cfg.Notifications.Enabled, w, opts...)
}

func debugLogPath(cfg *config.Config) string {
	return filepath.Join(cfg.GetDataDir(), "debug.log")
}

// startLogging routes log output away from the alternate screen. In debug
// mode (--debug or NIPPO_DEBUG) it goes to debug.log and the returned file
// must be closed; otherwise it is dropped and the file is nil.
func startLogging(cfg *config.Config, debug bool) (*os.File, error) {
	if debug {
		logging.SetDebug(true)
	}
	if !logging.DebugEnabled() {
		logging.SetOutput(io.Discard)
		return nil, nil
	}
	return tea.LogToFile(debugLogPath(cfg), "nippo")
}

// confirm asks a yes/no question on the terminal. Aborting the prompt
// (ctrl+c, esc) counts as no.
func confirm(title, description string) bool {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false
		}
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	return ok
}

// writeOutput writes data to path, creating parent directories as needed.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}
