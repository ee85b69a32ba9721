// This file contains the settings subcommand handler.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nippo/internal/report"
)

// settingsHelpText is the help message for the settings subcommand.
const settingsHelpText = `nippo settings - Move customer and task suggestions between machines

USAGE:
    nippo settings export [FILE]
    nippo settings import [OPTIONS] FILE

OPTIONS:
    -y, --yes    Skip the confirmation prompt (import)
    -h, --help   Show this help message

DESCRIPTION:
    Settings hold the customer and task names the editor suggests, with
    how often and when each was last used. The JSON format is shared with
    the web version of the report editor.

    export without FILE writes business-report-settings-TODAY.json into
    the export directory.

    import validates the whole file first; nothing is changed if any
    entry is malformed. Saved reports are kept.

EXAMPLES:
    nippo settings export
    nippo settings import business-report-settings-2024-01-15.json
`

// runSettings handles the "nippo settings" subcommand.
func runSettings(args []string) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)

	yesFlag := fs.Bool("yes", false, "skip confirmation prompt")
	fs.BoolVar(yesFlag, "y", false, "skip confirmation prompt (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, settingsHelpText)
	}

	// Flags may follow the action: "settings import --yes FILE".
	action := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action, args = args[0], args[1:]
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag || action == "" {
		fmt.Print(settingsHelpText)
		os.Exit(0)
	}

	switch action {
	case "export":
		if fs.NArg() > 1 {
			fmt.Fprintln(os.Stderr, "Error: expected at most one file")
			os.Exit(1)
		}
		exportSettings(fs.Arg(0))
	case "import":
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Error: expected exactly one file")
			os.Exit(1)
		}
		if !strings.EqualFold(filepath.Ext(fs.Arg(0)), ".json") {
			fmt.Fprintf(os.Stderr, "Error: settings files are JSON, got %s\n", fs.Arg(0))
			os.Exit(1)
		}
		runImport(importArgs(fs.Arg(0), *yesFlag))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown settings command %q\n\n", action)
		fs.Usage()
		os.Exit(1)
	}
}

// importArgs forwards "settings import" to the import subcommand, which
// picks the settings importer by extension.
func importArgs(path string, yes bool) []string {
	if yes {
		return []string{"--yes", path}
	}
	return []string{path}
}

func settingsFileName(now time.Time) string {
	return fmt.Sprintf("business-report-settings-%s.json", report.FormatDate(now))
}

func exportSettings(path string) {
	cfg := loadConfig()
	store := openStorage(cfg)
	defer store.Close()

	data, err := store.ExportSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting settings: %v\n", err)
		os.Exit(1)
	}

	path = outputPath(path, cfg.GetExportDir(), settingsFileName(store.Now()), path == "")
	if err := writeOutput(path, data); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing settings: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Settings written to %s\n", path)
}
