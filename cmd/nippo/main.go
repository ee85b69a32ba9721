// Package main is the entry point for the nippo application.
// It loads configuration, opens storage, and starts the TUI.
package main

import (
	"flag"
	"fmt"
	"os"

	"nippo/internal/ui"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const helpText = `nippo - 業務報告 (daily business report) editor for your terminal

USAGE:
    nippo [OPTIONS]
    nippo <command> [ARGS]

COMMANDS:
    export             Print the latest saved report
    export --id DATE   Print the report saved for DATE (YYYY-MM-DD)
    export --all       Print every saved report, newest first
    import FILE        Load a report (.md, .txt) or settings file (.json)
    history            List saved reports
    history --delete ID  Delete a saved report
    settings export FILE  Write customer and task history as JSON
    settings import FILE  Replace customer and task history from JSON
    backup             Create a backup of all data
    backup --list      List available backups
    restore NAME       Restore from a specific backup
    restore --latest   Restore from the most recent backup

OPTIONS:
    --debug            Write a debug log to ~/.nippo/debug.log
                       (same as setting NIPPO_DEBUG)
    -h, --help         Show this help message
    -v, --version      Show version information

DESCRIPTION:
    nippo edits the two-section daily report used for end-of-day updates:
    what was done (実績) and what comes next (以降の予定), grouped by
    customer. Customer and task names you have used before are suggested
    as you type, ranked by how often and how recently you picked them.

REPORT FORMAT:
    - 2024/01/15実績
        - Acme Corp
            - Design(review)
    - 2024/01/16以降の予定
        - Acme Corp
            - Implementation

KEYBINDINGS:
    Global:
        Tab, 1-3     Switch panes
        Ctrl+S       Save report
        y            Copy report to clipboard
        n            Move plans to results for the next day
        Ctrl+L       Clear the form
        T / r        Toggle theme / markdown preview
        ?            Show help overlay
        Ctrl+C       Quit

    Editor:
        j/k, ↓/↑     Navigate
        Enter, e     Edit the selected line
        a / t        Add customer / task
        x            Delete
        J/K          Move down/up
        m            Move between results and plans
        c            Copy to plans

DATA STORAGE:
    Data lives in ~/.nippo/ (override with NIPPO_DATA_DIR):
        data.json     - Saved reports and suggestion history
        session.json  - The form as you left it
        theme.json    - Light or dark
    Set storage: sqlite in the config file to keep everything in nippo.db.

CONFIGURATION:
    Optional config file: ~/.config/nippo/config.yaml
    Environment variables may also be set in ~/.config/nippo/.env or ./.env.

EXAMPLES:
    # Start the editor
    nippo

    # Copy the latest report to the clipboard
    nippo export --clipboard

    # Save every report to a file
    nippo export --all -o reports.md

    # Move your suggestions to another machine
    nippo settings export settings.json
    nippo settings import settings.json

    # Restore from a backup
    nippo restore --latest
`

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "export":
			runExport(os.Args[2:])
			return
		case "import":
			runImport(os.Args[2:])
			return
		case "history":
			runHistory(os.Args[2:])
			return
		case "settings":
			runSettings(os.Args[2:])
			return
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		}
	}

	showVersion := flag.Bool("version", false, "show version information")
	flag.BoolVar(showVersion, "v", false, "show version information (shorthand)")

	showHelp := flag.Bool("help", false, "show help message")
	flag.BoolVar(showHelp, "h", false, "show help message (shorthand)")

	debug := flag.Bool("debug", false, "write debug log to the data directory")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpText)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("nippo version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Print(helpText)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown arguments: %v\n\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	store := openStorage(cfg)
	defer store.Close()

	logFile, err := startLogging(cfg, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := ui.Run(store, ui.AppConfigFrom(cfg, desktopNotifier(cfg, nil, ""))); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}
