// This file contains the restore subcommand handler.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"nippo/internal/backup"
	"nippo/internal/storage"
)

// restoreHelpText is the help message for the restore subcommand.
const restoreHelpText = `nippo restore - Put back reports and suggestions from a backup

USAGE:
    nippo restore [OPTIONS] NAME
    nippo restore [OPTIONS] --latest

OPTIONS:
    --latest       Use the most recent backup
    -n, --dry-run  Show what the backup would replace and stop
    -y, --yes      Do not ask before replacing data
    -h, --help     Show this help message

DESCRIPTION:
    A backup can hold any of:
        data.json     saved reports and the customer/task suggestion history
        session.json  the form as it was left in the editor
        theme.json    light or dark
        nippo.db      all of the above when storage is sqlite

    Only the files in the backup are replaced. A form you are working on
    survives a restore from a backup taken without one. The current data
    is backed up first, so a restore can itself be undone with
    'nippo restore --latest'.

    Without NAME or --latest the available backups are listed.

EXAMPLES:
    # See what yesterday's backup holds
    nippo restore --dry-run 2024-01-15_183022_000

    # Undo the last restore, or recover after a bad import
    nippo restore --latest
`

// restoreParts names what each backed-up file holds, in display order.
var restoreParts = []struct {
	file  string
	label string
}{
	{storage.KeyData + ".json", "saved reports and suggestion history"},
	{storage.KeySession + ".json", "the form in progress"},
	{storage.KeyTheme + ".json", "theme"},
	{storage.SQLiteFile, "the sqlite database"},
}

// pickBackup resolves the backup to restore: the newest one for latest,
// otherwise the one called name.
func pickBackup(manager *backup.Manager, name string, latest bool) (*backup.BackupInfo, error) {
	if !latest {
		return manager.GetBackup(name)
	}
	backups, err := manager.List()
	if err != nil {
		return nil, err
	}
	if len(backups) == 0 {
		return nil, backup.ErrNoBackups
	}
	return &backups[0], nil
}

// describeRestore prints what restoring info would replace and what it
// leaves alone.
func describeRestore(w io.Writer, info *backup.BackupInfo, now time.Time) {
	var replaces, keeps []string
	jsonBackup := hasFile(info.Files, storage.KeyData+".json")
	for _, part := range restoreParts {
		switch {
		case hasFile(info.Files, part.file):
			replaces = append(replaces, part.label)
		case jsonBackup && part.file != storage.SQLiteFile:
			keeps = append(keeps, part.label)
		}
	}

	fmt.Fprintf(w, "Backup %s\n", info.Name)
	fmt.Fprintf(w, "  Taken:    %s (%s)\n", info.Age(now), info.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  Contents: %s (%s)\n", statsLabel(info.Stats), info.HumanSize())
	if len(replaces) == 0 {
		fmt.Fprintln(w, "  Replaces: nothing, the backup holds no data files")
	} else {
		fmt.Fprintf(w, "  Replaces: %s\n", strings.Join(replaces, ", "))
	}
	if len(keeps) > 0 {
		fmt.Fprintf(w, "  Keeps:    %s\n", strings.Join(keeps, ", "))
	}
}

// backendWarning explains when the backup was taken with a different storage
// backend than the one configured, so the editor would not see its data.
func backendWarning(files []string, backend string) string {
	hasDB := hasFile(files, storage.SQLiteFile)
	hasJSON := hasFile(files, storage.KeyData+".json")
	switch {
	case backend == storage.BackendSQLite && hasJSON && !hasDB:
		return "this backup holds JSON files but storage is set to sqlite; set storage: file to use them"
	case backend != storage.BackendSQLite && hasDB && !hasJSON:
		return "this backup holds " + storage.SQLiteFile + " but storage is set to file; set storage: sqlite to use it"
	}
	return ""
}

func hasFile(files []string, name string) bool {
	for _, f := range files {
		if f == name {
			return true
		}
	}
	return false
}

// runRestore handles the "nippo restore" subcommand.
func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)

	latestFlag := fs.Bool("latest", false, "use the most recent backup")

	dryRunFlag := fs.Bool("dry-run", false, "show what would be replaced")
	fs.BoolVar(dryRunFlag, "n", false, "show what would be replaced (shorthand)")

	yesFlag := fs.Bool("yes", false, "do not ask before replacing data")
	fs.BoolVar(yesFlag, "y", false, "do not ask before replacing data (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, restoreHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(restoreHelpText)
		os.Exit(0)
	}

	if *latestFlag && fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Error: give a backup name or --latest, not both")
		os.Exit(1)
	}

	cfg := loadConfig()
	manager := backup.NewManager(cfg.GetDataDir(), version)

	if !*latestFlag && fs.NArg() == 0 {
		backups, err := manager.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing backups: %v\n", err)
			os.Exit(1)
		}
		listBackups(os.Stderr, backups, time.Now())
		if len(backups) > 0 {
			fmt.Fprintln(os.Stderr, "\nRun 'nippo restore NAME' or 'nippo restore --latest'.")
		}
		os.Exit(1)
	}

	info, err := pickBackup(manager, fs.Arg(0), *latestFlag)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackups) {
			fmt.Fprintln(os.Stderr, "No backups available.")
			fmt.Fprintln(os.Stderr, "Run 'nippo backup' to create one.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	describeRestore(os.Stdout, info, time.Now())
	if warning := backendWarning(info.Files, cfg.Storage); warning != "" {
		fmt.Printf("  Warning:  %s\n", warning)
	}

	if *dryRunFlag {
		return
	}

	if !*yesFlag && !confirm("Restore "+info.Name+"?", "Your current data is backed up first.") {
		fmt.Println("Restore cancelled.")
		os.Exit(0)
	}

	if err := manager.Restore(info.Name); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring backup: %v\n", err)
		os.Exit(1)
	}

	store := openStorage(cfg)
	defer store.Close()
	reports, err := store.Reports()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: restored data could not be read: %v\n", err)
	}

	fmt.Printf("✓ Restored %s (%d saved reports)\n", info.Name, len(reports))
	fmt.Println("  The data it replaced is the newest entry in 'nippo backup --list'.")
}
