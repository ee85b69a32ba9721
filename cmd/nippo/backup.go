// This file contains the backup subcommand handler.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"nippo/internal/backup"
)

// backupHelpText is the help message for the backup subcommand.
const backupHelpText = `nippo backup - Create and manage backups

USAGE:
    nippo backup [OPTIONS]

OPTIONS:
    -l, --list       List available backups
    -p, --prune N    After creating a backup keep only the N most recent
    -h, --help       Show this help message

DESCRIPTION:
    Creates a timestamped copy of your data files (saved reports,
    suggestions, the current form and theme). Backups are stored in
    ~/.nippo/backups/ and can be restored with 'nippo restore'.

EXAMPLES:
    # Create a new backup
    nippo backup

    # Create one and keep the last ten
    nippo backup --prune 10

    # List all available backups
    nippo backup --list
`

// runBackup handles the "nippo backup" subcommand.
func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	listFlag := fs.Bool("list", false, "list available backups")
	fs.BoolVar(listFlag, "l", false, "list available backups (shorthand)")

	pruneFlag := fs.Int("prune", 0, "keep only the N most recent backups")
	fs.IntVar(pruneFlag, "p", 0, "keep only the N most recent backups (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, backupHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(backupHelpText)
		os.Exit(0)
	}

	cfg := loadConfig()
	manager := backup.NewManager(cfg.GetDataDir(), version)

	if *listFlag {
		backups, err := manager.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing backups: %v\n", err)
			os.Exit(1)
		}
		listBackups(os.Stdout, backups, time.Now())
		return
	}

	createBackup(manager)

	if *pruneFlag > 0 {
		deleted, err := manager.Prune(*pruneFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error pruning backups: %v\n", err)
			os.Exit(1)
		}
		if deleted > 0 {
			fmt.Printf("  Pruned %d old backup(s)\n", deleted)
		}
	}
}

// createBackup creates a new backup and displays the result.
func createBackup(manager *backup.Manager) {
	name, err := manager.Create()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating backup: %v\n", err)
		os.Exit(1)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading backup info: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Backup created: %s\n", name)
	fmt.Printf("  %s, %s\n", statsLabel(info.Stats), info.HumanSize())
	fmt.Printf("  Location: %s\n", info.Path)
}

// listBackups prints one line per backup, newest first.
func listBackups(w io.Writer, backups []backup.BackupInfo, now time.Time) {
	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups available.")
		fmt.Fprintln(w, "Run 'nippo backup' to create one.")
		return
	}

	fmt.Fprintln(w, "Available backups:")
	for _, b := range backups {
		fmt.Fprintf(w, "  %s  (%s, %s)   %s\n",
			b.Name, b.Age(now), b.HumanSize(), statsLabel(b.Stats))
	}
}

func statsLabel(stats map[string]int) string {
	return fmt.Sprintf("Reports: %d, Customers: %d, Tasks: %d",
		stats["reports"], stats["customers"], stats["tasks"])
}
