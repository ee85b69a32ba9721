// This file contains the history subcommand handler.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"nippo/internal/report"
	"nippo/internal/storage"

	"github.com/dustin/go-humanize"
)

// historyHelpText is the help message for the history subcommand.
const historyHelpText = `nippo history - List or delete saved reports

USAGE:
    nippo history [OPTIONS]

OPTIONS:
    -d, --delete ID  Delete the report saved for ID (YYYY-MM-DD)
    -y, --yes        Skip the confirmation prompt
    -h, --help       Show this help message

DESCRIPTION:
    Reports are saved one per results date; saving the same day again
    replaces the earlier copy. Deleting a report does not touch your
    customer and task suggestions.

EXAMPLES:
    # List saved reports
    nippo history

    # Delete one
    nippo history --delete 2024-01-15
`

// runHistory handles the "nippo history" subcommand.
func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	deleteFlag := fs.String("delete", "", "delete the report with this ID")
	fs.StringVar(deleteFlag, "d", "", "delete the report with this ID (shorthand)")

	yesFlag := fs.Bool("yes", false, "skip confirmation prompt")
	fs.BoolVar(yesFlag, "y", false, "skip confirmation prompt (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, historyHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(historyHelpText)
		os.Exit(0)
	}

	cfg := loadConfig()
	store := openStorage(cfg)
	defer store.Close()

	if *deleteFlag != "" {
		deleteReport(store, *deleteFlag, *yesFlag)
		return
	}

	reports, err := store.Reports()
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		fmt.Fprintf(os.Stderr, "Error loading reports: %v\n", err)
		os.Exit(1)
	}
	listReports(os.Stdout, reports, store.Now())
}

// listReports prints one line per saved report.
func listReports(w io.Writer, reports []storage.Report, now time.Time) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No saved reports.")
		fmt.Fprintln(w, "Save one from the editor with ctrl+s.")
		return
	}

	fmt.Fprintf(w, "Saved reports (%d):\n", len(reports))
	for _, r := range reports {
		fmt.Fprintf(w, "  %s  %s → %s  %s  (%s)\n",
			r.ID,
			sectionLabel(r.ResultDate, report.ResultSuffix),
			sectionLabel(r.PlanDate, report.PlanSuffix),
			countLabel(len(r.Results), len(r.Plans)),
			humanize.RelTime(r.Created, now, "ago", "from now"))
	}
}

func countLabel(results, plans int) string {
	return fmt.Sprintf("%d実績/%d予定", results, plans)
}

func deleteReport(store *storage.Storage, id string, yes bool) {
	r, err := store.GetReport(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'nippo history' to see saved reports.")
		os.Exit(1)
	}

	if !yes && !confirm("Delete saved report?", sectionLabel(r.ResultDate, report.ResultSuffix)) {
		fmt.Println("Delete cancelled.")
		return
	}

	if err := store.DeleteReport(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Deleted %s\n", sectionLabel(r.ResultDate, report.ResultSuffix))
}
