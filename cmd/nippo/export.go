// This file contains the export subcommand handler.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nippo/internal/notify"
	"nippo/internal/report"
	"nippo/internal/storage"

	"github.com/atotto/clipboard"
)

// exportHelpText is the help message for the export subcommand.
const exportHelpText = `nippo export - Print or save saved reports

USAGE:
    nippo export [OPTIONS]

OPTIONS:
    --id DATE          Export the report saved for DATE (YYYY-MM-DD)
    -a, --all          Export every saved report, newest first
    -o, --output FILE  Write to FILE instead of stdout. If FILE is a
                       directory the default file name is used.
    -s, --save         Write to the export directory with the default name
    -c, --clipboard    Copy to the clipboard instead of printing
    -h, --help         Show this help message

DESCRIPTION:
    Without --id or --all the most recently dated report is exported.
    Default file names are 業務報告-DATE.md for one report and
    business-reports-TODAY.md for --all. The export directory is
    export.dir in the config file, or the current directory.

EXAMPLES:
    # Latest report to stdout
    nippo export

    # One day to the clipboard
    nippo export --id 2024-01-15 --clipboard

    # Everything into the export directory
    nippo export --all --save
`

var errNoReports = errors.New("no saved reports")

// exportSelection is the text an export produces and the file name it
// suggests.
type exportSelection struct {
	Text string
	Name string
}

// selectExport picks what to export: one report by id, every report, or the
// newest one.
func selectExport(store *storage.Storage, id string, all bool, now time.Time) (*exportSelection, error) {
	if id != "" && all {
		return nil, errors.New("--id and --all cannot be combined")
	}

	if id != "" {
		r, err := store.GetReport(id)
		if err != nil {
			return nil, err
		}
		return &exportSelection{Text: r.Markdown, Name: reportFileName(r.ResultDate)}, nil
	}

	reports, err := store.Reports()
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, errNoReports
	}

	if all {
		text, err := store.ExportReports()
		if err != nil && !errors.Is(err, storage.ErrCorrupt) {
			return nil, err
		}
		return &exportSelection{
			Text: text,
			Name: fmt.Sprintf("business-reports-%s.md", report.FormatDate(now)),
		}, nil
	}

	return &exportSelection{Text: reports[0].Markdown, Name: reportFileName(reports[0].ResultDate)}, nil
}

func reportFileName(resultDate string) string {
	return fmt.Sprintf("業務報告-%s.md", resultDate)
}

// outputPath resolves where an export is written. An output that names an
// existing directory gets the default file name appended.
func outputPath(output, exportDir, name string, save bool) string {
	if save && output == "" {
		return filepath.Join(exportDir, name)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}

// runExport handles the "nippo export" subcommand.
func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	idFlag := fs.String("id", "", "export the report saved for this date")

	allFlag := fs.Bool("all", false, "export every saved report")
	fs.BoolVar(allFlag, "a", false, "export every saved report (shorthand)")

	outputFlag := fs.String("output", "", "write to file instead of stdout")
	fs.StringVar(outputFlag, "o", "", "write to file (shorthand)")

	saveFlag := fs.Bool("save", false, "write to the export directory")
	fs.BoolVar(saveFlag, "s", false, "write to the export directory (shorthand)")

	clipboardFlag := fs.Bool("clipboard", false, "copy to the clipboard")
	fs.BoolVar(clipboardFlag, "c", false, "copy to the clipboard (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, exportHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(exportHelpText)
		os.Exit(0)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown arguments: %v\n", fs.Args())
		os.Exit(1)
	}

	cfg := loadConfig()
	store := openStorage(cfg)
	defer store.Close()

	sel, err := selectExport(store, *idFlag, *allFlag, store.Now())
	if err != nil {
		if errors.Is(err, errNoReports) {
			fmt.Fprintln(os.Stderr, "No saved reports.")
			fmt.Fprintln(os.Stderr, "Save one from the editor with ctrl+s.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	n := desktopNotifier(cfg, os.Stderr, "nippo export")

	if *clipboardFlag {
		if err := clipboard.WriteAll(sel.Text); err != nil {
			_ = n.Notify(notify.Error, fmt.Sprintf("Clipboard failed: %v", err))
			os.Exit(1)
		}
		_ = n.Notify(notify.Success, "Copied to clipboard")
	}

	if *outputFlag == "" && !*saveFlag {
		if !*clipboardFlag {
			fmt.Print(sel.Text)
		}
		return
	}

	path := outputPath(*outputFlag, cfg.GetExportDir(), sel.Name, *saveFlag)
	if err := writeOutput(path, []byte(sel.Text)); err != nil {
		_ = n.Notify(notify.Error, fmt.Sprintf("Export failed: %v", err))
		os.Exit(1)
	}
	_ = n.Notify(notify.Success, fmt.Sprintf("Report written to %s", path))
}
