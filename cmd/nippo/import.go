// This file contains the import subcommand handler.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"nippo/internal/importer"
	"nippo/internal/report"
)

// importHelpText is the help message for the import subcommand.
const importHelpText = `nippo import - Load a report or settings file

USAGE:
    nippo import [OPTIONS] FILE

FILES:
    .md, .txt    Report text. It replaces the form you are editing; it is
                 not saved to history until you save it from the editor.
    .json        Settings exported by nippo (or the web version). It
                 replaces your customer and task suggestions; saved
                 reports are kept.

OPTIONS:
    --dry-run    Show what would be imported without changing anything
    -y, --yes    Skip the confirmation prompt
    -h, --help   Show this help message

EXAMPLES:
    # Continue yesterday's report copied from chat
    nippo import report.md

    # Bring suggestions over from another machine
    nippo import --yes business-report-settings-2024-01-15.json
`

// runImport handles the "nippo import" subcommand.
func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	dryRunFlag := fs.Bool("dry-run", false, "preview import without making changes")

	yesFlag := fs.Bool("yes", false, "skip confirmation prompt")
	fs.BoolVar(yesFlag, "y", false, "skip confirmation prompt (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, importHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(importHelpText)
		os.Exit(0)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one file")
		fmt.Fprintln(os.Stderr, "Run 'nippo import --help' for usage.")
		os.Exit(1)
	}
	path := fs.Arg(0)

	imp, err := importer.ForFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	preview, err := imp.Preview(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("%s file: %s\n", strings.ToUpper(imp.Name()[:1])+imp.Name()[1:], path)
	fmt.Println(describeImport(imp.Name(), preview))

	if *dryRunFlag {
		fmt.Println("\nDry run: nothing was changed.")
		return
	}

	if !*yesFlag && !confirm("Import "+path+"?", importWarning(imp.Name())) {
		fmt.Println("Import cancelled.")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		fmt.Fprintf(os.Stderr, "Error rereading file: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	store := openStorage(cfg)
	defer store.Close()

	result, err := imp.Import(file, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Imported %s\n", describeImport(imp.Name(), result))
	if imp.Name() == "report" {
		fmt.Println("  Open nippo to review and save it.")
	}
}

// describeImport summarizes an import result in one line.
func describeImport(kind string, r *importer.Result) string {
	if kind == "settings" {
		return fmt.Sprintf("%d customers, %d tasks", r.Customers, r.Tasks)
	}
	return fmt.Sprintf("%s: %d customers / %s: %d customers",
		sectionLabel(r.ResultDate, report.ResultSuffix), r.Results,
		sectionLabel(r.PlanDate, report.PlanSuffix), r.Plans)
}

func sectionLabel(date, suffix string) string {
	if date == "" {
		return "(no date)" + suffix
	}
	return report.FormatDisplayDate(date) + suffix
}

func importWarning(kind string) string {
	if kind == "settings" {
		return "Your customer and task suggestions will be replaced."
	}
	return "The form you are editing will be replaced."
}
