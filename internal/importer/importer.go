// Package importer brings outside files into nippo: exported settings
// (customer and task history) and report text written by hand or by another
// copy of nippo.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"nippo/internal/form"
	"nippo/internal/history"
	"nippo/internal/report"
	"nippo/internal/storage"
)

// ErrUnsupported is returned by ForFile for unknown file extensions.
var ErrUnsupported = errors.New("unsupported import format")

// Result contains statistics about an import operation.
type Result struct {
	Customers  int // History entries in an imported settings file
	Tasks      int
	ResultDate string // Dates of an imported report
	PlanDate   string
	Results    int // Customers in each report section
	Plans      int
}

// Importer defines the interface for import implementations.
type Importer interface {
	// Import reads the input and writes it to storage.
	Import(r io.Reader, store *storage.Storage) (*Result, error)

	// Preview reads the input and reports what Import would do.
	Preview(r io.Reader) (*Result, error)

	// Name returns the importer name ("settings", "report").
	Name() string
}

var byExt = map[string]Importer{
	".json": &SettingsImporter{},
	".md":   &ReportImporter{},
	".txt":  &ReportImporter{},
}

// ForFile picks the importer for path by its extension.
func ForFile(path string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if imp, ok := byExt[ext]; ok {
		return imp, nil
	}
	return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupported, ext, strings.Join(SupportedExtensions(), ", "))
}

// SupportedExtensions returns the file extensions ForFile accepts.
func SupportedExtensions() []string {
	return []string{".json", ".md", ".txt"}
}

// SettingsImporter replaces customer and task history with an exported
// settings file. Saved reports are kept.
type SettingsImporter struct{}

func (*SettingsImporter) Name() string { return "settings" }

func (*SettingsImporter) Preview(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	h, err := history.DecodeSettings(data)
	if err != nil {
		return nil, err
	}
	customers, tasks := h.Stats()
	return &Result{Customers: customers, Tasks: tasks}, nil
}

func (*SettingsImporter) Import(r io.Reader, store *storage.Storage) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	h, err := store.ImportSettings(data)
	if err != nil {
		return nil, err
	}
	customers, tasks := h.Stats()
	return &Result{Customers: customers, Tasks: tasks}, nil
}

// ReportImporter parses report text into the editing session. History is
// not touched until the report is saved.
type ReportImporter struct{}

func (*ReportImporter) Name() string { return "report" }

func (*ReportImporter) Preview(r io.Reader) (*Result, error) {
	p, err := parseReport(r)
	if err != nil {
		return nil, err
	}
	return reportResult(p), nil
}

func (*ReportImporter) Import(r io.Reader, store *storage.Storage) (*Result, error) {
	p, err := parseReport(r)
	if err != nil {
		return nil, err
	}

	now := store.Now()
	p = p.WithDefaults(report.FormatDate(now))
	f := form.New(now)
	f.Load(p)
	if err := store.SaveSession(f); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return reportResult(p), nil
}

func parseReport(r io.Reader) (*report.Parsed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return report.Parse(string(data))
}

func reportResult(p *report.Parsed) *Result {
	return &Result{
		ResultDate: p.ResultDate,
		PlanDate:   p.PlanDate,
		Results:    len(p.Results),
		Plans:      len(p.Plans),
	}
}
