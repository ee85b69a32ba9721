package storage

import (
	"time"

	"nippo/internal/history"
	"nippo/internal/report"
)

// Report is a saved daily report. ID equals ResultDate, so saving the same
// day twice overwrites the earlier copy.
type Report struct {
	ID         string        `json:"id"`
	ResultDate string        `json:"resultDate"`
	PlanDate   string        `json:"planDate"`
	Results    []report.Item `json:"results"`
	Plans      []report.Item `json:"plans"`
	Markdown   string        `json:"markdown"`
	Created    time.Time     `json:"created"`
}

// Parsed returns the report in parser form, ready for form.Load.
func (r Report) Parsed() *report.Parsed {
	return &report.Parsed{
		ResultDate: r.ResultDate,
		PlanDate:   r.PlanDate,
		Results:    r.Results,
		Plans:      r.Plans,
	}
}

// Data is everything stored under KeyData: suggestion history and saved
// reports, newest result date first.
type Data struct {
	history.History
	Reports []Report `json:"reports"`
}

func (d *Data) normalize() {
	if d.Customers == nil {
		d.Customers = []history.CustomerEntry{}
	}
	if d.Tasks == nil {
		d.Tasks = []history.TaskEntry{}
	}
	if d.Reports == nil {
		d.Reports = []Report{}
	}
}

// Theme is the persisted color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
