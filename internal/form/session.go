package form

import (
	"time"

	"nippo/internal/report"
)

// Session is the persisted snapshot of an in-progress form.
type Session struct {
	ResultDate string        `json:"resultDate"`
	PlanDate   string        `json:"planDate"`
	Results    []report.Item `json:"results"`
	Plans      []report.Item `json:"plans"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Session snapshots the filled content of the form.
func (f *Form) Session(now time.Time) *Session {
	return &Session{
		ResultDate: f.ResultDate,
		PlanDate:   f.PlanDate,
		Results:    f.Extract(Results),
		Plans:      f.Extract(Plans),
		Timestamp:  now,
	}
}

// FromSession rebuilds a form from a snapshot. Missing dates fall back to
// the defaults for now.
func FromSession(s *Session, now time.Time) *Form {
	f := New(now)
	f.Load(&report.Parsed{
		ResultDate: s.ResultDate,
		PlanDate:   s.PlanDate,
		Results:    s.Results,
		Plans:      s.Plans,
	})
	return f
}
