package report

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrEmptyReport is returned by Parse when no results or plans could be
// recovered from the input. Callers must treat it as "not a report" and leave
// any existing form state alone.
var ErrEmptyReport = errors.New("report: no results or plans found")

// space matches ASCII and Unicode spaces, so a full-width space typed after
// the dash ("-　Acme") still separates it from the text.
const space = `[\s\p{Zs}\x{FEFF}]`

var (
	resultHeaderRe = regexp.MustCompile(`^-` + space + `*(\d{4}/\d{2}/\d{2})` + ResultSuffix)
	planHeaderRe   = regexp.MustCompile(`^-` + space + `*(\d{4}/\d{2}/\d{2})` + PlanSuffix)
	bulletRe       = regexp.MustCompile(`^-` + space + `+(.+)`)
)

// Parsed is the structured content recovered from a text report.
// A date is empty when its header line was absent.
type Parsed struct {
	ResultDate string `json:"resultDate"`
	PlanDate   string `json:"planDate"`
	Results    []Item `json:"results"`
	Plans      []Item `json:"plans"`
}

// WithDefaults fills missing dates with today (YYYY-MM-DD).
func (p *Parsed) WithDefaults(today string) *Parsed {
	if p.ResultDate == "" {
		p.ResultDate = today
	}
	if p.PlanDate == "" {
		p.PlanDate = today
	}
	return p
}

type section int

const (
	sectionNone section = iota
	sectionResults
	sectionPlans
)

// Parse recovers dates and items from a text report.
//
// Lines are classified by their exact leading-whitespace width: 0 for
// section headers, 4 for customers and 8 for tasks. Anything else, including
// blank lines and bullets at other widths (tabs, two-space indents), is
// skipped without error. A leading byte order mark is ignored.
func Parse(text string) (*Parsed, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	p := &Parsed{}
	current := sectionNone
	var customer *Item

	// Held by pointer so customer stays valid while its section slice grows.
	var results, plans []*Item

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch indent := indentWidth(line); {
		case indent == 0 && resultHeaderRe.MatchString(trimmed):
			m := resultHeaderRe.FindStringSubmatch(trimmed)
			p.ResultDate = strings.ReplaceAll(m[1], "/", "-")
			current = sectionResults
			customer = nil

		case indent == 0 && planHeaderRe.MatchString(trimmed):
			m := planHeaderRe.FindStringSubmatch(trimmed)
			p.PlanDate = strings.ReplaceAll(m[1], "/", "-")
			current = sectionPlans
			customer = nil

		case indent == 4 && current != sectionNone && bulletRe.MatchString(trimmed):
			m := bulletRe.FindStringSubmatch(trimmed)
			customer = &Item{Customer: strings.TrimSpace(m[1]), Tasks: []string{}}
			if current == sectionResults {
				results = append(results, customer)
			} else {
				plans = append(plans, customer)
			}

		case indent == 8 && customer != nil && bulletRe.MatchString(trimmed):
			m := bulletRe.FindStringSubmatch(trimmed)
			customer.Tasks = append(customer.Tasks, strings.TrimSpace(m[1]))
		}
	}

	if len(results) == 0 && len(plans) == 0 {
		return nil, ErrEmptyReport
	}

	p.Results = derefItems(results)
	p.Plans = derefItems(plans)
	return p, nil
}

// indentWidth counts leading whitespace characters (not bytes, not columns).
func indentWidth(line string) int {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	return utf8.RuneCountInString(line) - utf8.RuneCountInString(rest)
}

func derefItems(items []*Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out
}
