package report

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzParse checks that arbitrary input never panics and that a successful
// parse always yields at least one item.
func FuzzParse(f *testing.F) {
	f.Add(sampleReport)
	f.Add("")
	f.Add("- 2024/01/15実績\n    - \n")
	f.Add("-\t2024/01/15実績\n\t- A\n")
	f.Add("- 9999/99/99以降の予定\n    - x\n        - y\n")

	f.Fuzz(func(t *testing.T, text string) {
		got, err := Parse(text)
		if err != nil {
			return
		}
		if len(got.Results)+len(got.Plans) == 0 {
			t.Errorf("Parse(%q) succeeded with no items", text)
		}
	})
}

// FuzzRoundTrip renders a single-item report and parses it back.
func FuzzRoundTrip(f *testing.F) {
	f.Add("Acme", "Design(spec review)")
	f.Add("株式会社テスト", "打ち合わせ")
	f.Add("- nested", "- dash")

	f.Fuzz(func(t *testing.T, customer, task string) {
		for _, s := range []string{customer, task} {
			if !utf8.ValidString(s) || s == "" || s != strings.TrimSpace(s) ||
				strings.ContainsAny(s, "\n\r") || strings.TrimLeft(s, "-") == "" {
				return
			}
		}

		items := []Item{{Customer: customer, Tasks: []string{task}}}
		got, err := Parse(Render("2024-01-15", "2024-01-16", items, items))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if !reflect.DeepEqual(got.Results, items) || !reflect.DeepEqual(got.Plans, items) {
			t.Errorf("round trip = %+v / %+v, want %+v", got.Results, got.Plans, items)
		}
	})
}
