package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

const sampleReport = `- 2024/01/15実績
    - Acme
        - Design(spec review)
        - Meeting

- 2024/01/16以降の予定
    - Acme
        - Implementation
`

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		resultDate string
		planDate   string
		results    []Item
		plans      []Item
		want       string
	}{
		{
			name:       "results and plans",
			resultDate: "2024-01-15",
			planDate:   "2024-01-16",
			results:    []Item{{Customer: "Acme", Tasks: []string{"Design(spec review)", "Meeting"}}},
			plans:      []Item{{Customer: "Acme", Tasks: []string{"Implementation"}}},
			want:       sampleReport,
		},
		{
			name:       "results only keeps trailing blank line",
			resultDate: "2024-01-15",
			planDate:   "2024-01-16",
			results:    []Item{{Customer: "Acme", Tasks: []string{"Design"}}},
			want:       "- 2024/01/15実績\n    - Acme\n        - Design\n\n",
		},
		{
			name:     "plans only",
			planDate: "2024-01-16",
			plans:    []Item{{Customer: "Beta", Tasks: []string{"Review"}}},
			want:     "- 2024/01/16以降の予定\n    - Beta\n        - Review\n",
		},
		{
			name:       "item without tasks",
			resultDate: "2024-01-15",
			results:    []Item{{Customer: "Acme"}},
			want:       "- 2024/01/15実績\n    - Acme\n\n",
		},
		{
			name:       "nothing",
			resultDate: "2024-01-15",
			planDate:   "2024-01-16",
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.resultDate, tt.planDate, tt.results, tt.plans)
			if got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(sampleReport)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := &Parsed{
		ResultDate: "2024-01-15",
		PlanDate:   "2024-01-16",
		Results:    []Item{{Customer: "Acme", Tasks: []string{"Design(spec review)", "Meeting"}}},
		Plans:      []Item{{Customer: "Acme", Tasks: []string{"Implementation"}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	results := []Item{
		{Customer: "Acme", Tasks: []string{"Design(spec review)", "Meeting"}},
		{Customer: "株式会社テスト", Tasks: []string{"打ち合わせ(午後)"}},
	}
	plans := []Item{
		{Customer: "Beta", Tasks: []string{"Review"}},
	}

	parsed, err := Parse(Render("2024-02-28", "2024-02-29", results, plans))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parsed.ResultDate != "2024-02-28" || parsed.PlanDate != "2024-02-29" {
		t.Errorf("dates = %q/%q, want 2024-02-28/2024-02-29", parsed.ResultDate, parsed.PlanDate)
	}
	if !reflect.DeepEqual(parsed.Results, results) {
		t.Errorf("Results = %+v, want %+v", parsed.Results, results)
	}
	if !reflect.DeepEqual(parsed.Plans, plans) {
		t.Errorf("Plans = %+v, want %+v", parsed.Plans, plans)
	}
}

func TestParseEmpty(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n\t\n",
		"hello world",
		"- 2024/01/15実績\n",
		"- 2024/01/15実績\n- 2024/01/16以降の予定\n",
		"    - Acme\n        - Design\n",
	}

	for _, in := range inputs {
		got, err := Parse(in)
		if !errors.Is(err, ErrEmptyReport) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyReport", in, err)
		}
		if got != nil {
			t.Errorf("Parse(%q) = %+v, want nil", in, got)
		}
	}
}

func TestParseIgnoresNoise(t *testing.T) {
	noisy := "Good morning!\n\n" +
		strings.Replace(sampleReport, "    - Acme\n        - Design", "    - Acme\n  stray line\n        - Design", 1) +
		"\nThanks\n"

	got, err := Parse(noisy)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want, _ := Parse(sampleReport)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(noisy) = %+v, want %+v", got, want)
	}
}

func TestParseIndentation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Parsed
	}{
		{
			name:  "tab indented lines are skipped",
			input: "- 2024/01/15実績\n\t- Acme\n\t\t- Design\n",
			want:  nil,
		},
		{
			name:  "two space indent shifts levels",
			input: "- 2024/01/15実績\n  - Acme\n    - Design\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Design", Tasks: []string{}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "header text after suffix is ignored",
			input: "- 2024/01/15実績 (Mon)\n    - Acme\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "header without space after dash",
			input: "-2024/01/15実績\n    - Acme\n        - Design\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{"Design"}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "task before any customer is skipped",
			input: "- 2024/01/15実績\n        - Orphan\n    - Acme\n        - Design\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{"Design"}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "indented header is not a section",
			input: "    - 2024/01/15実績\n    - Acme\n",
			want:  nil,
		},
		{
			name:  "crlf line endings",
			input: "- 2024/01/15実績\r\n    - Acme\r\n        - Design\r\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{"Design"}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "ideographic spaces count as indent",
			input: "- 2024/01/15実績\n　　　　- Acme\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "ideographic space after bullet dash",
			input: "- 2024/01/15実績\n    -　Acme\n        -　Design\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{"Design"}}},
				Plans:      []Item{},
			},
		},
		{
			name:  "ideographic space after header dash",
			input: "-　2024/01/15実績\n    - Acme\n-　2024/01/16以降の予定\n    - Beta\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				PlanDate:   "2024-01-16",
				Results:    []Item{{Customer: "Acme", Tasks: []string{}}},
				Plans:      []Item{{Customer: "Beta", Tasks: []string{}}},
			},
		},
		{
			name:  "leading byte order mark",
			input: "\ufeff- 2024/01/15実績\n    - Acme\n        - Design\n",
			want: &Parsed{
				ResultDate: "2024-01-15",
				Results:    []Item{{Customer: "Acme", Tasks: []string{"Design"}}},
				Plans:      []Item{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.want == nil {
				if !errors.Is(err, ErrEmptyReport) {
					t.Fatalf("Parse() error = %v, want ErrEmptyReport", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseCustomerResetsOnSection(t *testing.T) {
	input := "- 2024/01/15実績\n    - Acme\n- 2024/01/16以降の予定\n        - Lost\n    - Beta\n        - Kept\n"

	got, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Results) != 1 || len(got.Results[0].Tasks) != 0 {
		t.Errorf("Results = %+v, want Acme with no tasks", got.Results)
	}
	want := []Item{{Customer: "Beta", Tasks: []string{"Kept"}}}
	if !reflect.DeepEqual(got.Plans, want) {
		t.Errorf("Plans = %+v, want %+v", got.Plans, want)
	}
}

func TestParsedWithDefaults(t *testing.T) {
	got, err := Parse("- 2024/01/16以降の予定\n    - Beta\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.ResultDate != "" {
		t.Errorf("ResultDate = %q, want empty", got.ResultDate)
	}

	got.WithDefaults("2024-03-01")
	if got.ResultDate != "2024-03-01" {
		t.Errorf("ResultDate = %q, want 2024-03-01", got.ResultDate)
	}
	if got.PlanDate != "2024-01-16" {
		t.Errorf("PlanDate = %q, want 2024-01-16", got.PlanDate)
	}
}

func TestDates(t *testing.T) {
	if got := FormatDisplayDate("2024-01-05"); got != "2024/01/05" {
		t.Errorf("FormatDisplayDate() = %q", got)
	}
	if got, err := ParseDisplayDate("2024/12/31"); err != nil || got != "2024-12-31" {
		t.Errorf("ParseDisplayDate() = %q, %v", got, err)
	}
	if _, err := ParseDisplayDate("2024-12-31"); err == nil {
		t.Error("ParseDisplayDate() accepted dashed date")
	}

	tests := []struct{ in, next, prev string }{
		{"2024-02-28", "2024-02-29", "2024-02-27"},
		{"2024-12-31", "2025-01-01", "2024-12-30"},
		{"2024-03-01", "2024-03-02", "2024-02-29"},
		{"garbage", "garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := NextDay(tt.in); got != tt.next {
			t.Errorf("NextDay(%q) = %q, want %q", tt.in, got, tt.next)
		}
		if got := PrevDay(tt.in); got != tt.prev {
			t.Errorf("PrevDay(%q) = %q, want %q", tt.in, got, tt.prev)
		}
	}

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	result, plan := DefaultDates(now)
	if result != "2024-02-29" || plan != "2024-03-01" {
		t.Errorf("DefaultDates() = %q, %q", result, plan)
	}
}

func TestTaskHelpers(t *testing.T) {
	joins := []struct{ main, detail, want string }{
		{"Design", "spec review", "Design(spec review)"},
		{"Design", "", "Design"},
		{" Design ", "   ", "Design"},
		{"打ち合わせ", "午後", "打ち合わせ(午後)"},
	}
	for _, tt := range joins {
		if got := JoinTask(tt.main, tt.detail); got != tt.want {
			t.Errorf("JoinTask(%q, %q) = %q, want %q", tt.main, tt.detail, got, tt.want)
		}
	}

	splits := []struct{ task, main, detail string }{
		{"Design(spec review)", "Design", "spec review"},
		{"Design", "Design", ""},
		{"Design()", "Design()", ""},
		{"A(b(c))", "A", "b(c)"},
	}
	for _, tt := range splits {
		main, detail := SplitTask(tt.task)
		if main != tt.main || detail != tt.detail {
			t.Errorf("SplitTask(%q) = %q, %q, want %q, %q", tt.task, main, detail, tt.main, tt.detail)
		}
	}

	mains := []struct{ task, want string }{
		{"Design(spec review)", "Design"},
		{"Design (spec review)", "Design"},
		{"Design", "Design"},
		{"  Design  ", "Design"},
		{"(only detail)", ""},
	}
	for _, tt := range mains {
		if got := MainText(tt.task); got != tt.want {
			t.Errorf("MainText(%q) = %q, want %q", tt.task, got, tt.want)
		}
	}
}
