package form

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"nippo/internal/report"
)

var testNow = time.Date(2024, 1, 16, 10, 0, 0, 0, time.Local)

func filled() *Form {
	f := New(testNow)
	f.Results = []ItemDraft{
		{Customer: "Acme", Tasks: []TaskDraft{{Main: "Design", Sub: "spec review"}, {Main: "Meeting"}}},
		{Customer: "Beta", Tasks: []TaskDraft{{Main: "Review"}}},
	}
	f.Plans = []ItemDraft{
		{Customer: "Acme", Tasks: []TaskDraft{{Main: "Implementation"}}},
	}
	return f
}

func TestNew(t *testing.T) {
	f := New(testNow)
	if f.ResultDate != "2024-01-15" || f.PlanDate != "2024-01-16" {
		t.Errorf("dates = %q/%q, want 2024-01-15/2024-01-16", f.ResultDate, f.PlanDate)
	}
	if len(f.Results) != 1 || len(f.Plans) != 1 {
		t.Fatalf("sections = %d/%d items, want 1/1", len(f.Results), len(f.Plans))
	}
	if !f.Results[0].Blank() || len(f.Results[0].Tasks) != 1 {
		t.Errorf("Results[0] = %+v, want one blank item with one row", f.Results[0])
	}
	if !f.Empty() {
		t.Error("Empty() = false for new form")
	}
	if got := f.Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}

func TestExtract(t *testing.T) {
	f := New(testNow)
	f.Results = []ItemDraft{
		{Customer: "  Acme ", Tasks: []TaskDraft{{Main: " Design ", Sub: " spec "}, {Main: "", Sub: "orphan"}}},
		{Customer: "", Tasks: []TaskDraft{{Main: "No customer"}}},
		{Customer: "Empty", Tasks: []TaskDraft{{Main: "   "}}},
	}

	got := f.Extract(Results)
	want := []report.Item{{Customer: "Acme", Tasks: []string{"Design(spec)"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
	if got := f.Extract(Plans); got == nil || len(got) != 0 {
		t.Errorf("Extract(Plans) = %#v, want empty non-nil", got)
	}
}

func TestRender(t *testing.T) {
	want := "- 2024/01/15実績\n" +
		"    - Acme\n        - Design(spec review)\n        - Meeting\n" +
		"    - Beta\n        - Review\n\n" +
		"- 2024/01/16以降の予定\n    - Acme\n        - Implementation\n"
	if got := filled().Render(); got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRemoveItemKeepsPlaceholder(t *testing.T) {
	f := filled()
	if err := f.RemoveItem(Plans, 0); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(f.Plans) != 1 || !f.Plans[0].Blank() {
		t.Errorf("Plans = %+v, want single blank item", f.Plans)
	}
	if err := f.RemoveItem(Plans, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("RemoveItem(3) error = %v, want ErrOutOfRange", err)
	}
}

func TestAddAndRemoveTask(t *testing.T) {
	f := filled()
	j, err := f.AddTask(Results, 1)
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if j != 1 || len(f.Results[1].Tasks) != 2 {
		t.Errorf("AddTask() = %d, tasks = %+v", j, f.Results[1].Tasks)
	}

	_ = f.RemoveTask(Results, 1, 1)
	_ = f.RemoveTask(Results, 1, 0)
	if got := f.Results[1].Tasks; len(got) != 1 || !got[0].Blank() {
		t.Errorf("Tasks = %+v, want one blank row", got)
	}
	if _, err := f.AddTask(Results, 9); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AddTask(9) error = %v, want ErrOutOfRange", err)
	}
}

func TestMoveItemAndTask(t *testing.T) {
	f := filled()

	to, err := f.MoveItem(Results, 0, 1)
	if err != nil || to != 1 {
		t.Fatalf("MoveItem() = %d, %v", to, err)
	}
	if f.Results[0].Customer != "Beta" || f.Results[1].Customer != "Acme" {
		t.Errorf("order = %s,%s", f.Results[0].Customer, f.Results[1].Customer)
	}

	if to, _ := f.MoveItem(Results, 1, 1); to != 1 || f.Results[1].Customer != "Acme" {
		t.Errorf("MoveItem past bottom changed order")
	}
	if to, _ := f.MoveItem(Results, 0, -1); to != 0 || f.Results[0].Customer != "Beta" {
		t.Errorf("MoveItem past top changed order")
	}

	if to, _ := f.MoveTask(Results, 1, 1, -1); to != 0 || f.Results[1].Tasks[0].Main != "Meeting" {
		t.Errorf("MoveTask() tasks = %+v", f.Results[1].Tasks)
	}
	if to, _ := f.MoveTask(Results, 1, 0, -1); to != 0 {
		t.Errorf("MoveTask past top = %d, want 0", to)
	}
}

func TestMoveItemAcross(t *testing.T) {
	f := filled()
	f.Plans = []ItemDraft{blankItem()}

	to, err := f.MoveItemAcross(Results, 1)
	if err != nil {
		t.Fatalf("MoveItemAcross() error = %v", err)
	}
	if to != 0 || len(f.Plans) != 1 || f.Plans[0].Customer != "Beta" {
		t.Errorf("Plans = %+v, want Beta replacing placeholder", f.Plans)
	}
	if len(f.Results) != 1 || f.Results[0].Customer != "Acme" {
		t.Errorf("Results = %+v, want only Acme", f.Results)
	}

	f.Results = append(f.Results, ItemDraft{Customer: "Gamma", Tasks: []TaskDraft{{}}})
	if _, err := f.MoveItemAcross(Results, 1); !errors.Is(err, ErrNothingToMove) {
		t.Errorf("MoveItemAcross(no tasks) error = %v, want ErrNothingToMove", err)
	}
}

func TestMoveTaskAcross(t *testing.T) {
	f := filled()

	ti, tj, err := f.MoveTaskAcross(Results, 0, 1)
	if err != nil {
		t.Fatalf("MoveTaskAcross() error = %v", err)
	}
	if ti != 0 || tj != 1 || f.Plans[0].Tasks[1].Main != "Meeting" {
		t.Errorf("MoveTaskAcross() = %d,%d plans = %+v", ti, tj, f.Plans)
	}
	if len(f.Results[0].Tasks) != 1 {
		t.Errorf("source tasks = %+v, want 1", f.Results[0].Tasks)
	}

	ti, tj, err = f.MoveTaskAcross(Results, 1, 0)
	if err != nil {
		t.Fatalf("MoveTaskAcross() error = %v", err)
	}
	if ti != 1 || tj != 0 || f.Plans[1].Customer != "Beta" {
		t.Errorf("new target item = %+v", f.Plans)
	}
	if got := f.Results[1].Tasks; len(got) != 1 || !got[0].Blank() {
		t.Errorf("emptied source = %+v, want one blank row", got)
	}

	if _, _, err := f.MoveTaskAcross(Results, 1, 0); !errors.Is(err, ErrNothingToMove) {
		t.Errorf("blank task error = %v, want ErrNothingToMove", err)
	}
	f.Results[1].Customer = ""
	f.Results[1].Tasks[0].Main = "x"
	if _, _, err := f.MoveTaskAcross(Results, 1, 0); !errors.Is(err, ErrNoCustomer) {
		t.Errorf("no customer error = %v, want ErrNoCustomer", err)
	}
}

func TestCopyToPlans(t *testing.T) {
	f := filled()

	i, err := f.CopyItemToPlans(0)
	if err != nil {
		t.Fatalf("CopyItemToPlans() error = %v", err)
	}
	want := ItemDraft{Customer: "Acme", Tasks: []TaskDraft{
		{Main: "Design", Sub: "spec review・続き"},
		{Main: "Meeting", Sub: "続き"},
	}}
	if i != 1 || !reflect.DeepEqual(f.Plans[1], want) {
		t.Errorf("Plans[%d] = %+v, want %+v", i, f.Plans[i], want)
	}
	if f.Results[0].Tasks[0].Sub != "spec review" {
		t.Error("CopyItemToPlans modified the source")
	}

	ti, tj, err := f.CopyTaskToPlans(1, 0)
	if err != nil {
		t.Fatalf("CopyTaskToPlans() error = %v", err)
	}
	if f.Plans[ti].Customer != "Beta" || f.Plans[ti].Tasks[tj] != (TaskDraft{Main: "Review", Sub: "続き"}) {
		t.Errorf("copied task = %+v", f.Plans[ti])
	}
	if len(f.Results[1].Tasks) != 1 {
		t.Error("CopyTaskToPlans removed the source task")
	}
}

func TestCarryOver(t *testing.T) {
	f := filled()
	f.Plans[0].Tasks[0].Sub = "phase 1"

	if !f.CarryOver() {
		t.Fatal("CarryOver() = false")
	}
	if f.ResultDate != "2024-01-16" || f.PlanDate != "2024-01-17" {
		t.Errorf("dates = %q/%q", f.ResultDate, f.PlanDate)
	}
	want := []ItemDraft{{Customer: "Acme", Tasks: []TaskDraft{{Main: "Implementation", Sub: "phase 1"}}}}
	if !reflect.DeepEqual(f.Results, want) {
		t.Errorf("Results = %+v, want %+v", f.Results, want)
	}
	if len(f.Plans) != 1 || !f.Plans[0].Blank() {
		t.Errorf("Plans = %+v, want one blank item", f.Plans)
	}

	before := *f
	if f.CarryOver() {
		t.Error("CarryOver() with empty plans = true")
	}
	if f.ResultDate != before.ResultDate || f.PlanDate != before.PlanDate {
		t.Error("CarryOver() with empty plans changed dates")
	}
}

func TestLoad(t *testing.T) {
	f := New(testNow)
	f.Load(&report.Parsed{
		ResultDate: "2024-02-01",
		Results:    []report.Item{{Customer: "Acme", Tasks: []string{"Design(spec)", "Plain"}}},
	})

	if f.ResultDate != "2024-02-01" || f.PlanDate != "2024-01-16" {
		t.Errorf("dates = %q/%q", f.ResultDate, f.PlanDate)
	}
	want := []TaskDraft{{Main: "Design", Sub: "spec"}, {Main: "Plain"}}
	if !reflect.DeepEqual(f.Results[0].Tasks, want) {
		t.Errorf("Tasks = %+v, want %+v", f.Results[0].Tasks, want)
	}
	if len(f.Plans) != 1 || !f.Plans[0].Blank() {
		t.Errorf("Plans = %+v, want placeholder", f.Plans)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	f := filled()
	f.Results = append(f.Results, blankItem())

	s := f.Session(testNow)
	if len(s.Results) != 2 || !s.Timestamp.Equal(testNow) {
		t.Errorf("Session() = %+v", s)
	}

	restored := FromSession(s, testNow.AddDate(0, 0, 5))
	if restored.Render() != f.Render() {
		t.Errorf("restored Render() =\n%s\nwant\n%s", restored.Render(), f.Render())
	}

	empty := FromSession(&Session{}, testNow)
	if empty.ResultDate != "2024-01-15" {
		t.Errorf("empty session ResultDate = %q, want default", empty.ResultDate)
	}
}

func TestClone(t *testing.T) {
	f := filled()
	c := f.Clone()

	c.Results[0].Customer = "Changed"
	c.Results[0].Tasks[0].Main = "Changed"
	c.PlanDate = "2030-01-01"

	if f.Results[0].Customer == "Changed" || f.Results[0].Tasks[0].Main == "Changed" {
		t.Error("Clone() shares item storage with the original")
	}
	if f.PlanDate == "2030-01-01" {
		t.Error("Clone() shares dates with the original")
	}
}
