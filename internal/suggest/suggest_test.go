package suggest

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

type fakeEntry struct {
	key     string
	uses    int
	recency time.Time
}

func (f fakeEntry) Key() string          { return f.key }
func (f fakeEntry) Uses() int            { return f.uses }
func (f fakeEntry) RecencyAt() time.Time { return f.recency }

var base = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func TestSuggestEmptyPrefixOrdersByRecency(t *testing.T) {
	history := []fakeEntry{
		{key: "t1", uses: 9, recency: at(1)},
		{key: "t3", uses: 0, recency: at(3)},
		{key: "t2", uses: 5, recency: at(2)},
	}

	got := Suggest(history, "")
	want := []string{"t3", "t2", "t1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}

	if history[0].key != "t1" || history[1].key != "t3" {
		t.Error("Suggest() reordered the input slice")
	}
}

func TestSuggestSubstringByUseCount(t *testing.T) {
	history := []fakeEntry{
		{key: "Frontend", uses: 5, recency: at(10)},
		{key: "Backend", uses: 1, recency: at(20)},
		{key: "Program", uses: 9, recency: at(0)},
	}

	got := Suggest(history, "ro")
	want := []string{"Program", "Frontend"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}
}

func TestSuggestFiltering(t *testing.T) {
	history := []fakeEntry{
		{key: "Acme Corp", uses: 3, recency: at(1)},
		{key: "ACME Labs", uses: 3, recency: at(5)},
		{key: "Beta", uses: 10, recency: at(9)},
		{key: "株式会社アクメ", uses: 1, recency: at(2)},
	}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"case insensitive with recency tie break", "acme", []string{"ACME Labs", "Acme Corp"}},
		{"substring anywhere", "corp", []string{"Acme Corp"}},
		{"japanese", "アクメ", []string{"株式会社アクメ"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(history, tt.prefix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestSuggestLimit(t *testing.T) {
	var history []fakeEntry
	for i := range 25 {
		history = append(history, fakeEntry{key: fmt.Sprintf("item-%02d", i), uses: i, recency: at(i)})
	}

	if got := Suggest(history, ""); len(got) != Limit || got[0] != "item-24" {
		t.Errorf("Suggest(\"\") = %v, want %d entries starting with item-24", got, Limit)
	}
	if got := Suggest(history, "item"); len(got) != Limit || got[0] != "item-24" || got[9] != "item-15" {
		t.Errorf("Suggest(\"item\") = %v", got)
	}
}

func TestSuggestEmptyHistory(t *testing.T) {
	if got := Suggest([]fakeEntry(nil), ""); len(got) != 0 {
		t.Errorf("Suggest() = %v, want empty", got)
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor([]string{"a", "b", "c"})

	if _, ok := c.Selected(); ok {
		t.Fatal("new cursor has a selection")
	}

	c.Next()
	c.Next()
	if s, _ := c.Selected(); s != "b" {
		t.Errorf("Selected() = %q, want b", s)
	}

	c.Next()
	c.Next()
	if c.Index() != 2 {
		t.Errorf("Index() = %d, want 2 (clamped)", c.Index())
	}

	c.Prev()
	c.Prev()
	c.Prev()
	if c.Index() != -1 {
		t.Errorf("Index() = %d, want -1", c.Index())
	}
	c.Prev()
	if c.Index() != -1 {
		t.Errorf("Index() = %d, want -1 after extra Prev", c.Index())
	}

	if !c.Set(1) {
		t.Error("Set(1) = false")
	}
	if c.Set(5) {
		t.Error("Set(5) = true")
	}

	c.Reset([]string{"x"})
	if c.Index() != -1 || c.Len() != 1 {
		t.Errorf("after Reset: index=%d len=%d", c.Index(), c.Len())
	}
}
