// Package report converts between structured daily report data and the
// canonical indented text form that users paste into chat or mail.
//
// The text form is a three-level bullet list. Each section starts with a
// header bullet such as "- 2024/01/15実績" or "- 2024/01/16以降の予定",
// customers are bullets indented by exactly four spaces and their tasks are
// bullets indented by exactly eight. Parse keys off those exact widths, so
// Render and Parse must stay in lockstep.
package report

import "strings"

const (
	// ResultSuffix follows the date in the results header line.
	ResultSuffix = "実績"
	// PlanSuffix follows the date in the plans header line.
	PlanSuffix = "以降の予定"

	itemIndent = "    "
	taskIndent = "        "
)

// Item is one customer or project with its ordered task lines.
// A task is either "main" or "main(detail)".
type Item struct {
	Customer string   `json:"customer"`
	Tasks    []string `json:"tasks"`
}

// Render produces the text report for the given dates and sections.
// Dates are YYYY-MM-DD. Empty sections are omitted entirely; when both are
// empty the result is the empty string.
func Render(resultDate, planDate string, results, plans []Item) string {
	var b strings.Builder

	if len(results) > 0 {
		writeSection(&b, FormatDisplayDate(resultDate)+ResultSuffix, results)
		b.WriteString("\n")
	}

	if len(plans) > 0 {
		writeSection(&b, FormatDisplayDate(planDate)+PlanSuffix, plans)
	}

	return b.String()
}

func writeSection(b *strings.Builder, header string, items []Item) {
	b.WriteString("- ")
	b.WriteString(header)
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(itemIndent + "- ")
		b.WriteString(item.Customer)
		b.WriteString("\n")
		for _, task := range item.Tasks {
			b.WriteString(taskIndent + "- ")
			b.WriteString(task)
			b.WriteString("\n")
		}
	}
}
