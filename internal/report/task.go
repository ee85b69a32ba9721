package report

import (
	"regexp"
	"strings"
)

var (
	// detailSuffixRe strips the last "(...)" group for history keys.
	detailSuffixRe = regexp.MustCompile(`\s*\([^)]*\)$`)
	// splitTaskRe separates "main(detail)" for editing. Both parts must be
	// non-empty, matching the way tasks are joined.
	splitTaskRe = regexp.MustCompile(`^(.+?)\((.+?)\)$`)
)

// JoinTask builds a task line. The detail is wrapped in parentheses only when
// it is non-empty after trimming.
func JoinTask(main, detail string) string {
	main = strings.TrimSpace(main)
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return main
	}
	return main + "(" + detail + ")"
}

// SplitTask is the inverse of JoinTask. Text with parentheses inside the
// detail does not survive the round trip; the first "(" wins.
func SplitTask(task string) (main, detail string) {
	m := splitTaskRe.FindStringSubmatch(task)
	if m == nil {
		return task, ""
	}
	return m[1], m[2]
}

// MainText returns the task with any trailing "(detail)" removed and
// surrounding whitespace trimmed. This is the key stored in task history.
func MainText(task string) string {
	return strings.TrimSpace(detailSuffixRe.ReplaceAllString(task, ""))
}
