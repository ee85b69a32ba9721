package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ValidationError describes the first problem found in imported settings.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid settings: %s %s", e.Path, e.Reason)
}

// EncodeSettings writes the history as indented settings JSON.
func EncodeSettings(h *History) ([]byte, error) {
	out := History{Customers: h.Customers, Tasks: h.Tasks}
	out.normalize()
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSettings parses and validates settings JSON. Either the whole
// document is accepted or a *ValidationError (or JSON syntax error) is
// returned; nothing is partially applied.
func DecodeSettings(data []byte) (*History, error) {
	var raw struct {
		Customers json.RawMessage `json:"customers"`
		Tasks     json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	customers, err := decodeEntries(raw.Customers, "customers", "name")
	if err != nil {
		return nil, err
	}
	tasks, err := decodeEntries(raw.Tasks, "tasks", "text")
	if err != nil {
		return nil, err
	}

	h := &History{
		Customers: make([]CustomerEntry, 0, len(customers)),
		Tasks:     make([]TaskEntry, 0, len(tasks)),
	}
	for _, e := range customers {
		h.Customers = append(h.Customers, CustomerEntry{Name: e.key, UseCount: e.useCount, LastUsed: e.lastUsed, SelectedAt: e.selectedAt})
	}
	for _, e := range tasks {
		h.Tasks = append(h.Tasks, TaskEntry{Text: e.key, UseCount: e.useCount, LastUsed: e.lastUsed, SelectedAt: e.selectedAt})
	}
	return h, nil
}

// maxUseCount is the largest integer a JSON number holds exactly.
const maxUseCount = 1<<53 - 1

type entryFields struct {
	key        string
	useCount   int
	lastUsed   time.Time
	selectedAt *time.Time
}

func decodeEntries(raw json.RawMessage, list, keyField string) ([]entryFields, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ValidationError{Path: list, Reason: "must be an array"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &ValidationError{Path: list, Reason: "must be an array"}
	}

	seen := make(map[string]bool, len(elems))
	out := make([]entryFields, 0, len(elems))
	for i, elem := range elems {
		path := fmt.Sprintf("%s[%d]", list, i)

		var obj map[string]any
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return nil, &ValidationError{Path: path, Reason: "must be an object"}
		}

		key, ok := obj[keyField].(string)
		if !ok || key == "" {
			return nil, &ValidationError{Path: path + "." + keyField, Reason: "must be a non-empty string"}
		}
		if seen[key] {
			return nil, &ValidationError{Path: path + "." + keyField, Reason: fmt.Sprintf("duplicates %q", key)}
		}
		seen[key] = true

		count, ok := obj["useCount"].(float64)
		if !ok {
			return nil, &ValidationError{Path: path + ".useCount", Reason: "must be a number"}
		}
		if count < 0 || count != math.Trunc(count) {
			return nil, &ValidationError{Path: path + ".useCount", Reason: "must be a non-negative integer"}
		}
		if count > maxUseCount {
			return nil, &ValidationError{Path: path + ".useCount", Reason: "is too large"}
		}

		lastUsed, err := parseTimestamp(obj["lastUsed"])
		if err != nil {
			return nil, &ValidationError{Path: path + ".lastUsed", Reason: err.Error()}
		}

		var selectedAt *time.Time
		if v, present := obj["selectedAt"]; present && v != nil {
			t, err := parseTimestamp(v)
			if err != nil {
				return nil, &ValidationError{Path: path + ".selectedAt", Reason: err.Error()}
			}
			selectedAt = &t
		}

		out = append(out, entryFields{key: key, useCount: int(count), lastUsed: lastUsed, selectedAt: selectedAt})
	}
	return out, nil
}

func parseTimestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, errors.New("must be a timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.New("must be an RFC 3339 timestamp")
	}
	return t, nil
}
