// Package suggest ranks history entries for the autocomplete popup.
package suggest

import (
	"sort"
	"strings"
	"time"
)

// Limit is the maximum number of suggestions returned.
const Limit = 10

// Entry is a ranked history record (a customer name or a task main text).
type Entry interface {
	Key() string
	Uses() int
	// RecencyAt is the last explicit selection, falling back to last use.
	RecencyAt() time.Time
}

// Suggest returns up to Limit keys from history.
//
// With an empty prefix, entries are ordered by recency only. Otherwise only
// entries whose key contains prefix (case-insensitive, anywhere in the key)
// survive, ordered by use count with recency as the tie breaker.
// The history slice itself is not reordered.
func Suggest[E Entry](history []E, prefix string) []string {
	candidates := make([]E, 0, len(history))

	if prefix == "" {
		candidates = append(candidates, history...)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].RecencyAt().After(candidates[j].RecencyAt())
		})
	} else {
		needle := strings.ToLower(prefix)
		for _, e := range history {
			if strings.Contains(strings.ToLower(e.Key()), needle) {
				candidates = append(candidates, e)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if a.Uses() != b.Uses() {
				return a.Uses() > b.Uses()
			}
			return a.RecencyAt().After(b.RecencyAt())
		})
	}

	if len(candidates) > Limit {
		candidates = candidates[:Limit]
	}

	keys := make([]string, len(candidates))
	for i, e := range candidates {
		keys[i] = e.Key()
	}
	return keys
}
