// Package strings holds small helpers for list-valued settings.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated setting such as KAFKA_BROKERS. Entries
// are trimmed; blanks and repeats are dropped. Order is preserved.
func SplitList(raw string) []string {
	return DedupeAndTrim(strings.Split(raw, ","))
}

// DedupeAndTrim trims each value and drops empties and duplicates.
func DedupeAndTrim(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
