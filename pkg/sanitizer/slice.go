package sanitizer

import "strings"

// DedupeFold trims each item and drops empties and case-insensitive repeats.
// The first spelling of a value wins.
func DedupeFold(items []string) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		item = TrimAndNormalize(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, item)
	}

	return result
}
