package ampsave

import "strings"

// SplitAndTrim splits comma-separated flag values, dropping blanks and
// repeats while keeping first-seen order.
func SplitAndTrim(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, field := range fields {
		for _, part := range strings.Split(field, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if _, exists := seen[trimmed]; exists {
				continue
			}
			seen[trimmed] = struct{}{}
			out = append(out, trimmed)
		}
	}

	return out
}
