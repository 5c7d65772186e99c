package entity

import "strings"

// Tags are a single comma-delimited string at rest and an ordered []string in
// memory. The conversion lives here, at the storage boundary, and nowhere
// else.

// EncodeTags folds an ordered tag list into its persisted form.
func EncodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

// DecodeTags restores the ordered tag list from its persisted form, trimming
// whitespace and dropping empty entries. An empty string decodes to nil.
func DecodeTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
