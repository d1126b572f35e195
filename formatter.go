package docgraph

import "strings"

// FormatUnits combines content units into one document. The source line
// comes first, then every unit under a "=== name ===" header, each followed
// by a blank line. Content is never truncated.
func FormatUnits(source string, units []ContentUnit) string {
	var sb strings.Builder
	sb.WriteString("URL: ")
	sb.WriteString(source)
	sb.WriteString("\n\n")

	for _, u := range units {
		sb.WriteString("=== ")
		sb.WriteString(u.Name)
		sb.WriteString(" ===\n")
		sb.WriteString(u.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
