package core

import "strings"

// ParseLine splits one CSV line into trimmed fields.
//
// Commas inside double quotes do not split, and a doubled quote inside a
// quoted field is a literal quote. Quote state runs across the whole line,
// so an unterminated quote absorbs everything after it into the current
// field. ParseLine never fails.
//
// encoding/csv is not used here: it rejects bare quotes and stray
// characters after a closing quote, both of which must degrade to
// best-effort fields instead.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}
