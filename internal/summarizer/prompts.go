package summarizer

import "strings"

const instruction = `Write a concise summary for diverse entries, eliminating duplicates, URLs, and emojis, ensuring clarity and coherence within 170 characters without generating new entries`

// BuildPrompt renders the instruction followed by the description list on its own line.
func BuildPrompt(descriptions []string) string {
	return instruction + "\n" + renderList(descriptions)
}

// renderList formats descriptions as a bracketed list of quoted strings, e.g. ['a', 'b'].
func renderList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
	b.WriteByte(']')
	return b.String()
}

// quote prefers single quotes and switches to double quotes when that avoids escaping.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
