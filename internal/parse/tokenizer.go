package parse

import "strings"

// splitFields splits one logical record into fields using a two-state quote
// machine. Fields come back raw: surrounding quotes removed and doubled
// quotes unescaped, but not trimmed — trimming is the assembler's job.
//
// Unquoted state: the delimiter ends the current field, '"' switches to
// quoted without being emitted, anything else is appended.
//
// Quoted state: '""' emits a single literal '"' and stays quoted; a lone '"'
// switches back to unquoted; anything else is appended verbatim, including
// delimiter characters and embedded newlines.
//
// The field accumulated at end of record is always appended, even when empty,
// so a record ending in a delimiter yields a trailing empty field. Field
// counts that disagree with the header are the caller's problem.
func splitFields(record string, delim rune) []string {
	var fields []string
	var field strings.Builder
	sep := byte(delim)
	quoted := false

	for i := 0; i < len(record); i++ {
		c := record[i]

		if quoted {
			if c != '"' {
				field.WriteByte(c)
				continue
			}
			if i+1 < len(record) && record[i+1] == '"' {
				// Escaped quote: consume both, emit one.
				field.WriteByte('"')
				i++
				continue
			}
			quoted = false
			continue
		}

		switch c {
		case sep:
			fields = append(fields, field.String())
			field.Reset()
		case '"':
			quoted = true
		default:
			field.WriteByte(c)
		}
	}

	return append(fields, field.String())
}
