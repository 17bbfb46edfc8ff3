package parse

import "strings"

// splitRecords splits raw text into logical records, honoring quote state so
// that newlines inside quoted fields stay part of the accumulating record.
//
// Quote state is a bare parity toggle: every '"' flips it, with no attempt to
// distinguish an opening quote from a closing one. That is the same
// simplifying assumption the tokenizer makes; the doubled-quote escape is the
// tokenizer's concern, not the splitter's (a "" pair flips parity twice and
// lands back where it started).
//
// Outside quotes, "\r\n" collapses to one boundary and a bare '\n' or '\r'
// also ends the record. Records that are blank after trimming are discarded,
// including a dangling partial record at end of input.
//
// The returned flag reports whether quote state was still open when input ran
// out. An odd number of quotes means the tail of the file was absorbed into
// one oversized record; the content is still flushed, and callers can use the
// flag to warn about possibly malformed input.
func splitRecords(text string) ([]string, bool) {
	var records []string
	inQuotes := false
	start := 0

	flush := func(end int) {
		if strings.TrimSpace(text[start:end]) != "" {
			records = append(records, text[start:end])
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}

		switch c {
		case '\n':
			flush(i)
			start = i + 1
		case '\r':
			flush(i)
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}

	flush(len(text))

	return records, inQuotes
}
