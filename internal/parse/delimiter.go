package parse

import "strings"

// Supported field delimiters. The detector never chooses anything else.
const (
	DelimiterTab       = '\t'
	DelimiterComma     = ','
	DelimiterSemicolon = ';'
)

// detectDelimiter chooses the field separator by inspecting the header
// record. It is evaluated exactly once per parse, against the header only,
// and the choice then applies uniformly to every record.
//
// Priority order:
//  1. Any literal tab is decisive, regardless of comma/semicolon counts.
//  2. Otherwise, semicolons strictly outnumbering commas (both counted
//     outside quoted spans, with the same parity toggle the splitter uses)
//     select semicolon.
//  3. Otherwise comma.
//
// This is a heuristic over one line, not a guarantee for adversarial headers.
func detectDelimiter(header string) rune {
	if strings.ContainsRune(header, DelimiterTab) {
		return DelimiterTab
	}

	commas, semicolons := 0, 0
	inQuotes := false
	for i := 0; i < len(header); i++ {
		switch header[i] {
		case '"':
			inQuotes = !inQuotes
		case DelimiterComma:
			if !inQuotes {
				commas++
			}
		case DelimiterSemicolon:
			if !inQuotes {
				semicolons++
			}
		}
	}

	if semicolons > commas {
		return DelimiterSemicolon
	}
	return DelimiterComma
}
