package parse

import (
	"reflect"
	"testing"
)

func TestSplitRecords(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      []string
		openQuote bool
	}{
		{
			name: "unix newlines",
			text: "a,b\nc,d\ne,f",
			want: []string{"a,b", "c,d", "e,f"},
		},
		{
			name: "crlf collapsed to one boundary",
			text: "a,b\r\nc,d\r\n",
			want: []string{"a,b", "c,d"},
		},
		{
			name: "bare carriage return ends record",
			text: "a,b\rc,d",
			want: []string{"a,b", "c,d"},
		},
		{
			name: "newline inside quotes is literal content",
			text: "a,b\n\"line1\nline2\",c",
			want: []string{"a,b", "\"line1\nline2\",c"},
		},
		{
			name: "crlf inside quotes is literal content",
			text: "h\n\"x\r\ny\"",
			want: []string{"h", "\"x\r\ny\""},
		},
		{
			name: "blank lines discarded everywhere",
			text: "\n\na,b\n\n   \nc,d\n\n",
			want: []string{"a,b", "c,d"},
		},
		{
			name: "whitespace-only tail discarded",
			text: "a,b\n   ",
			want: []string{"a,b"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name:      "unterminated quote absorbs the rest of the input",
			text:      "a,b\n\"open\nmore,stuff",
			want:      []string{"a,b", "\"open\nmore,stuff"},
			openQuote: true,
		},
		{
			name:      "lone quote still flushes tail",
			text:      "\"",
			want:      []string{"\""},
			openQuote: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, open := splitRecords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitRecords(%q) = %q, want %q", tt.text, got, tt.want)
			}
			if open != tt.openQuote {
				t.Errorf("splitRecords(%q) openQuote = %v, want %v", tt.text, open, tt.openQuote)
			}
		})
	}
}

func TestSplitRecords_BalancedQuotesCloseState(t *testing.T) {
	// An even number of quotes leaves the parity flag closed even when the
	// quotes do not form well-formed fields.
	_, open := splitRecords(`a"b"c`)
	if open {
		t.Error("splitRecords: openQuote = true for balanced quotes")
	}
}
