package parse

import (
	"reflect"
	"testing"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name   string
		record string
		delim  rune
		want   []string
	}{
		{
			name:   "plain fields",
			record: "a,b,c",
			delim:  DelimiterComma,
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "quoted field containing delimiter",
			record: `"a,b",c`,
			delim:  DelimiterComma,
			want:   []string{"a,b", "c"},
		},
		{
			name:   "escaped quotes",
			record: `"say ""hi""",x`,
			delim:  DelimiterComma,
			want:   []string{`say "hi"`, "x"},
		},
		{
			name:   "embedded newline survives inside quotes",
			record: "\"line1\nline2\",x",
			delim:  DelimiterComma,
			want:   []string{"line1\nline2", "x"},
		},
		{
			name:   "trailing delimiter yields trailing empty field",
			record: "a,b,",
			delim:  DelimiterComma,
			want:   []string{"a", "b", ""},
		},
		{
			name:   "leading delimiter yields leading empty field",
			record: ",a",
			delim:  DelimiterComma,
			want:   []string{"", "a"},
		},
		{
			name:   "empty record yields one empty field",
			record: "",
			delim:  DelimiterComma,
			want:   []string{""},
		},
		{
			name:   "quotes mid-field are consumed not emitted",
			record: `ab"cd"ef`,
			delim:  DelimiterComma,
			want:   []string{"abcdef"},
		},
		{
			name:   "tab delimiter",
			record: "a\tb\tc,d",
			delim:  DelimiterTab,
			want:   []string{"a", "b", "c,d"},
		},
		{
			name:   "semicolon delimiter",
			record: `a;"b;c";d`,
			delim:  DelimiterSemicolon,
			want:   []string{"a", "b;c", "d"},
		},
		{
			name:   "unterminated quote swallows the rest verbatim",
			record: `"open,rest`,
			delim:  DelimiterComma,
			want:   []string{"open,rest"},
		},
		{
			name:   "whitespace preserved, trimming is not this layer's job",
			record: ` a , b `,
			delim:  DelimiterComma,
			want:   []string{" a ", " b "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitFields(tt.record, tt.delim)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitFields(%q, %q) = %q, want %q", tt.record, tt.delim, got, tt.want)
			}
		})
	}
}
