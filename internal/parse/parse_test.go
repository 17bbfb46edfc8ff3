package parse

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	table := Parse("name,age\nalice,30\nbob,41\n")

	wantCols := []string{"name", "age"}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantCols)
	}

	wantRows := []Row{
		{"name": "alice", "age": "30"},
		{"name": "bob", "age": "41"},
	}
	if !reflect.DeepEqual(table.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", table.Rows, wantRows)
	}

	if table.Delimiter != DelimiterComma {
		t.Errorf("Delimiter = %q, want %q", table.Delimiter, DelimiterComma)
	}
	if table.UnterminatedQuote {
		t.Error("UnterminatedQuote = true for well-formed input")
	}
}

func TestParse_QuotingExample(t *testing.T) {
	// The canonical quoting example: embedded delimiter and escaped quote.
	table := Parse("name,age\n\"Smith, John\",30\n\"O\"\"Brien\",41\n")

	wantRows := []Row{
		{"name": "Smith, John", "age": "30"},
		{"name": `O"Brien`, "age": "41"},
	}
	if !reflect.DeepEqual(table.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", table.Rows, wantRows)
	}
}

func TestParse_EmbeddedNewlineIsOneRow(t *testing.T) {
	table := Parse("note\n\"line1\nline2\"\n")

	if len(table.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(table.Rows))
	}
	if got := table.Rows[0]["note"]; got != "line1\nline2" {
		t.Errorf("note = %q, want %q", got, "line1\nline2")
	}
}

func TestParse_DelimiterDetection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{"tab even when values contain commas", "a\tb\tc\n1,5\t2\t3\n", DelimiterTab},
		{"semicolon header", "a;b;c\n1;2;3\n", DelimiterSemicolon},
		{"more commas than semicolons", "a,b;c\n1,2\n", DelimiterComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if table := Parse(tt.text); table.Delimiter != tt.want {
				t.Errorf("Delimiter = %q, want %q", table.Delimiter, tt.want)
			}
		})
	}
}

func TestParse_RaggedRows(t *testing.T) {
	table := Parse("a,b,c\n1\n1,2,3,4\n")

	wantRows := []Row{
		{"a": "1", "b": "", "c": ""},
		{"a": "1", "b": "2", "c": "3"},
	}
	if !reflect.DeepEqual(table.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", table.Rows, wantRows)
	}

	// Every row carries exactly the column set, no more, no less.
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			t.Errorf("row %d has %d keys, want %d", i, len(row), len(table.Columns))
		}
	}
}

func TestParse_BlankLinesExcluded(t *testing.T) {
	table := Parse("\na,b\n\n1,2\n   \n3,4\n\n")

	if len(table.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(table.Rows))
	}
}

func TestParse_EmptyInput(t *testing.T) {
	table := Parse("")

	if len(table.Columns) != 0 {
		t.Errorf("len(Columns) = %d, want 0", len(table.Columns))
	}
	if len(table.Rows) != 0 {
		t.Errorf("len(Rows) = %d, want 0", len(table.Rows))
	}
}

func TestParse_HeaderAndValuesTrimmed(t *testing.T) {
	table := Parse(" name , age \n alice , 30 \n")

	wantCols := []string{"name", "age"}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantCols)
	}
	want := Row{"name": "alice", "age": "30"}
	if !reflect.DeepEqual(table.Rows[0], want) {
		t.Errorf("Rows[0] = %v, want %v", table.Rows[0], want)
	}
}

func TestParse_EmptyColumnNamesPermitted(t *testing.T) {
	table := Parse("a,,c\n1,2,3\n")

	wantCols := []string{"a", "", "c"}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantCols)
	}
	if got := table.Rows[0][""]; got != "2" {
		t.Errorf("empty-named column = %q, want %q", got, "2")
	}
}

func TestParse_UnterminatedQuoteFlagged(t *testing.T) {
	table := Parse("a,b\n\"open,1\nleftover,2\n")

	if !table.UnterminatedQuote {
		t.Error("UnterminatedQuote = false, want true")
	}
	// The open quote absorbs the remainder into a single oversized row.
	if len(table.Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1", len(table.Rows))
	}
}

func TestParse_DuplicateColumnsOverwrite(t *testing.T) {
	// Default policy: last write wins when a duplicate name is assembled.
	table := Parse("id,id\n1,2\n")

	if got := table.Rows[0]["id"]; got != "2" {
		t.Errorf("id = %q, want %q (last write wins)", got, "2")
	}
}

func TestParseWithOptions_DuplicateColumnsReject(t *testing.T) {
	_, err := ParseWithOptions("id,name,id\n1,a,2\n", Options{DuplicateColumns: DuplicatesReject})

	if !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("err = %v, want ErrDuplicateColumn", err)
	}
}

func TestParse_TrailingDelimiterMakesEmptyTrailingColumn(t *testing.T) {
	table := Parse("a,b,\n1,2,\n")

	wantCols := []string{"a", "b", ""}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantCols)
	}
}
