// Package parse implements the delimited-text (CSV/TSV) ingestion parser.
//
// The parser materializes a full table from a single in-memory text payload.
// It is deliberately tolerant: empty input yields an empty table, ragged rows
// are padded or truncated to the header width, and unbalanced quotes degrade
// to an oversized record rather than an error. Callers are expected to have
// already bounded input size and verified file type before handing text in.
//
// Three layers sit under the assembler: a line splitter that honors quote
// state so embedded newlines do not break records, a delimiter detector that
// inspects the header record, and a row tokenizer that splits one record into
// fields with a two-state quote machine.
package parse

import (
	"errors"
	"fmt"
	"strings"
)

// Row maps column names to trimmed field values. Every row produced by Parse
// carries exactly the table's column names as keys; columns the source record
// did not cover hold MissingFieldValue.
type Row map[string]string

// Table is the parsed output: ordered column names plus rows in source order.
// A Table is immutable once returned and holds no reference to the input text.
type Table struct {
	// Columns are the trimmed header fields, in header order. Names are not
	// deduplicated; empty names are permitted.
	Columns []string

	// Rows hold one entry per non-blank data record, in source order.
	Rows []Row

	// Delimiter is the separator chosen from the header record and applied
	// to every record of this table.
	Delimiter rune

	// UnterminatedQuote reports that the input ended while quote state was
	// still open. The parse still succeeds, but the final record may have
	// absorbed the remainder of the file; callers should treat the input as
	// possibly malformed.
	UnterminatedQuote bool
}

// Ragged rows are normalized by policy, not rejected: rows shorter than the
// header are padded, rows longer than the header are silently truncated.
const (
	// MissingFieldValue fills columns that a short row does not reach.
	MissingFieldValue = ""
)

// DuplicateColumnPolicy controls how duplicate header names are handled.
type DuplicateColumnPolicy int

const (
	// DuplicatesOverwrite keeps duplicate column names as-is. Because rows
	// are keyed by name, a later duplicate silently overwrites the earlier
	// one when the row is assembled (last write wins).
	DuplicatesOverwrite DuplicateColumnPolicy = iota

	// DuplicatesReject fails the parse when two trimmed header names match.
	DuplicatesReject
)

// ErrDuplicateColumn is returned by ParseWithOptions under DuplicatesReject
// when the header contains the same trimmed name twice.
var ErrDuplicateColumn = errors.New("duplicate column name")

// Options configures optional parse behavior.
type Options struct {
	// DuplicateColumns selects the duplicate header policy.
	// Default: DuplicatesOverwrite.
	DuplicateColumns DuplicateColumnPolicy
}

// Parse parses delimited text into a Table using default options.
// It never fails: structurally odd input is normalized per the policies
// documented on Table and MissingFieldValue.
func Parse(text string) *Table {
	t, _ := ParseWithOptions(text, Options{})
	return t
}

// ParseWithOptions parses delimited text into a Table.
//
// The first logical record is the header: its fields are trimmed into column
// names and fix the column count for the whole parse. Every subsequent record
// is tokenized with the same delimiter and mapped onto the column names in
// order. Zero logical records yield an empty table, which is a success.
//
// The only possible error is ErrDuplicateColumn under DuplicatesReject.
func ParseWithOptions(text string, opts Options) (*Table, error) {
	records, openQuote := splitRecords(text)
	if len(records) == 0 {
		return &Table{}, nil
	}

	delim := detectDelimiter(records[0])

	header := splitFields(records[0], delim)
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	if opts.DuplicateColumns == DuplicatesReject {
		seen := make(map[string]struct{}, len(columns))
		for _, name := range columns {
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
			}
			seen[name] = struct{}{}
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		fields := splitFields(record, delim)

		row := make(Row, len(columns))
		for i, name := range columns {
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			} else {
				row[name] = MissingFieldValue
			}
		}
		// Fields beyond the column count are dropped.
		rows = append(rows, row)
	}

	return &Table{
		Columns:           columns,
		Rows:              rows,
		Delimiter:         delim,
		UnterminatedQuote: openQuote,
	}, nil
}
