// Package export flattens the submissions of one form into a table and
// serializes it as CSV for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"clubforms-backend/internal/domain"
)

// SubmittedAtColumn is appended after the schema columns.
const SubmittedAtColumn = domain.SubmittedAtColumn

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ToTable builds the export table. subs must belong to def; they are written
// in the order given, which callers keep as ascending id. A form with no
// submissions yields the header and no rows.
func ToTable(def *domain.FormDefinition, subs []domain.Submission) Table {
	names := def.FieldNames()
	columns := append(names[:len(names):len(names)], SubmittedAtColumn)

	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		row := make([]string, len(columns))
		for i, name := range names {
			row[i] = s.Values[name]
		}
		row[len(names)] = s.SubmittedAt.UTC().Format(time.RFC3339)
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func ToCSV(t Table) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseCSV reads a document produced by WriteCSV back into a table.
func ParseCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("parse csv: missing header")
	}
	return Table{Columns: records[0], Rows: records[1:]}, nil
}

// Filename is the download name for an owner's responses, following the
// "<event>_responses.csv" / "<club>_recruitment_responses.csv" convention.
func Filename(ownerName string, kind domain.OwnerKind) string {
	ownerName = domain.SafeFileName(ownerName)
	if kind == domain.OwnerKindClub {
		return ownerName + "_recruitment_responses.csv"
	}
	return ownerName + "_responses.csv"
}
