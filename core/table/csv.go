package table

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// ReadCSV reads a CSV document with a header record and materializes
// it as a Table. Column kinds are inferred from the cells: a column
// whose non-empty cells all parse as integers is int, as numbers is
// decimal, as yyyy-mm-dd dates is time; anything else stays text.
// Empty cells are NULL.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, tberrors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "csv has no header record")
	}
	header := records[0]
	body := records[1:]

	kinds := make([]value.Kind, len(header))
	for i := range kinds {
		kinds[i] = value.KindNull
	}
	for _, rec := range body {
		for i, cell := range rec {
			if cell == "" {
				continue
			}
			kinds[i] = widenKind(kinds[i], inferKind(cell))
		}
	}

	schema := make(Schema, len(header))
	for i, name := range header {
		k := kinds[i]
		if k == value.KindNull {
			k = value.KindString
		}
		schema[i] = Column{Name: name, Kind: k}
	}

	t := New(schema)
	for _, rec := range body {
		row := make(Row, len(header))
		for i, cell := range rec {
			v, err := parseCell(cell, schema[i].Kind)
			if err != nil {
				return nil, tberrors.Wrapf(err, "column %s", schema[i].Name)
			}
			row[i] = v
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func inferKind(cell string) value.Kind {
	if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return value.KindInt
	}
	if !value.NewDecimalString(cell).IsNull() {
		return value.KindDecimal
	}
	if _, err := time.Parse("2006-01-02", cell); err == nil {
		return value.KindTime
	}
	return value.KindString
}

// widenKind merges the kind seen so far with the kind of the next
// cell: ints widen to decimal, anything else conflicting falls back
// to text.
func widenKind(have, next value.Kind) value.Kind {
	switch {
	case have == value.KindNull:
		return next
	case have == next:
		return have
	case have == value.KindInt && next == value.KindDecimal,
		have == value.KindDecimal && next == value.KindInt:
		return value.KindDecimal
	default:
		return value.KindString
	}
}

func parseCell(cell string, kind value.Kind) (value.Value, error) {
	if cell == "" {
		return value.Null(), nil
	}
	switch kind {
	case value.KindInt:
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return value.Null(), err
		}
		return value.NewInt(n), nil
	case value.KindDecimal:
		d := value.NewDecimalString(cell)
		if d.IsNull() {
			return value.Null(), tberrors.NewType("csv cell", "decimal text", cell)
		}
		return d, nil
	case value.KindTime:
		ts, err := time.Parse("2006-01-02", cell)
		if err != nil {
			return value.Null(), err
		}
		return value.NewTime(ts.UTC()), nil
	default:
		return value.NewString(cell), nil
	}
}
