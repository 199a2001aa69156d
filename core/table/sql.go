package table

import (
	"context"
	"database/sql"
	"time"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// ReadSQL runs a query and materializes the result set as a Table.
// Column kinds are inferred from the first non-NULL cell seen in each
// column; columns that are NULL throughout report as text.
func ReadSQL(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tberrors.Wrap(err, "query")
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, tberrors.Wrap(err, "columns")
	}

	schema := make(Schema, len(names))
	kinds := make([]value.Kind, len(names))
	for i, name := range names {
		schema[i] = Column{Name: name, Kind: value.KindString}
		kinds[i] = value.KindNull
	}

	var data []Row
	scan := make([]interface{}, len(names))
	for rows.Next() {
		ptrs := make([]interface{}, len(names))
		for i := range scan {
			ptrs[i] = &scan[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, tberrors.Wrap(err, "scan")
		}
		row := make(Row, len(names))
		for i, raw := range scan {
			v := fromDriver(raw)
			row[i] = v
			if kinds[i] == value.KindNull && !v.IsNull() {
				kinds[i] = v.Kind()
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, tberrors.Wrap(err, "rows")
	}

	for i, k := range kinds {
		if k != value.KindNull {
			schema[i].Kind = k
		}
	}
	t := New(schema)
	t.rows = data
	return t, nil
}

// fromDriver converts a database/sql driver value to a core value.
func fromDriver(raw interface{}) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null()
	case int64:
		return value.NewInt(v)
	case float64:
		return value.NewFloat(v)
	case bool:
		return value.NewBool(v)
	case time.Time:
		return value.NewTime(v)
	case []byte:
		return value.NewString(string(v))
	case string:
		return value.NewString(v)
	default:
		return value.Null()
	}
}
