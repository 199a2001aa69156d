package hrsystem

import (
	"context"
	"database/sql"
	"time"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// Money columns are declared TEXT so SQLite's numeric affinity cannot
// round the decimal literals.
const schemaSQL = `
DROP TABLE IF EXISTS employees;
DROP TABLE IF EXISTS departments;

CREATE TABLE departments (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL,
	region TEXT NOT NULL
);

CREATE TABLE employees (
	id         INTEGER PRIMARY KEY,
	rowguid    TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	department TEXT,
	job_title  TEXT NOT NULL,
	region     TEXT NOT NULL,
	salary     TEXT NOT NULL,
	bonus      TEXT,
	hire_date  TEXT NOT NULL,
	gender     TEXT NOT NULL
);
`

// Seed creates the HRSystem schema and loads the sample rows. Existing
// tables are dropped first, so seeding is repeatable.
func Seed(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return tberrors.Wrap(err, "create hrsystem schema")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return tberrors.Wrap(err, "begin seed transaction")
	}
	defer tx.Rollback()

	for _, d := range Departments() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO departments (id, name, region) VALUES (?, ?, ?)`,
			d.ID, d.Name, d.Region,
		); err != nil {
			return tberrors.Wrapf(err, "insert department %s", d.Name)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO employees
		(id, rowguid, first_name, last_name, department, job_title, region, salary, bonus, hire_date, gender)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return tberrors.Wrap(err, "prepare employee insert")
	}
	defer stmt.Close()

	for _, e := range Employees() {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.RowGUID.String(), e.FirstName, e.LastName,
			e.Department, e.JobTitle, e.Region,
			e.Salary.StringFixed(2), e.Bonus, e.HireDate.Format("2006-01-02"), e.Gender,
		); err != nil {
			return tberrors.Wrapf(err, "insert employee %s %s", e.FirstName, e.LastName)
		}
	}

	if err := tx.Commit(); err != nil {
		return tberrors.Wrap(err, "commit seed transaction")
	}
	return nil
}

// LoadEmployees reads the employees table back out of a seeded database
// as a core table, with money and date columns restored to their kinds.
func LoadEmployees(ctx context.Context, db *sql.DB) (*table.Table, error) {
	t, err := table.ReadSQL(ctx, db, `SELECT id, rowguid, first_name, last_name,
		department, job_title, region, salary, bonus, hire_date, gender
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, tberrors.Wrap(err, "load employees")
	}
	return restoreKinds(t)
}

// restoreKinds converts the TEXT-affinity money and date columns back
// to decimal and time values.
func restoreKinds(t *table.Table) (*table.Table, error) {
	schema := append(table.Schema{}, t.Schema()...)
	for i := range schema {
		switch schema[i].Name {
		case "salary", "bonus":
			schema[i].Kind = value.KindDecimal
		case "hire_date":
			schema[i].Kind = value.KindTime
		}
	}

	out := table.New(schema)
	for _, row := range t.Rows() {
		converted := make(table.Row, len(row))
		for i, cell := range row {
			if cell.IsNull() {
				converted[i] = cell
				continue
			}
			switch schema[i].Name {
			case "salary", "bonus":
				d := value.NewDecimalString(cell.AsString())
				if d.IsNull() {
					return nil, tberrors.NewType(schema[i].Name, "decimal text", cell.Kind().String())
				}
				converted[i] = d
			case "hire_date":
				parsed, err := time.Parse("2006-01-02", cell.AsString())
				if err != nil {
					return nil, tberrors.Wrapf(err, "parse hire_date %q", cell.AsString())
				}
				converted[i] = value.NewTime(parsed.UTC())
			default:
				converted[i] = cell
			}
		}
		if err := out.AppendRow(converted); err != nil {
			return nil, err
		}
	}
	return out, nil
}
