package demos

import (
	"context"
	"time"

	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

func init() {
	Register(&Demo{
		ID:       "date-buckets-hire-years",
		Category: "dates",
		Title:    "Hiring by year",
		Notes: "Bucketing rows by a derived YEAR(hire_date) column turns a " +
			"date column into a rollup dimension.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			hd := mustColumn(env.Employees, "hire_date")
			t, err := deriveScalar(env, env.Employees,
				table.Column{Name: "hire_year", Kind: value.KindInt}, "YEAR",
				func(row table.Row) []value.Value {
					return []value.Value{row[hd]}
				})
			if err != nil {
				return nil, err
			}
			return runTally(ctx, env, t,
				"ROLLUP(hire_year)",
				"COUNT(*) AS hires",
				report.Options{Title: "Hiring by year"})
		},
		Checks: []Check{
			RowCount(9),
			CellEquals(0, "hire_year", "2015"),
			CellEquals(0, "hires", "2"),
			CellEquals(7, "hire_year", "2022"),
			CellEquals(7, "hires", "1"),
			CellEquals(8, "hire_year", "All hire_years"),
			CellEquals(8, "hires", "13"),
			LabelEquals(8, "Grand Total"),
		},
	})

	Register(&Demo{
		ID:       "date-buckets-quarters",
		Category: "dates",
		Title:    "Hiring by calendar quarter",
		Notes: "DATENAME(quarter, hire_date) buckets hires by the quarter " +
			"of the year they joined, regardless of the year itself.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			hd := mustColumn(env.Employees, "hire_date")
			part := value.NewString("quarter")
			t, err := deriveScalar(env, env.Employees,
				table.Column{Name: "hire_quarter", Kind: value.KindString}, "DATENAME",
				func(row table.Row) []value.Value {
					return []value.Value{part, row[hd]}
				})
			if err != nil {
				return nil, err
			}
			return runTally(ctx, env, t,
				"ROLLUP(hire_quarter)",
				"COUNT(*) AS hires, AVG(salary) AS avg_salary",
				report.Options{Title: "Hiring by quarter"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(0, "hire_quarter", "1"),
			CellEquals(0, "hires", "4"),
			CellEquals(0, "avg_salary", "81750"),
			CellEquals(1, "avg_salary", "64416.666667"),
			CellEquals(3, "avg_salary", "69000"),
			CellEquals(4, "hires", "13"),
			LabelEquals(4, "Grand Total"),
		},
	})

	Register(&Demo{
		ID:       "date-buckets-tenure",
		Category: "dates",
		Title:    "Headcount by years of service",
		Notes: "DATEDIFF(year, hire_date, ...) counts calendar year " +
			"boundaries against a fixed reference date of 2025-01-01, so the " +
			"buckets stay stable no matter when the demo runs.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			hd := mustColumn(env.Employees, "hire_date")
			part := value.NewString("year")
			asOf := value.NewTime(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
			t, err := deriveScalar(env, env.Employees,
				table.Column{Name: "years_of_service", Kind: value.KindInt}, "DATEDIFF",
				func(row table.Row) []value.Value {
					return []value.Value{part, row[hd], asOf}
				})
			if err != nil {
				return nil, err
			}
			return runTally(ctx, env, t,
				"years_of_service",
				"COUNT(*) AS employees",
				report.Options{Title: "Tenure as of 2025-01-01"})
		},
		Checks: []Check{
			RowCount(8),
			CellEquals(0, "years_of_service", "3"),
			CellEquals(0, "employees", "1"),
			CellEquals(4, "years_of_service", "7"),
			CellEquals(4, "employees", "2"),
			CellEquals(7, "years_of_service", "10"),
			CellEquals(7, "employees", "2"),
		},
	})
}
