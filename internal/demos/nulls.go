package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

func init() {
	Register(&Demo{
		ID:       "null-handling-bonus",
		Category: "nulls",
		Title:    "Aggregates over NULL bonuses",
		Notes: "COUNT(*) counts rows but COUNT(bonus) skips NULLs, and SUM " +
			"over a group with no non-NULL bonus is NULL rather than zero.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"department",
				"COUNT(*) AS headcount, COUNT(bonus) AS with_bonus, SUM(bonus) AS bonus_total",
				report.Options{Title: "Bonus coverage by department"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(0, "headcount", "1"),
			CellEquals(0, "with_bonus", "0"),
			CellEquals(0, "bonus_total", "(null)"),
			CellEquals(1, "with_bonus", "3"),
			CellEquals(1, "bonus_total", "9500"),
			CellEquals(4, "bonus_total", "21900"),
		},
	})

	Register(&Demo{
		ID:       "null-handling-grouping",
		Category: "nulls",
		Title:    "NULL department versus grand total",
		Notes: "Both the NULL department row and a rolled-up total print a " +
			"placeholder in the department cell; grouping_id and the summary " +
			"label are what tell them apart.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"ROLLUP(department)",
				"COUNT(*) AS headcount",
				report.Options{Title: "Headcount by department"})
		},
		Checks: []Check{
			RowCount(6),
			CellEquals(0, "department", "(null)"),
			CellEquals(0, "grouping_id", "0"),
			LabelEquals(0, ""),
			CellEquals(5, "department", "All departments"),
			CellEquals(5, "grouping_id", "1"),
			LabelEquals(5, "Grand Total"),
			XPathCount("//row[@label='Grand Total']", 1),
			XPathCount("//row[@grouping_id='0']", 5),
		},
	})

	Register(&Demo{
		ID:       "null-handling-coalesce",
		Category: "nulls",
		Title:    "COALESCE before grouping",
		Notes: "Deriving COALESCE(department, 'Unassigned') folds the NULL " +
			"department into a named bucket before grouping, the usual fix " +
			"when a report should not show NULL keys.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			dep := mustColumn(env.Employees, "department")
			fallback := value.NewString("Unassigned")
			t, err := deriveScalar(env, env.Employees,
				table.Column{Name: "department_display", Kind: value.KindString}, "COALESCE",
				func(row table.Row) []value.Value {
					return []value.Value{row[dep], fallback}
				})
			if err != nil {
				return nil, err
			}
			return runTally(ctx, env, t,
				"department_display",
				"SUM(salary) AS total, COUNT(*) AS headcount",
				report.Options{Title: "Salary by department, unassigned included"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(0, "department_display", "Engineering"),
			CellEquals(4, "department_display", "Unassigned"),
			CellEquals(4, "total", "54000"),
			CellEquals(4, "headcount", "1"),
		},
	})
}
