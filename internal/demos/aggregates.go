package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "aggregate-salary-stats",
		Category: "aggregates",
		Title:    "Salary statistics per department",
		Notes: "A plain GROUP BY with the classic aggregate set. AVG keeps " +
			"six decimal places of precision and the NULL department groups " +
			"its single employee like any other value.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"department",
				"SUM(salary) AS total, AVG(salary) AS average, MIN(salary) AS low, MAX(salary) AS high, COUNT(*) AS headcount",
				report.Options{Title: "Salary statistics by department"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(0, "department", "(null)"),
			CellEquals(0, "headcount", "1"),
			CellEquals(1, "average", "82700"),
			CellEquals(1, "low", "69500"),
			CellEquals(1, "high", "98000"),
			CellEquals(2, "average", "71133.333333"),
			CellEquals(4, "average", "64916.666667"),
		},
	})

	Register(&Demo{
		ID:       "aggregate-distinct",
		Category: "aggregates",
		Title:    "Distinct counts",
		Notes: "COUNT(DISTINCT job_title) collapses duplicates before " +
			"counting, so Engineering's five employees spread across three " +
			"titles count as three.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"department",
				"COUNT(DISTINCT job_title) AS titles, COUNT(*) AS headcount",
				report.Options{Title: "Job title variety by department"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(0, "titles", "1"),
			CellEquals(1, "titles", "3"),
			CellEquals(1, "headcount", "5"),
			CellEquals(2, "titles", "2"),
			CellEquals(4, "titles", "2"),
		},
	})

	Register(&Demo{
		ID:       "aggregate-variance",
		Category: "aggregates",
		Title:    "Salary spread per department",
		Notes: "VAR needs at least two values and returns NULL for the " +
			"one-employee groups, while VARP treats a lone value as a " +
			"population with zero spread.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"department",
				"VAR(salary) AS var_sample, VARP(salary) AS var_pop, STDEV(salary) AS sd",
				report.Options{Title: "Salary spread by department"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(1, "var_sample", "1.47825e+08"),
			CellEquals(1, "var_pop", "1.1826e+08"),
			CellEquals(3, "var_sample", "(null)"),
			CellEquals(3, "var_pop", "0"),
			CellEquals(0, "var_sample", "(null)"),
		},
	})
}
