package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "rollup-department",
		Category: "rollup",
		Title:    "Department salary rollup",
		Notes: "ROLLUP appends a grand total after the per-department rows. " +
			"The summary column and grouping_id separate the employee with no " +
			"department from the total row, even though both print a placeholder.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"ROLLUP(department)",
				"SUM(salary) AS total_salary, COUNT(*) AS headcount",
				report.Options{Title: "Salary by department"})
		},
		Checks: []Check{
			RowCount(6),
			CellEquals(0, "department", "(null)"),
			CellEquals(0, "grouping_id", "0"),
			CellEquals(1, "department", "Engineering"),
			CellEquals(1, "total_salary", "413500"),
			CellEquals(1, "headcount", "5"),
			CellEquals(5, "department", "All departments"),
			CellEquals(5, "total_salary", "947650"),
			CellEquals(5, "grouping_id", "1"),
			LabelEquals(5, "Grand Total"),
		},
	})

	Register(&Demo{
		ID:       "rollup-two-level",
		Category: "rollup",
		Title:    "Department and job title hierarchy",
		Notes: "A two-column ROLLUP subtotals at every prefix of the column " +
			"list: each department gets a subtotal over its job titles before " +
			"the grand total closes the report.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"ROLLUP(department, job_title)",
				"SUM(salary) AS total",
				report.Options{Title: "Salary by department and job title"})
		},
		Checks: []Check{
			RowCount(15),
			CellEquals(4, "job_title", "Senior Engineer"),
			CellEquals(4, "total", "175000"),
			CellEquals(5, "department", "Engineering"),
			CellEquals(5, "job_title", "All job_titles"),
			CellEquals(5, "total", "413500"),
			LabelEquals(5, "Subtotal by department"),
			CellEquals(8, "total", "213400"),
			CellEquals(14, "total", "947650"),
			CellEquals(14, "grouping_id", "3"),
			LabelEquals(14, "Grand Total"),
		},
	})
}
