package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "cube-department-gender",
		Category: "cube",
		Title:    "Department by gender cross-tab",
		Notes: "CUBE subtotals every combination of its columns, so the " +
			"report carries per-department totals, per-gender totals across " +
			"departments, and one grand total.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"CUBE(department, gender)",
				"SUM(salary) AS total, COUNT(*) AS headcount",
				report.Options{Title: "Salary by department and gender"})
		},
		Checks: []Check{
			RowCount(16),
			CellEquals(2, "department", "Engineering"),
			CellEquals(2, "gender", "F"),
			CellEquals(2, "total", "238500"),
			CellEquals(2, "headcount", "3"),
			CellEquals(4, "total", "413500"),
			LabelEquals(4, "Subtotal by department"),
			CellEquals(13, "department", "All departments"),
			CellEquals(13, "gender", "F"),
			CellEquals(13, "total", "498150"),
			CellEquals(13, "headcount", "7"),
			LabelEquals(13, "Subtotal by gender"),
			CellEquals(15, "grouping_id", "3"),
			CellEquals(15, "headcount", "13"),
		},
	})
}
