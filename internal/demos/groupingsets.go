package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "grouping-sets-region-department",
		Category: "grouping-sets",
		Title:    "Hand-picked grouping sets",
		Notes: "GROUPING SETS lists exactly the groupings to compute: totals " +
			"by region, totals by department, and a grand total, with no " +
			"region-and-department detail rows in between.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"GROUPING SETS ((region), (department), ())",
				"SUM(salary) AS total",
				report.Options{Title: "Salary by region and by department"})
		},
		Checks: []Check{
			RowCount(8),
			CellEquals(0, "region", "Europe"),
			CellEquals(0, "department", "All departments"),
			CellEquals(0, "total", "466900"),
			LabelEquals(0, "Subtotal by region"),
			CellEquals(1, "region", "North America"),
			CellEquals(1, "total", "480750"),
			CellEquals(2, "department", "(null)"),
			CellEquals(2, "total", "54000"),
			LabelEquals(2, "Subtotal by department"),
			CellEquals(7, "total", "947650"),
			CellEquals(7, "grouping_id", "3"),
			LabelEquals(7, "Grand Total"),
		},
	})
}
