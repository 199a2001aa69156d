package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "grouping-id-decode",
		Category: "grouping-id",
		Title:    "Decoding grouping_id masks",
		Notes: "grouping_id packs one bit per grouping column with the first " +
			"column in the most significant position, so ROLLUP(region, " +
			"department, job_title) emits masks 0, 1, 3, and 7 and each value " +
			"names a subtotal depth.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"ROLLUP(region, department, job_title)",
				"COUNT(*) AS headcount",
				report.Options{Title: "Headcount by region, department, and job title"})
		},
		Checks: []Check{
			RowCount(21),
			CellEquals(11, "region", "Europe"),
			CellEquals(11, "headcount", "7"),
			CellEquals(11, "grouping_id", "3"),
			LabelEquals(11, "Subtotal by region"),
			CellEquals(19, "region", "North America"),
			CellEquals(19, "headcount", "6"),
			CellEquals(20, "grouping_id", "7"),
			CellEquals(20, "headcount", "13"),
			LabelEquals(20, "Grand Total"),
			XPathCount("//row[@grouping_id='0']", 11),
			XPathCount("//row[@grouping_id='1']", 7),
			XPathCount("//row[@grouping_id='3']", 2),
			XPathCount("//row[@grouping_id='7']", 1),
			XPathCount("//row[@label='Grand Total']", 1),
		},
	})
}
