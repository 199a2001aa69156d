package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "string-agg-roster",
		Category: "string-agg",
		Title:    "Department rosters",
		Notes: "STRING_AGG joins the last names of each department in row " +
			"order with a custom separator. NULL inputs would be skipped, " +
			"not rendered.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			return runTally(ctx, env, env.Employees,
				"department",
				"STRING_AGG(last_name, ', ') AS members, COUNT(*) AS headcount",
				report.Options{Title: "Who works where"})
		},
		Checks: []Check{
			RowCount(5),
			CellEquals(0, "members", "Vogel"),
			CellEquals(1, "members", "Anders, Castillo, Wei, Whitfield, Yilmaz"),
			CellEquals(1, "headcount", "5"),
			CellEquals(2, "members", "Haddad, Lindqvist, Sato"),
			CellEquals(3, "members", "O'Shea"),
			CellEquals(4, "members", "Petrov, Moreau, Reyes"),
		},
	})
}
