package demos

import (
	"context"

	"github.com/FocuswithJustin/TallyBook/core/rank"
	"github.com/FocuswithJustin/TallyBook/core/report"
)

func init() {
	Register(&Demo{
		ID:       "ranking-salary",
		Category: "ranking",
		Title:    "Salary ranks within departments",
		Notes: "ROW_NUMBER, RANK, and DENSE_RANK over the same window show " +
			"how ties differ: the Senior Engineers share rank 2, the next " +
			"salary takes rank 4 but dense rank 3.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			w := rank.Window{
				PartitionBy: []string{"department"},
				OrderBy:     []rank.OrderSpec{{Col: "salary", Desc: true}},
			}
			t, err := rank.RowNumber(env.Employees, w, "row_num")
			if err != nil {
				return nil, err
			}
			if t, err = rank.Rank(t, w, "rank"); err != nil {
				return nil, err
			}
			if t, err = rank.DenseRank(t, w, "dense_rank"); err != nil {
				return nil, err
			}
			t, err = t.Select("last_name", "department", "salary", "row_num", "rank", "dense_rank")
			if err != nil {
				return nil, err
			}
			return report.FromTable(t, report.Options{Title: "Salary ranks by department"}), nil
		},
		Checks: []Check{
			RowCount(13),
			CellEquals(0, "last_name", "Vogel"),
			CellEquals(0, "department", "(null)"),
			CellEquals(0, "row_num", "1"),
			CellEquals(1, "last_name", "Anders"),
			CellEquals(1, "rank", "1"),
			CellEquals(2, "rank", "2"),
			CellEquals(3, "last_name", "Wei"),
			CellEquals(3, "row_num", "3"),
			CellEquals(3, "rank", "2"),
			CellEquals(3, "dense_rank", "2"),
			CellEquals(4, "rank", "4"),
			CellEquals(4, "dense_rank", "3"),
		},
	})

	Register(&Demo{
		ID:       "ranking-ntile",
		Category: "ranking",
		Title:    "Salary quartiles",
		Notes: "NTILE(4) deals the thirteen employees into quartiles of " +
			"4, 3, 3, and 3 in descending salary order; earlier tiles take " +
			"the extra row.",
		Run: func(ctx context.Context, env *Env) (*report.Report, error) {
			w := rank.Window{
				OrderBy: []rank.OrderSpec{{Col: "salary", Desc: true}},
			}
			t, err := rank.Ntile(env.Employees, w, 4, "quartile")
			if err != nil {
				return nil, err
			}
			t, err = t.Select("last_name", "salary", "quartile")
			if err != nil {
				return nil, err
			}
			return report.FromTable(t, report.Options{Title: "Salary quartiles"}), nil
		},
		Checks: []Check{
			RowCount(13),
			CellEquals(0, "last_name", "Anders"),
			CellEquals(0, "quartile", "1"),
			CellEquals(3, "last_name", "Haddad"),
			CellEquals(3, "quartile", "1"),
			CellEquals(4, "quartile", "2"),
			CellEquals(12, "last_name", "Vogel"),
			CellEquals(12, "quartile", "4"),
		},
	})
}
