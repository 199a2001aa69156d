package demos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/xml"
)

// Version is the verification report format version.
const Version = "1.0.0"

// Status values for verification reports.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Check types.
const (
	CheckRun         = "RUN"
	CheckCellEquals  = "CELL_EQUALS"
	CheckRowCount    = "ROW_COUNT"
	CheckLabelEquals = "LABEL_EQUALS"
	CheckXPathCount  = "XPATH_COUNT"
)

// Check is one expectation about a demo's rendered report.
type Check struct {
	Type  string
	Label string
	eval  func(r *report.Report) error
}

// CellEquals expects the named column of row idx to render as want.
// Grouping and aggregate columns resolve by name, the label column by
// the report's label header, and "grouping_id" as the mask integer.
func CellEquals(idx int, column, want string) Check {
	return Check{
		Type:  CheckCellEquals,
		Label: fmt.Sprintf("row %d %s = %s", idx, column, want),
		eval: func(r *report.Report) error {
			got, err := cellValue(r, idx, column)
			if err != nil {
				return err
			}
			if got != want {
				return fmt.Errorf("got %q, want %q", got, want)
			}
			return nil
		},
	}
}

// RowCount expects the report to hold exactly want rows.
func RowCount(want int) Check {
	return Check{
		Type:  CheckRowCount,
		Label: fmt.Sprintf("%d rows", want),
		eval: func(r *report.Report) error {
			if got := len(r.Rows); got != want {
				return fmt.Errorf("got %d rows, want %d", got, want)
			}
			return nil
		},
	}
}

// LabelEquals expects row idx to carry the given subtotal label;
// detail rows carry the empty label.
func LabelEquals(idx int, want string) Check {
	label := fmt.Sprintf("row %d label = %s", idx, want)
	if want == "" {
		label = fmt.Sprintf("row %d has no label", idx)
	}
	return Check{
		Type:  CheckLabelEquals,
		Label: label,
		eval: func(r *report.Report) error {
			if idx < 0 || idx >= len(r.Rows) {
				return fmt.Errorf("row %d out of range (%d rows)", idx, len(r.Rows))
			}
			if got := r.Rows[idx].Label; got != want {
				return fmt.Errorf("got %q, want %q", got, want)
			}
			return nil
		},
	}
}

// XPathCount expects the report's XML rendering to match expr exactly
// want times.
func XPathCount(expr string, want int) Check {
	return Check{
		Type:  CheckXPathCount,
		Label: fmt.Sprintf("count(%s) = %d", expr, want),
		eval: func(r *report.Report) error {
			var buf bytes.Buffer
			if err := report.WriteXML(&buf, r); err != nil {
				return err
			}
			doc, err := xml.Parse(buf.Bytes())
			if err != nil {
				return err
			}
			got, err := doc.Count(expr)
			if err != nil {
				return err
			}
			if got != want {
				return fmt.Errorf("matched %d nodes, want %d", got, want)
			}
			return nil
		},
	}
}

func cellValue(r *report.Report, idx int, column string) (string, error) {
	if idx < 0 || idx >= len(r.Rows) {
		return "", fmt.Errorf("row %d out of range (%d rows)", idx, len(r.Rows))
	}
	row := r.Rows[idx]
	for i, c := range r.GroupCols {
		if c == column {
			return row.Groups[i], nil
		}
	}
	for i, c := range r.AggCols {
		if c == column {
			return row.Aggs[i], nil
		}
	}
	switch column {
	case r.LabelHeader:
		return row.Label, nil
	case "grouping_id":
		return strconv.Itoa(row.GroupingID), nil
	}
	return "", tberrors.NewUnknownColumn(column, "report")
}

// CheckOutcome records one check's outcome.
type CheckOutcome struct {
	CheckType string `json:"check_type"`
	Label     string `json:"label"`
	Pass      bool   `json:"pass"`
	Details   string `json:"details,omitempty"`
}

// VerifyReport summarizes one demo's verification.
type VerifyReport struct {
	ReportVersion string         `json:"report_version"`
	CreatedAt     string         `json:"created_at"`
	DemoID        string         `json:"demo_id"`
	Results       []CheckOutcome `json:"results"`
	Status        string         `json:"status"`
}

// ToJSON serializes the report to JSON.
func (r *VerifyReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Verify runs one demo and evaluates its checks. A run error counts
// as a failed check rather than aborting verification.
func Verify(ctx context.Context, env *Env, id string) (*VerifyReport, error) {
	d := Get(id)
	if d == nil {
		return nil, tberrors.NewNotFound("demo", id)
	}
	return verifyDemo(ctx, env, d), nil
}

// VerifyAll verifies every registered demo in listing order.
func VerifyAll(ctx context.Context, env *Env) []*VerifyReport {
	demos := List()
	out := make([]*VerifyReport, 0, len(demos))
	for _, d := range demos {
		out = append(out, verifyDemo(ctx, env, d))
	}
	return out
}

func verifyDemo(ctx context.Context, env *Env, d *Demo) *VerifyReport {
	out := &VerifyReport{
		ReportVersion: Version,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		DemoID:        d.ID,
		Status:        StatusPass,
	}
	rep, err := d.Run(ctx, env)
	if err != nil {
		out.Status = StatusFail
		out.Results = append(out.Results, CheckOutcome{
			CheckType: CheckRun,
			Label:     "demo runs",
			Pass:      false,
			Details:   err.Error(),
		})
		return out
	}
	for _, c := range d.Checks {
		res := CheckOutcome{CheckType: c.Type, Label: c.Label, Pass: true}
		if err := c.eval(rep); err != nil {
			res.Pass = false
			res.Details = err.Error()
			out.Status = StatusFail
		}
		out.Results = append(out.Results, res)
	}
	return out
}
