// Package report turns tally results into labeled, renderable reports.
// Building a report applies the grouping-mask decision procedure to
// every row: aggregated-away cells get an "All <column>s" placeholder,
// genuine NULL data keeps a NULL marker, and each subtotal row is
// labeled from its GROUPING_ID. Renderers cover text, CSV, JSON, and
// XML.
package report

import (
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/tally"
)

// DefaultNullText marks genuine NULL data values in rendered output.
const DefaultNullText = "(null)"

// DefaultLabelHeader heads the subtotal-label column.
const DefaultLabelHeader = "summary"

// Options control report construction.
type Options struct {
	// Title is an optional report heading.
	Title string
	// AllLabels overrides the placeholder for aggregated-away cells,
	// keyed by grouping column name. Unset columns use "All <name>s".
	AllLabels map[string]string
	// NullText replaces genuine NULL data values; empty means
	// DefaultNullText.
	NullText string
	// LabelHeader names the label column; empty means
	// DefaultLabelHeader.
	LabelHeader string
}

func (o Options) nullText() string {
	if o.NullText == "" {
		return DefaultNullText
	}
	return o.NullText
}

func (o Options) labelHeader() string {
	if o.LabelHeader == "" {
		return DefaultLabelHeader
	}
	return o.LabelHeader
}

func (o Options) allLabel(col string) string {
	if s, ok := o.AllLabels[col]; ok {
		return s
	}
	return "All " + col + "s"
}

// Row is one rendered report row.
type Row struct {
	// Groups holds the rendered grouping cells, placeholders included.
	Groups []string
	// Aggs holds the rendered aggregate cells.
	Aggs []string
	// Label is the subtotal label, empty for detail rows.
	Label string
	// GroupingID is the row's grouping mask as an integer.
	GroupingID int
	// Level is the retained-column count.
	Level int
	// Subtotal marks rows that aggregate at least one column away.
	Subtotal bool
}

// Report is a fully labeled, render-ready result.
type Report struct {
	Title       string
	GroupCols   []string
	AggCols     []string
	LabelHeader string
	// Plain marks reports built from a flat table rather than a tally:
	// they carry no label or grouping_id columns.
	Plain bool
	Rows  []Row
}

// Header returns the full column header: grouping columns, aggregate
// columns, and for tallied reports the label column and grouping_id.
func (r *Report) Header() []string {
	out := make([]string, 0, len(r.GroupCols)+len(r.AggCols)+2)
	out = append(out, r.GroupCols...)
	out = append(out, r.AggCols...)
	if !r.Plain {
		out = append(out, r.LabelHeader, "grouping_id")
	}
	return out
}

// Build labels a tally result into a report.
func Build(res *tally.Result, opts Options) *Report {
	cols := res.Spec.Columns()
	n := len(cols)

	rep := &Report{
		Title:       opts.Title,
		GroupCols:   res.GroupColumns(),
		AggCols:     res.AggColumns(),
		LabelHeader: opts.labelHeader(),
		Rows:        make([]Row, 0, len(res.Rows)),
	}

	for _, rr := range res.Rows {
		row := Row{
			Groups:     make([]string, n),
			Aggs:       make([]string, len(rr.Aggs)),
			Label:      rr.Label(),
			GroupingID: rr.GroupingID(),
			Level:      rr.Level(),
			Subtotal:   rr.IsSubtotal(),
		}
		for i, c := range cols {
			switch {
			case rr.Mask.Grouping(i, n) == 1:
				row.Groups[i] = opts.allLabel(string(c))
			case rr.Groups[i].IsNull():
				row.Groups[i] = opts.nullText()
			default:
				row.Groups[i] = rr.Groups[i].String()
			}
		}
		for i, v := range rr.Aggs {
			if v.IsNull() {
				row.Aggs[i] = opts.nullText()
			} else {
				row.Aggs[i] = v.String()
			}
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

// FromTable wraps a flat table as a plain report: every column renders
// as a group cell and no subtotal metadata is attached. Ranked listings
// and other derived tables render through this path.
func FromTable(t *table.Table, opts Options) *Report {
	rep := &Report{
		Title:       opts.Title,
		GroupCols:   t.Schema().Names(),
		LabelHeader: opts.labelHeader(),
		Plain:       true,
		Rows:        make([]Row, 0, t.Len()),
	}
	nullText := opts.nullText()
	for _, row := range t.Rows() {
		cells := make([]string, len(row))
		for i, v := range row {
			if v.IsNull() {
				cells[i] = nullText
			} else {
				cells[i] = v.String()
			}
		}
		rep.Rows = append(rep.Rows, Row{Groups: cells})
	}
	return rep
}
