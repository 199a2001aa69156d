package groupset

// Describe turns a row's GROUPING_ID mask into its report label. Detail
// rows get no label, the all-columns-aggregated mask is the grand
// total, and every other mask is a subtotal named after the columns it
// retains. This is the CASE-over-GROUPING_ID decision procedure written
// once instead of per report.
func (s *Spec) Describe(m Mask) string {
	n := len(s.cols)
	switch {
	case m.IsDetail():
		return ""
	case m.IsGrandTotal(n):
		return "Grand Total"
	default:
		return "Subtotal by " + joinColumns(s.setOf(m))
	}
}

// LevelName names a rollup level for report headings: the detail level
// is "Detail", the grand total "Grand Total", and intermediate levels
// carry the retained column list.
func (s *Spec) LevelName(m Mask) string {
	n := len(s.cols)
	switch {
	case m.IsDetail():
		return "Detail"
	case m.IsGrandTotal(n):
		return "Grand Total"
	default:
		return joinColumns(s.setOf(m))
	}
}
