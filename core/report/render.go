package report

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
)

// Format selects an output renderer.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", tberrors.NewUnsupported("format", s)
	}
}

// Render writes the report in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatText:
		return WriteText(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatXML:
		return WriteXML(w, r)
	default:
		return tberrors.NewUnsupported("format", string(f))
	}
}

// WriteText renders an aligned text table.
func WriteText(w io.Writer, r *Report) error {
	if r.Title != "" {
		if _, err := fmt.Fprintln(w, r.Title); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := r.Header()
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range r.Rows {
		fmt.Fprintln(tw, strings.Join(textCells(row, r.Plain), "\t"))
	}
	return tw.Flush()
}

func textCells(row Row, plain bool) []string {
	cells := make([]string, 0, len(row.Groups)+len(row.Aggs)+2)
	cells = append(cells, row.Groups...)
	cells = append(cells, row.Aggs...)
	if !plain {
		cells = append(cells, row.Label, strconv.Itoa(row.GroupingID))
	}
	return cells
}

// WriteCSV renders RFC 4180 CSV with a header record.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(textCells(row, r.Plain)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Cells      map[string]string `json:"cells"`
	Label      string            `json:"label,omitempty"`
	GroupingID int               `json:"grouping_id"`
	Level      int               `json:"level"`
	Subtotal   bool              `json:"subtotal,omitempty"`
}

type jsonReport struct {
	Title            string    `json:"title,omitempty"`
	Plain            bool      `json:"plain,omitempty"`
	GroupColumns     []string  `json:"group_columns"`
	AggregateColumns []string  `json:"aggregate_columns"`
	Rows             []jsonRow `json:"rows"`
}

// WriteJSON renders an indented JSON document.
func WriteJSON(w io.Writer, r *Report) error {
	doc := jsonReport{
		Title:            r.Title,
		Plain:            r.Plain,
		GroupColumns:     r.GroupCols,
		AggregateColumns: r.AggCols,
		Rows:             make([]jsonRow, 0, len(r.Rows)),
	}
	for _, row := range r.Rows {
		jr := jsonRow{
			Cells:      make(map[string]string, len(row.Groups)+len(row.Aggs)),
			Label:      row.Label,
			GroupingID: row.GroupingID,
			Level:      row.Level,
			Subtotal:   row.Subtotal,
		}
		for i, c := range r.GroupCols {
			jr.Cells[c] = row.Groups[i]
		}
		for i, c := range r.AggCols {
			jr.Cells[c] = row.Aggs[i]
		}
		doc.Rows = append(doc.Rows, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

type xmlCell struct {
	Column string `xml:"column,attr"`
	Value  string `xml:",chardata"`
}

type xmlRow struct {
	GroupingID int       `xml:"grouping_id,attr"`
	Level      int       `xml:"level,attr"`
	Label      string    `xml:"label,attr,omitempty"`
	Cells      []xmlCell `xml:"cell"`
}

type xmlReport struct {
	XMLName xml.Name `xml:"report"`
	Title   string   `xml:"title,attr,omitempty"`
	Plain   bool     `xml:"plain,attr,omitempty"`
	Rows    []xmlRow `xml:"row"`
}

// WriteXML renders an XML document with one element per row and the
// grouping metadata as attributes, queryable with core/xml.
func WriteXML(w io.Writer, r *Report) error {
	doc := xmlReport{Title: r.Title, Plain: r.Plain, Rows: make([]xmlRow, 0, len(r.Rows))}
	for _, row := range r.Rows {
		xr := xmlRow{
			GroupingID: row.GroupingID,
			Level:      row.Level,
			Label:      row.Label,
			Cells:      make([]xmlCell, 0, len(row.Groups)+len(row.Aggs)),
		}
		for i, c := range r.GroupCols {
			xr.Cells = append(xr.Cells, xmlCell{Column: c, Value: row.Groups[i]})
		}
		for i, c := range r.AggCols {
			xr.Cells = append(xr.Cells, xmlCell{Column: c, Value: row.Aggs[i]})
		}
		doc.Rows = append(doc.Rows, xr)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
