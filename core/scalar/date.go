package scalar

import (
	"strconv"
	"strings"
	"time"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// DatePart names a calendar component for DATENAME and DATEDIFF.
type DatePart int

const (
	PartYear DatePart = iota
	PartQuarter
	PartMonth
	PartDay
	PartWeekday
)

// ParseDatePart resolves a part name or its engine abbreviation
// (yy, qq, mm, dd, dw).
func ParseDatePart(s string) (DatePart, error) {
	switch strings.ToLower(s) {
	case "year", "yy", "yyyy":
		return PartYear, nil
	case "quarter", "qq", "q":
		return PartQuarter, nil
	case "month", "mm", "m":
		return PartMonth, nil
	case "day", "dd", "d":
		return PartDay, nil
	case "weekday", "dw":
		return PartWeekday, nil
	default:
		return 0, tberrors.Wrapf(tberrors.ErrInvalidInput, "unknown date part %q", s)
	}
}

func asDate(op string, v value.Value) (time.Time, error) {
	t, ok := v.AsTime()
	if !ok {
		return time.Time{}, tberrors.NewType(op, "date", v.Kind().String())
	}
	return t, nil
}

// yearFunc implements YEAR(d)
func yearFunc(args []value.Value) (value.Value, error) {
	return datePartInt("YEAR", args[0], func(t time.Time) int64 {
		return int64(t.Year())
	})
}

// monthFunc implements MONTH(d)
func monthFunc(args []value.Value) (value.Value, error) {
	return datePartInt("MONTH", args[0], func(t time.Time) int64 {
		return int64(t.Month())
	})
}

// dayFunc implements DAY(d)
func dayFunc(args []value.Value) (value.Value, error) {
	return datePartInt("DAY", args[0], func(t time.Time) int64 {
		return int64(t.Day())
	})
}

func datePartInt(op string, v value.Value, part func(time.Time) int64) (value.Value, error) {
	if v.IsNull() {
		return value.Null(), nil
	}
	t, err := asDate(op, v)
	if err != nil {
		return value.Null(), err
	}
	return value.NewInt(part(t)), nil
}

// datenameFunc implements DATENAME(part, d)
// Month and weekday parts return English names; numeric parts return
// the number as text.
func datenameFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return value.Null(), nil
	}
	part, err := ParseDatePart(args[0].AsString())
	if err != nil {
		return value.Null(), err
	}
	t, err := asDate("DATENAME", args[1])
	if err != nil {
		return value.Null(), err
	}
	switch part {
	case PartYear:
		return value.NewString(strconv.Itoa(t.Year())), nil
	case PartQuarter:
		return value.NewString(strconv.Itoa(quarterOf(t))), nil
	case PartMonth:
		return value.NewString(t.Month().String()), nil
	case PartDay:
		return value.NewString(strconv.Itoa(t.Day())), nil
	default:
		return value.NewString(t.Weekday().String()), nil
	}
}

// datediffFunc implements DATEDIFF(part, start, end)
// Counts calendar boundary crossings rather than elapsed time, so
// DATEDIFF(year, Dec 31, Jan 1) is 1.
func datediffFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
		return value.Null(), nil
	}
	part, err := ParseDatePart(args[0].AsString())
	if err != nil {
		return value.Null(), err
	}
	start, err := asDate("DATEDIFF", args[1])
	if err != nil {
		return value.Null(), err
	}
	end, err := asDate("DATEDIFF", args[2])
	if err != nil {
		return value.Null(), err
	}

	switch part {
	case PartYear:
		return value.NewInt(int64(end.Year() - start.Year())), nil
	case PartQuarter:
		years := end.Year() - start.Year()
		return value.NewInt(int64(years*4 + quarterOf(end) - quarterOf(start))), nil
	case PartMonth:
		years := end.Year() - start.Year()
		return value.NewInt(int64(years*12 + int(end.Month()) - int(start.Month()))), nil
	case PartDay, PartWeekday:
		return value.NewInt(daysBetween(start, end)), nil
	default:
		return value.Null(), tberrors.NewUnsupported("DATEDIFF part", args[0].AsString())
	}
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func daysBetween(start, end time.Time) int64 {
	a := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int64(b.Sub(a).Hours() / 24)
}

// eomonthFunc implements EOMONTH(d [, months])
// Returns the last day of the month, offset by the optional number of
// months.
func eomonthFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return value.Null(), nil
	}
	t, err := asDate("EOMONTH", args[0])
	if err != nil {
		return value.Null(), err
	}

	offset := int64(0)
	if len(args) == 2 {
		if args[1].IsNull() {
			return value.Null(), nil
		}
		n, ok := args[1].AsInt64()
		if !ok {
			return value.Null(), tberrors.NewType("EOMONTH", "integer offset", args[1].Kind().String())
		}
		offset = n
	}

	// Day zero of the following month is the last day of this one.
	last := time.Date(t.Year(), t.Month()+time.Month(offset)+1, 0, 0, 0, 0, 0, time.UTC)
	return value.NewDate(last.Year(), last.Month(), last.Day()), nil
}
