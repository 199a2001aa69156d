// Package value provides the NULL-aware scalar values that flow through
// tables, aggregates, and reports. A Value carries an explicit kind so
// that a stored NULL is distinguishable from a zero, and so aggregates
// can apply engine-style semantics (NULLs skipped, empty input yields
// NULL) without guessing from Go zero values.
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindDecimal
	KindBool
	KindTime
	KindString
)

// String returns a human-readable kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindString:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single scalar cell. The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	d    decimal.Decimal
	b    bool
	t    time.Time
	s    string
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// NewInt creates an integer value.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat creates a float value.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewDecimal creates a decimal value.
func NewDecimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

// NewDecimalString creates a decimal value from its string form.
// Invalid input yields NULL.
func NewDecimalString(s string) Value {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Null()
	}
	return NewDecimal(d)
}

// NewBool creates a boolean value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewTime creates a time value.
func NewTime(t time.Time) Value { return Value{kind: KindTime, t: t} }

// NewDate creates a time value at midnight UTC.
func NewDate(year int, month time.Month, day int) Value {
	return NewTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// NewString creates a text value.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value participates in arithmetic.
// Booleans count as numeric (0 or 1), matching BIT behavior.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindInt, KindFloat, KindDecimal, KindBool:
		return true
	}
	return false
}

// AsInt64 returns the value as an int64. The second result is false
// when the value is not numeric or not representable.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int64(v.f), true
	case KindDecimal:
		return v.d.IntPart(), true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsFloat64 returns the value as a float64. The second result is false
// when the value is not numeric.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindDecimal:
		f, _ := v.d.Float64()
		return f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsDecimal returns the value as a decimal. The second result is false
// when the value is not numeric.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i), true
	case KindFloat:
		return decimal.NewFromFloat(v.f), true
	case KindDecimal:
		return v.d, true
	case KindBool:
		if v.b {
			return decimal.NewFromInt(1), true
		}
		return decimal.NewFromInt(0), true
	}
	return decimal.Decimal{}, false
}

// AsString returns the text content for text values, or the display
// form otherwise. NULL yields "".
func (v Value) AsString() string {
	if v.kind == KindString {
		return v.s
	}
	if v.kind == KindNull {
		return ""
	}
	return v.String()
}

// AsBool returns the value as a bool. The second result is false when
// the value is not a bool or 0/1 integer.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindInt:
		if v.i == 0 || v.i == 1 {
			return v.i == 1, true
		}
	}
	return false, false
}

// AsTime returns the value as a time. The second result is false when
// the value is not a time.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind == KindTime {
		return v.t, true
	}
	return time.Time{}, false
}

// String renders the value for display. NULL renders as "NULL"; boolean
// values render as 0 or 1; dates without a time-of-day render as
// YYYY-MM-DD.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDecimal:
		return v.d.String()
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindTime:
		if h, m, s := v.t.Clock(); h == 0 && m == 0 && s == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	case KindString:
		return v.s
	}
	return ""
}

// GroupKey returns a canonical encoding used to bucket rows. Numeric
// values that are equal encode identically regardless of kind, so an
// int 5 and a decimal 5.0 land in the same group.
func (v Value) GroupKey() string {
	switch v.kind {
	case KindNull:
		return "\x00"
	case KindInt:
		return "n:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return "n:" + strconv.FormatInt(int64(v.f), 10)
		}
		return "n:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDecimal:
		// String() trims trailing zeros, so 5.00 buckets with int 5.
		return "n:" + v.d.String()
	case KindBool:
		if v.b {
			return "n:1"
		}
		return "n:0"
	case KindTime:
		return "t:" + v.t.UTC().Format(time.RFC3339Nano)
	case KindString:
		return "s:" + v.s
	}
	return ""
}

// kindRank orders kinds for cross-kind comparison: NULL sorts before
// everything, numerics next, then times, then text.
func kindRank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindInt, KindFloat, KindDecimal, KindBool:
		return 1
	case KindTime:
		return 2
	default:
		return 3
	}
}

// Compare imposes a total order: NULL first, numerics compared by
// magnitude across kinds, then times, then strings byte-wise.
func Compare(a, b Value) int {
	ra, rb := kindRank(a.kind), kindRank(b.kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		return 0
	case 1:
		return compareNumeric(a, b)
	case 2:
		switch {
		case a.t.Before(b.t):
			return -1
		case a.t.After(b.t):
			return 1
		}
		return 0
	default:
		return strings.Compare(a.s, b.s)
	}
}

func compareNumeric(a, b Value) int {
	// Exact path when both sides are integers.
	if a.kind == KindInt && b.kind == KindInt {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	if a.kind == KindDecimal || b.kind == KindDecimal {
		da, _ := a.AsDecimal()
		db, _ := b.AsDecimal()
		return da.Cmp(db)
	}
	fa, _ := a.AsFloat64()
	fb, _ := b.AsFloat64()
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

// Equal reports grouping equality: two NULLs are equal, and numerics
// of equal magnitude are equal across kinds.
func Equal(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind
	}
	return Compare(a, b) == 0
}
