package value

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Error("zero Value should be NULL")
	}
	if v.Kind() != KindNull {
		t.Errorf("Kind() = %v, want KindNull", v.Kind())
	}
	if got := v.String(); got != "NULL" {
		t.Errorf("String() = %q, want %q", got, "NULL")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "NULL"},
		{"int", NewInt(42), "42"},
		{"negative int", NewInt(-7), "-7"},
		{"float", NewFloat(2.5), "2.5"},
		{"decimal", NewDecimalString("55000.00"), "55000"},
		{"decimal fraction", NewDecimalString("0.125"), "0.125"},
		{"bool true", NewBool(true), "1"},
		{"bool false", NewBool(false), "0"},
		{"string", NewString("Engineering"), "Engineering"},
		{"date", NewDate(2020, time.March, 15), "2020-03-15"},
		{"datetime", NewTime(time.Date(2020, 3, 15, 9, 30, 0, 0, time.UTC)), "2020-03-15 09:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumericAccessors(t *testing.T) {
	if i, ok := NewInt(9).AsInt64(); !ok || i != 9 {
		t.Errorf("AsInt64() = %d, %v", i, ok)
	}
	if f, ok := NewFloat(1.5).AsFloat64(); !ok || f != 1.5 {
		t.Errorf("AsFloat64() = %g, %v", f, ok)
	}
	if d, ok := NewDecimalString("10.25").AsDecimal(); !ok || d.String() != "10.25" {
		t.Errorf("AsDecimal() = %s, %v", d, ok)
	}
	if d, ok := NewInt(3).AsDecimal(); !ok || !d.Equal(decimal.NewFromInt(3)) {
		t.Errorf("int AsDecimal() = %s, %v", d, ok)
	}
	if i, ok := NewBool(true).AsInt64(); !ok || i != 1 {
		t.Errorf("bool AsInt64() = %d, %v", i, ok)
	}
	if _, ok := NewString("x").AsFloat64(); ok {
		t.Error("text AsFloat64() should not be ok")
	}
	if _, ok := Null().AsInt64(); ok {
		t.Error("NULL AsInt64() should not be ok")
	}
}

func TestNewDecimalStringInvalid(t *testing.T) {
	if v := NewDecimalString("not-a-number"); !v.IsNull() {
		t.Errorf("NewDecimalString on garbage = %v, want NULL", v)
	}
}

func TestAsTime(t *testing.T) {
	ts := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)
	if got, ok := NewTime(ts).AsTime(); !ok || !got.Equal(ts) {
		t.Errorf("AsTime() = %v, %v", got, ok)
	}
	if _, ok := NewInt(1).AsTime(); ok {
		t.Error("int AsTime() should not be ok")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"null before int", Null(), NewInt(0), -1},
		{"null equals null", Null(), Null(), 0},
		{"int order", NewInt(1), NewInt(2), -1},
		{"int equal", NewInt(5), NewInt(5), 0},
		{"int vs float", NewInt(2), NewFloat(1.5), 1},
		{"int vs decimal equal", NewInt(5), NewDecimalString("5.00"), 0},
		{"decimal order", NewDecimalString("10.01"), NewDecimalString("10.10"), -1},
		{"bool as numeric", NewBool(false), NewInt(1), -1},
		{"string order", NewString("Finance"), NewString("HR"), -1},
		{"numeric before time", NewInt(99), NewDate(2001, 1, 1), -1},
		{"time before string", NewDate(2030, 1, 1), NewString("a"), -1},
		{"time order", NewDate(2019, 1, 1), NewDate(2020, 1, 1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// Antisymmetry
			if rev := Compare(tt.b, tt.a); rev != -tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.b, tt.a, rev, -tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Null(), Null()) {
		t.Error("NULLs should compare equal for grouping")
	}
	if Equal(Null(), NewInt(0)) {
		t.Error("NULL should not equal zero")
	}
	if !Equal(NewInt(5), NewDecimalString("5")) {
		t.Error("numeric equality should cross kinds")
	}
	if Equal(NewString("5"), NewInt(5)) {
		t.Error("text should not equal numeric")
	}
}

func TestGroupKey(t *testing.T) {
	// Equal numerics must bucket together regardless of kind.
	keys := map[string]bool{
		NewInt(5).GroupKey():             true,
		NewFloat(5).GroupKey():           true,
		NewDecimalString("5").GroupKey(): true,
	}
	if len(keys) != 1 {
		t.Errorf("equal numerics should share one group key, got %d: %v", len(keys), keys)
	}

	if NewString("5").GroupKey() == NewInt(5).GroupKey() {
		t.Error("text and numeric must not share a group key")
	}
	if Null().GroupKey() == NewString("").GroupKey() {
		t.Error("NULL and empty string must not share a group key")
	}
	if NewDate(2020, 1, 1).GroupKey() == NewDate(2020, 1, 2).GroupKey() {
		t.Error("distinct dates must not share a group key")
	}
}

func TestIsNumeric(t *testing.T) {
	numeric := []Value{NewInt(1), NewFloat(1), NewDecimalString("1"), NewBool(true)}
	for _, v := range numeric {
		if !v.IsNumeric() {
			t.Errorf("%v (%v) should be numeric", v, v.Kind())
		}
	}
	other := []Value{Null(), NewString("1"), NewDate(2020, 1, 1)}
	for _, v := range other {
		if v.IsNumeric() {
			t.Errorf("%v (%v) should not be numeric", v, v.Kind())
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNull, "null"},
		{KindInt, "integer"},
		{KindFloat, "float"},
		{KindDecimal, "decimal"},
		{KindBool, "bool"},
		{KindTime, "time"},
		{KindString, "text"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	if b, ok := NewBool(true).AsBool(); !ok || !b {
		t.Errorf("AsBool() = %v, %v", b, ok)
	}
	if b, ok := NewInt(0).AsBool(); !ok || b {
		t.Errorf("int 0 AsBool() = %v, %v", b, ok)
	}
	if _, ok := NewInt(2).AsBool(); ok {
		t.Error("int 2 AsBool() should not be ok")
	}
	if _, ok := NewString("true").AsBool(); ok {
		t.Error("text AsBool() should not be ok")
	}
}

func TestAsString(t *testing.T) {
	if got := NewString("hello").AsString(); got != "hello" {
		t.Errorf("AsString() = %q", got)
	}
	if got := Null().AsString(); got != "" {
		t.Errorf("NULL AsString() = %q, want empty", got)
	}
	if got := NewInt(12).AsString(); got != "12" {
		t.Errorf("int AsString() = %q", got)
	}
}
