package aggregate

import (
	"errors"
	"math"
	"testing"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// stepAll feeds values into an accumulator, failing the test on error.
func stepAll(t *testing.T, a Accumulator, vs ...value.Value) {
	t.Helper()
	for _, v := range vs {
		if err := a.Step(v); err != nil {
			t.Fatalf("Step(%v) error = %v", v, err)
		}
	}
}

func TestCount(t *testing.T) {
	a := NewCount()
	stepAll(t, a, value.NewInt(1), value.Null(), value.NewString("x"), value.Null())

	if got, _ := a.Final().AsInt64(); got != 2 {
		t.Errorf("COUNT = %d, want 2 (NULLs skipped)", got)
	}

	a.Reset()
	if got, _ := a.Final().AsInt64(); got != 0 {
		t.Errorf("COUNT after Reset = %d, want 0", got)
	}
}

func TestCountEmptyGroupIsZero(t *testing.T) {
	// COUNT is the one aggregate that yields 0, not NULL, over nothing.
	if v := NewCount().Final(); v.IsNull() {
		t.Error("COUNT over empty group should be 0, not NULL")
	}
}

func TestCountStar(t *testing.T) {
	a := NewCountStar()
	stepAll(t, a, value.Null(), value.Null(), value.NewInt(7))

	if got, _ := a.Final().AsInt64(); got != 3 {
		t.Errorf("COUNT(*) = %d, want 3 (NULL rows still count)", got)
	}
}

func TestCountDistinct(t *testing.T) {
	a := NewCountDistinct()
	stepAll(t, a,
		value.NewString("Engineering"),
		value.NewString("Finance"),
		value.NewString("Engineering"),
		value.Null(),
	)

	if got, _ := a.Final().AsInt64(); got != 2 {
		t.Errorf("COUNT(DISTINCT) = %d, want 2", got)
	}

	a.Reset()
	stepAll(t, a, value.NewInt(5), value.NewDecimalString("5.00"))
	if got, _ := a.Final().AsInt64(); got != 1 {
		t.Errorf("COUNT(DISTINCT) across numeric kinds = %d, want 1", got)
	}
}

func TestSumIntegers(t *testing.T) {
	a := NewSum()
	stepAll(t, a, value.NewInt(10), value.Null(), value.NewInt(32))

	v := a.Final()
	if v.Kind() != value.KindInt {
		t.Fatalf("SUM kind = %v, want integer", v.Kind())
	}
	if got, _ := v.AsInt64(); got != 42 {
		t.Errorf("SUM = %d, want 42", got)
	}
}

func TestSumOverflowPromotesToFloat(t *testing.T) {
	a := NewSum()
	stepAll(t, a, value.NewInt(math.MaxInt64), value.NewInt(1))

	v := a.Final()
	if v.Kind() != value.KindFloat {
		t.Fatalf("SUM kind after overflow = %v, want float", v.Kind())
	}
	if got, _ := v.AsFloat64(); got <= 0 {
		t.Errorf("SUM after overflow = %g, want a large positive float", got)
	}
}

func TestSumDecimalStaysDecimal(t *testing.T) {
	a := NewSum()
	stepAll(t, a,
		value.NewDecimalString("55000.50"),
		value.NewInt(1000),
		value.NewDecimalString("44000.25"),
	)

	v := a.Final()
	if v.Kind() != value.KindDecimal {
		t.Fatalf("SUM kind = %v, want decimal", v.Kind())
	}
	if got := v.String(); got != "100000.75" {
		t.Errorf("SUM = %s, want 100000.75", got)
	}
}

func TestSumMixedIntFloat(t *testing.T) {
	a := NewSum()
	stepAll(t, a, value.NewInt(1), value.NewFloat(0.5))

	v := a.Final()
	if v.Kind() != value.KindFloat {
		t.Fatalf("SUM kind = %v, want float", v.Kind())
	}
	if got, _ := v.AsFloat64(); got != 1.5 {
		t.Errorf("SUM = %g, want 1.5", got)
	}
}

func TestSumEmptyIsNull(t *testing.T) {
	a := NewSum()
	stepAll(t, a, value.Null(), value.Null())
	if !a.Final().IsNull() {
		t.Error("SUM over only NULLs should be NULL")
	}
}

func TestSumRejectsText(t *testing.T) {
	err := NewSum().Step(value.NewString("salary"))
	if err == nil {
		t.Fatal("SUM over text should fail")
	}
	if !errors.Is(err, tberrors.ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestAvgFloat(t *testing.T) {
	a := NewAvg()
	stepAll(t, a, value.NewInt(2), value.NewInt(3), value.Null(), value.NewInt(7))

	v := a.Final()
	if v.Kind() != value.KindFloat {
		t.Fatalf("AVG kind = %v, want float", v.Kind())
	}
	if got, _ := v.AsFloat64(); got != 4 {
		t.Errorf("AVG = %g, want 4 (NULL excluded from the divisor)", got)
	}
}

func TestAvgDecimal(t *testing.T) {
	a := NewAvg()
	stepAll(t, a, value.NewDecimalString("10.00"), value.NewDecimalString("11.00"))

	v := a.Final()
	if v.Kind() != value.KindDecimal {
		t.Fatalf("AVG kind = %v, want decimal", v.Kind())
	}
	if got := v.String(); got != "10.5" {
		t.Errorf("AVG = %s, want 10.5", got)
	}
}

func TestAvgEmptyIsNull(t *testing.T) {
	if !NewAvg().Final().IsNull() {
		t.Error("AVG over empty group should be NULL")
	}
}

func TestMinMax(t *testing.T) {
	min := NewMin()
	max := NewMax()
	vals := []value.Value{
		value.NewDecimalString("61000"),
		value.Null(),
		value.NewDecimalString("48500"),
		value.NewDecimalString("90250"),
	}
	stepAll(t, min, vals...)
	stepAll(t, max, vals...)

	if got := min.Final().String(); got != "48500" {
		t.Errorf("MIN = %s, want 48500", got)
	}
	if got := max.Final().String(); got != "90250" {
		t.Errorf("MAX = %s, want 90250", got)
	}
}

func TestMinMaxText(t *testing.T) {
	min := NewMin()
	max := NewMax()
	for _, name := range []string{"Lopez", "Adams", "Zhang"} {
		stepAll(t, min, value.NewString(name))
		stepAll(t, max, value.NewString(name))
	}
	if got := min.Final().AsString(); got != "Adams" {
		t.Errorf("MIN over text = %q, want Adams", got)
	}
	if got := max.Final().AsString(); got != "Zhang" {
		t.Errorf("MAX over text = %q, want Zhang", got)
	}
}

func TestMinEmptyIsNull(t *testing.T) {
	if !NewMin().Final().IsNull() {
		t.Error("MIN over empty group should be NULL")
	}
}

func TestStringAgg(t *testing.T) {
	a := NewStringAgg(", ")
	stepAll(t, a,
		value.NewString("Adams"),
		value.Null(),
		value.NewString("Lopez"),
		value.NewString("Zhang"),
	)

	if got := a.Final().AsString(); got != "Adams, Lopez, Zhang" {
		t.Errorf("STRING_AGG = %q", got)
	}
}

func TestStringAggEmptyIsNull(t *testing.T) {
	a := NewStringAgg(",")
	stepAll(t, a, value.Null())
	if !a.Final().IsNull() {
		t.Error("STRING_AGG over only NULLs should be NULL")
	}
}

func TestStringAggNonText(t *testing.T) {
	a := NewStringAgg("-")
	stepAll(t, a, value.NewInt(2020), value.NewInt(2021))
	if got := a.Final().AsString(); got != "2020-2021" {
		t.Errorf("STRING_AGG over ints = %q", got)
	}
}

func TestDistinctWrapper(t *testing.T) {
	a := Distinct(NewSum())
	stepAll(t, a,
		value.NewInt(10),
		value.NewInt(10),
		value.NewInt(5),
		value.Null(),
	)

	if got, _ := a.Final().AsInt64(); got != 15 {
		t.Errorf("SUM(DISTINCT) = %d, want 15", got)
	}

	a.Reset()
	stepAll(t, a, value.NewInt(10))
	if got, _ := a.Final().AsInt64(); got != 10 {
		t.Errorf("SUM(DISTINCT) after Reset = %d, want 10", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{"COUNT", "sum", "Avg", "MIN", "max", "STRING_AGG", "STDEV", "STDEVP", "VAR", "VARP", "COUNT_BIG"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := r.Lookup("MEDIAN"); ok {
		t.Error("Lookup(MEDIAN) should fail")
	}
}

func TestRegistryNew(t *testing.T) {
	r := DefaultRegistry()

	a, err := r.New("sum", Args{})
	if err != nil {
		t.Fatalf("New(sum) error = %v", err)
	}
	stepAll(t, a, value.NewInt(3), value.NewInt(4))
	if got, _ := a.Final().AsInt64(); got != 7 {
		t.Errorf("SUM via registry = %d, want 7", got)
	}

	if _, err := r.New("MEDIAN", Args{}); !errors.Is(err, tberrors.ErrNotFound) {
		t.Errorf("New(MEDIAN) error = %v, want ErrNotFound", err)
	}
}

func TestRegistryStringAggRequiresSeparator(t *testing.T) {
	r := DefaultRegistry()

	if _, err := r.New("STRING_AGG", Args{}); err == nil {
		t.Fatal("STRING_AGG without separator should fail")
	}

	a, err := r.New("STRING_AGG", Args{Separator: "; ", HasSeparator: true})
	if err != nil {
		t.Fatalf("New(STRING_AGG) error = %v", err)
	}
	stepAll(t, a, value.NewString("a"), value.NewString("b"))
	if got := a.Final().AsString(); got != "a; b" {
		t.Errorf("STRING_AGG = %q", got)
	}
}

func TestRegistryNames(t *testing.T) {
	names := DefaultRegistry().Names()
	if len(names) == 0 {
		t.Fatal("Names() is empty")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
}
