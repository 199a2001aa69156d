package aggregate

import (
	"errors"
	"math"
	"testing"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

func stepInts(t *testing.T, a Accumulator, vs ...int64) {
	t.Helper()
	for _, v := range vs {
		if err := a.Step(value.NewInt(v)); err != nil {
			t.Fatalf("Step(%d) error = %v", v, err)
		}
	}
}

func finalFloat(t *testing.T, a Accumulator) float64 {
	t.Helper()
	v := a.Final()
	f, ok := v.AsFloat64()
	if !ok {
		t.Fatalf("Final() = %v, want float", v)
	}
	return f
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVarianceFamily(t *testing.T) {
	// Classic Welford example: mean 5, squared deviations sum 32.
	data := []int64{2, 4, 4, 4, 5, 5, 7, 9}

	tests := []struct {
		name string
		acc  Accumulator
		want float64
	}{
		{"VARP", NewVarP(), 4},
		{"STDEVP", NewStdevP(), 2},
		{"VAR", NewVar(), 32.0 / 7.0},
		{"STDEV", NewStdev(), math.Sqrt(32.0 / 7.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepInts(t, tt.acc, data...)
			if got := finalFloat(t, tt.acc); !almostEqual(got, tt.want) {
				t.Errorf("%s = %g, want %g", tt.name, got, tt.want)
			}
		})
	}
}

func TestSampleVarianceNeedsTwoValues(t *testing.T) {
	v := NewVar()
	stepInts(t, v, 42)
	if !v.Final().IsNull() {
		t.Error("VAR of a single value should be NULL")
	}

	s := NewStdev()
	stepInts(t, s, 42)
	if !s.Final().IsNull() {
		t.Error("STDEV of a single value should be NULL")
	}
}

func TestPopulationVarianceOfSingleValue(t *testing.T) {
	v := NewVarP()
	stepInts(t, v, 42)
	if got := finalFloat(t, v); got != 0 {
		t.Errorf("VARP of a single value = %g, want 0", got)
	}
}

func TestVarianceEmptyIsNull(t *testing.T) {
	for _, a := range []Accumulator{NewVar(), NewVarP(), NewStdev(), NewStdevP()} {
		if !a.Final().IsNull() {
			t.Errorf("%T over empty group should be NULL", a)
		}
	}
}

func TestVarianceSkipsNulls(t *testing.T) {
	a := NewVarP()
	stepInts(t, a, 1, 3)
	if err := a.Step(value.Null()); err != nil {
		t.Fatalf("Step(NULL) error = %v", err)
	}
	// Mean 2, deviations 1 and 1, population variance 1.
	if got := finalFloat(t, a); !almostEqual(got, 1) {
		t.Errorf("VARP = %g, want 1", got)
	}
}

func TestVarianceRejectsText(t *testing.T) {
	err := NewStdev().Step(value.NewString("x"))
	if err == nil {
		t.Fatal("STDEV over text should fail")
	}
	if !errors.Is(err, tberrors.ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}

func TestVarianceReset(t *testing.T) {
	a := NewVarP()
	stepInts(t, a, 10, 20)
	a.Reset()
	stepInts(t, a, 5)
	if got := finalFloat(t, a); got != 0 {
		t.Errorf("VARP after Reset = %g, want 0", got)
	}
}

func TestVarianceDecimalInput(t *testing.T) {
	a := NewVarP()
	for _, s := range []string{"1.5", "2.5"} {
		if err := a.Step(value.NewDecimalString(s)); err != nil {
			t.Fatalf("Step(%s) error = %v", s, err)
		}
	}
	if got := finalFloat(t, a); !almostEqual(got, 0.25) {
		t.Errorf("VARP over decimals = %g, want 0.25", got)
	}
}
