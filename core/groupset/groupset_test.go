package groupset

import (
	"errors"
	"reflect"
	"testing"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
)

func TestRollupExpansion(t *testing.T) {
	s, err := Rollup("region", "department", "job_title")
	if err != nil {
		t.Fatalf("Rollup() error = %v", err)
	}

	wantSets := []Set{
		{"region", "department", "job_title"},
		{"region", "department"},
		{"region"},
		{},
	}
	if got := s.Sets(); !reflect.DeepEqual(got, wantSets) {
		t.Errorf("Sets() = %v, want %v", got, wantSets)
	}

	wantMasks := []Mask{0, 1, 3, 7}
	if got := s.Masks(); !reflect.DeepEqual(got, wantMasks) {
		t.Errorf("Masks() = %v, want %v", got, wantMasks)
	}
}

func TestRollupSingleColumn(t *testing.T) {
	s, err := Rollup("department")
	if err != nil {
		t.Fatalf("Rollup() error = %v", err)
	}
	wantMasks := []Mask{0, 1}
	if got := s.Masks(); !reflect.DeepEqual(got, wantMasks) {
		t.Errorf("Masks() = %v, want %v", got, wantMasks)
	}
	if !s.Masks()[1].IsGrandTotal(1) {
		t.Error("mask 1 over one column should be the grand total")
	}
}

func TestCubeExpansion(t *testing.T) {
	s, err := Cube("department", "job_title")
	if err != nil {
		t.Fatalf("Cube() error = %v", err)
	}

	wantSets := []Set{
		{"department", "job_title"},
		{"department"},
		{"job_title"},
		{},
	}
	if got := s.Sets(); !reflect.DeepEqual(got, wantSets) {
		t.Errorf("Sets() = %v, want %v", got, wantSets)
	}
	wantMasks := []Mask{0, 1, 2, 3}
	if got := s.Masks(); !reflect.DeepEqual(got, wantMasks) {
		t.Errorf("Masks() = %v, want %v", got, wantMasks)
	}
}

func TestCubeThreeColumns(t *testing.T) {
	s, err := Cube("region", "department", "gender")
	if err != nil {
		t.Fatalf("Cube() error = %v", err)
	}
	if got := len(s.Sets()); got != 8 {
		t.Fatalf("Cube over 3 columns produced %d sets, want 8", got)
	}

	// Decreasing retained count, ties by ascending mask.
	wantMasks := []Mask{0, 1, 2, 4, 3, 5, 6, 7}
	if got := s.Masks(); !reflect.DeepEqual(got, wantMasks) {
		t.Errorf("Masks() = %v, want %v", got, wantMasks)
	}

	// Spot-check the two-column sets at level 2.
	wantLevel2 := []Set{
		{"region", "department"},
		{"region", "gender"},
		{"department", "gender"},
	}
	if got := s.Sets()[1:4]; !reflect.DeepEqual(got, wantLevel2) {
		t.Errorf("level-2 sets = %v, want %v", got, wantLevel2)
	}
}

func TestCubeMatchesRollupForOneColumn(t *testing.T) {
	c, err := Cube("department")
	if err != nil {
		t.Fatalf("Cube() error = %v", err)
	}
	r, err := Rollup("department")
	if err != nil {
		t.Fatalf("Rollup() error = %v", err)
	}
	if !reflect.DeepEqual(c.Masks(), r.Masks()) {
		t.Errorf("Cube masks %v != Rollup masks %v for one column", c.Masks(), r.Masks())
	}
}

func TestSetsExplicit(t *testing.T) {
	cols := []Column{"region", "department", "job_title"}
	s, err := Sets(cols,
		Set{"region", "department"},
		Set{"region"},
		Set{},
	)
	if err != nil {
		t.Fatalf("Sets() error = %v", err)
	}
	wantMasks := []Mask{1, 3, 7}
	if got := s.Masks(); !reflect.DeepEqual(got, wantMasks) {
		t.Errorf("Masks() = %v, want %v", got, wantMasks)
	}
}

func TestSetsGrandTotalOnly(t *testing.T) {
	s, err := Sets([]Column{"department"}, Set{})
	if err != nil {
		t.Fatalf("Sets() error = %v", err)
	}
	if len(s.Masks()) != 1 || !s.Masks()[0].IsGrandTotal(1) {
		t.Errorf("Masks() = %v, want single grand total", s.Masks())
	}
}

func TestSetsFullDetail(t *testing.T) {
	cols := []Column{"department", "job_title"}
	s, err := Sets(cols, Set{"department", "job_title"})
	if err != nil {
		t.Fatalf("Sets() error = %v", err)
	}
	if got := s.Masks()[0]; got != 0 {
		t.Errorf("full-detail mask = %d, want 0", got)
	}
}

func TestSetsRejectsDuplicates(t *testing.T) {
	cols := []Column{"department", "job_title"}
	_, err := Sets(cols, Set{"department"}, Set{"department"})
	if err == nil {
		t.Fatal("Sets() with duplicate sets should fail")
	}
	if !errors.Is(err, tberrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}

	// Same membership in different column order is still a duplicate.
	_, err = Sets(cols, Set{"department", "job_title"}, Set{"job_title", "department"})
	if err == nil {
		t.Fatal("Sets() with reordered duplicate should fail")
	}
}

func TestSetsRejectsUnknownColumn(t *testing.T) {
	_, err := Sets([]Column{"department"}, Set{"salary"})
	if err == nil {
		t.Fatal("Sets() with unknown column should fail")
	}
	var uc *tberrors.UnknownColumnError
	if !errors.As(err, &uc) {
		t.Fatalf("error = %T, want *UnknownColumnError", err)
	}
	if uc.Column != "salary" {
		t.Errorf("Column = %q, want %q", uc.Column, "salary")
	}
}

func TestSetsRejectsEmptyList(t *testing.T) {
	if _, err := Sets([]Column{"department"}); err == nil {
		t.Error("Sets() with no sets should fail")
	}
}

func TestGroupBy(t *testing.T) {
	s, err := GroupBy("department", "job_title")
	if err != nil {
		t.Fatalf("GroupBy() error = %v", err)
	}
	if got := len(s.Sets()); got != 1 {
		t.Fatalf("GroupBy produced %d sets, want 1", got)
	}
	if got := s.Masks()[0]; got != 0 {
		t.Errorf("GroupBy mask = %d, want 0", got)
	}
}

func TestSpecValidation(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
	}{
		{"empty list", nil},
		{"duplicate column", []Column{"department", "department"}},
		{"empty name", []Column{"department", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rollup(tt.cols...); err == nil {
				t.Errorf("Rollup(%v) should fail", tt.cols)
			} else if !errors.Is(err, tberrors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestColumnCap(t *testing.T) {
	wide := make([]Column, 0, MaxColumns+1)
	for i := 0; i < MaxColumns+1; i++ {
		wide = append(wide, Column(rune('a'+i%26))+Column(rune('a'+i/26)))
	}

	if _, err := Rollup(wide...); err == nil {
		t.Errorf("Rollup over %d columns should fail", len(wide))
	}

	ok := wide[:MaxColumns]
	s, err := Rollup(ok...)
	if err != nil {
		t.Fatalf("Rollup over %d columns should succeed: %v", MaxColumns, err)
	}
	if got := len(s.Sets()); got != MaxColumns+1 {
		t.Errorf("set count = %d, want %d", got, MaxColumns+1)
	}
	if !s.Masks()[len(s.Masks())-1].IsGrandTotal(MaxColumns) {
		t.Error("last rollup mask should be the grand total")
	}
}

func TestCubeSetLimit(t *testing.T) {
	wide := make([]Column, 13)
	for i := range wide {
		wide[i] = Column(rune('a' + i))
	}
	if _, err := Cube(wide...); err == nil {
		t.Error("Cube over 13 columns should exceed the set limit")
	}
	if _, err := Cube(wide[:12]...); err != nil {
		t.Errorf("Cube over 12 columns should succeed: %v", err)
	}
}

func TestMaskOfAndRetained(t *testing.T) {
	s, err := Rollup("region", "department", "job_title")
	if err != nil {
		t.Fatalf("Rollup() error = %v", err)
	}

	m, err := s.MaskOf(Set{"region", "job_title"})
	if err != nil {
		t.Fatalf("MaskOf() error = %v", err)
	}
	if m != 2 {
		t.Errorf("MaskOf(region, job_title) = %d, want 2", m)
	}

	if got := s.Retained(m); !reflect.DeepEqual(got, []Column{"region", "job_title"}) {
		t.Errorf("Retained(2) = %v", got)
	}
	if got := s.Aggregated(m); !reflect.DeepEqual(got, []Column{"department"}) {
		t.Errorf("Aggregated(2) = %v", got)
	}
}

func TestIndexOf(t *testing.T) {
	s, err := GroupBy("department", "job_title")
	if err != nil {
		t.Fatalf("GroupBy() error = %v", err)
	}
	if i, ok := s.IndexOf("job_title"); !ok || i != 1 {
		t.Errorf("IndexOf(job_title) = %d, %v", i, ok)
	}
	if _, ok := s.IndexOf("salary"); ok {
		t.Error("IndexOf(salary) should not resolve")
	}
}

func TestSpecString(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Spec, error)
		want  string
	}{
		{
			"rollup",
			func() (*Spec, error) { return Rollup("region", "department") },
			"ROLLUP(region, department)",
		},
		{
			"cube",
			func() (*Spec, error) { return Cube("department", "gender") },
			"CUBE(department, gender)",
		},
		{
			"sets",
			func() (*Spec, error) {
				return Sets([]Column{"region", "department"}, Set{"region"}, Set{})
			},
			"GROUPING SETS ((region), ())",
		},
		{
			"group by",
			func() (*Spec, error) { return GroupBy("department") },
			"department",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.build()
			if err != nil {
				t.Fatalf("build error = %v", err)
			}
			if got := s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
