package table

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/TallyBook/core/value"
)

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		"id,name,salary,hired,notes",
		"1,Anders,98000.50,2015-03-09,senior",
		"2,Castillo,72000,2019-11-02,",
		"3,Wei,,2021-06-14,contract",
	}, "\n")

	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}

	wantKinds := map[string]value.Kind{
		"id":     value.KindInt,
		"name":   value.KindString,
		"salary": value.KindDecimal,
		"hired":  value.KindTime,
		"notes":  value.KindString,
	}
	for _, col := range tbl.Schema() {
		if col.Kind != wantKinds[col.Name] {
			t.Errorf("column %s kind = %v, want %v", col.Name, col.Kind, wantKinds[col.Name])
		}
	}

	rows := tbl.Rows()
	si, _ := tbl.ColumnIndex("salary")
	if got := rows[0][si].String(); got != "98000.5" {
		t.Errorf("salary[0] = %q, want 98000.5", got)
	}
	if !rows[2][si].IsNull() {
		t.Error("empty salary cell should be NULL")
	}
	ni, _ := tbl.ColumnIndex("notes")
	if !rows[1][ni].IsNull() {
		t.Error("empty notes cell should be NULL")
	}
	hi, _ := tbl.ColumnIndex("hired")
	if got := rows[0][hi].String(); got != "2015-03-09" {
		t.Errorf("hired[0] = %q, want 2015-03-09", got)
	}
}

func TestReadCSVWidensIntToDecimal(t *testing.T) {
	in := "amount\n5\n2.5\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got := tbl.Schema()[0].Kind; got != value.KindDecimal {
		t.Errorf("kind = %v, want decimal", got)
	}
	if got := tbl.Rows()[0][0].String(); got != "5" {
		t.Errorf("amount[0] = %q, want 5", got)
	}
}

func TestReadCSVConflictFallsBackToText(t *testing.T) {
	in := "code\n5\nabc\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got := tbl.Schema()[0].Kind; got != value.KindString {
		t.Errorf("kind = %v, want text", got)
	}
	if got := tbl.Rows()[0][0].AsString(); got != "5" {
		t.Errorf("code[0] = %q, want 5", got)
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	for _, col := range tbl.Schema() {
		if col.Kind != value.KindString {
			t.Errorf("column %s kind = %v, want text", col.Name, col.Kind)
		}
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"ragged record", "a,b\n1,2,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in)); err == nil {
				t.Fatal("ReadCSV() should fail")
			}
		})
	}
}
