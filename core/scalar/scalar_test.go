package scalar

import (
	"errors"
	"testing"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

func call(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	v, err := DefaultRegistry().Call(name, args...)
	if err != nil {
		t.Fatalf("%s error = %v", name, err)
	}
	return v
}

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []value.Value
		want string
	}{
		{"upper", "UPPER", []value.Value{value.NewString("engineering")}, "ENGINEERING"},
		{"lower", "lower", []value.Value{value.NewString("IT Support")}, "it support"},
		{"reverse", "REVERSE", []value.Value{value.NewString("stressed")}, "desserts"},
		{"reverse unicode", "REVERSE", []value.Value{value.NewString("héllo")}, "olléh"},
		{"left", "LEFT", []value.Value{value.NewString("Engineering"), value.NewInt(3)}, "Eng"},
		{"left past end", "LEFT", []value.Value{value.NewString("HR"), value.NewInt(10)}, "HR"},
		{"right", "RIGHT", []value.Value{value.NewString("Engineering"), value.NewInt(3)}, "ing"},
		{"right zero", "RIGHT", []value.Value{value.NewString("HR"), value.NewInt(0)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, tt.fn, tt.args...)
			if got.AsString() != tt.want {
				t.Errorf("%s = %q, want %q", tt.fn, got.AsString(), tt.want)
			}
		})
	}
}

func TestLenIgnoresTrailingSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"abc", 3},
		{"abc   ", 3},
		{"  abc", 5},
		{"", 0},
		{"héllo", 5},
	}
	for _, tt := range tests {
		got := call(t, "LEN", value.NewString(tt.in))
		n, _ := got.AsInt64()
		if n != tt.want {
			t.Errorf("LEN(%q) = %d, want %d", tt.in, n, tt.want)
		}
	}
}

func TestNullPropagation(t *testing.T) {
	null := value.Null()
	for _, tc := range []struct {
		fn   string
		args []value.Value
	}{
		{"UPPER", []value.Value{null}},
		{"LOWER", []value.Value{null}},
		{"LEN", []value.Value{null}},
		{"REVERSE", []value.Value{null}},
		{"LEFT", []value.Value{null, value.NewInt(2)}},
		{"LEFT", []value.Value{value.NewString("ab"), null}},
		{"YEAR", []value.Value{null}},
		{"DATENAME", []value.Value{value.NewString("month"), null}},
	} {
		if got := call(t, tc.fn, tc.args...); !got.IsNull() {
			t.Errorf("%s with NULL input = %v, want NULL", tc.fn, got)
		}
	}
}

func TestLeftErrors(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Call("LEFT", value.NewString("abc"), value.NewInt(-1))
	if !errors.Is(err, tberrors.ErrInvalidInput) {
		t.Errorf("negative length error = %v", err)
	}

	_, err = r.Call("LEFT", value.NewString("abc"), value.NewString("two"))
	if !errors.Is(err, tberrors.ErrTypeMismatch) {
		t.Errorf("text length error = %v", err)
	}
}

func TestConcatWS(t *testing.T) {
	got := call(t, "CONCAT_WS",
		value.NewString(", "),
		value.NewString("Adams"),
		value.Null(),
		value.NewString("Baker"),
		value.NewString("Chen"))
	if got.AsString() != "Adams, Baker, Chen" {
		t.Errorf("CONCAT_WS = %q", got.AsString())
	}

	// NULL separator acts as empty string.
	got = call(t, "CONCAT_WS", value.Null(), value.NewString("a"), value.NewString("b"))
	if got.AsString() != "ab" {
		t.Errorf("CONCAT_WS with NULL separator = %q", got.AsString())
	}
}

func TestNullHandlingFunctions(t *testing.T) {
	null := value.Null()
	ten := value.NewInt(10)
	twenty := value.NewInt(20)

	if got := call(t, "ISNULL", null, ten); !value.Equal(got, ten) {
		t.Errorf("ISNULL(NULL, 10) = %v", got)
	}
	if got := call(t, "ISNULL", twenty, ten); !value.Equal(got, twenty) {
		t.Errorf("ISNULL(20, 10) = %v", got)
	}

	if got := call(t, "COALESCE", null, null, ten, twenty); !value.Equal(got, ten) {
		t.Errorf("COALESCE = %v", got)
	}
	if got := call(t, "COALESCE", null, null); !got.IsNull() {
		t.Errorf("COALESCE all NULL = %v", got)
	}

	if got := call(t, "NULLIF", ten, value.NewInt(10)); !got.IsNull() {
		t.Errorf("NULLIF(10, 10) = %v", got)
	}
	if got := call(t, "NULLIF", ten, twenty); !value.Equal(got, ten) {
		t.Errorf("NULLIF(10, 20) = %v", got)
	}
	if got := call(t, "NULLIF", null, null); !got.IsNull() {
		t.Errorf("NULLIF(NULL, NULL) = %v", got)
	}
}

func TestIIF(t *testing.T) {
	yes := value.NewString("yes")
	no := value.NewString("no")

	tests := []struct {
		name string
		cond value.Value
		want value.Value
	}{
		{"true", value.NewBool(true), yes},
		{"false", value.NewBool(false), no},
		{"null is false", value.Null(), no},
		{"nonzero int", value.NewInt(7), yes},
		{"zero int", value.NewInt(0), no},
		{"text is false", value.NewString("true"), no},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, "IIF", tt.cond, yes, no)
			if got.AsString() != tt.want.AsString() {
				t.Errorf("IIF = %q, want %q", got.AsString(), tt.want.AsString())
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	if _, ok := r.Lookup("left"); !ok {
		t.Error("Lookup should be case-insensitive")
	}

	_, err := r.Call("SOUNDEX", value.NewString("x"))
	if !errors.Is(err, tberrors.ErrNotFound) {
		t.Errorf("unknown function error = %v", err)
	}
	var nf *tberrors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "SOUNDEX" {
		t.Errorf("NotFoundError = %+v", nf)
	}

	// Too few and too many arguments.
	if _, err := r.Call("UPPER"); !errors.Is(err, tberrors.ErrInvalidInput) {
		t.Errorf("no-arg error = %v", err)
	}
	if _, err := r.Call("UPPER", value.NewString("a"), value.NewString("b")); !errors.Is(err, tberrors.ErrInvalidInput) {
		t.Errorf("extra-arg error = %v", err)
	}
	if _, err := r.Call("CONCAT_WS", value.NewString(","), value.NewString("a")); !errors.Is(err, tberrors.ErrInvalidInput) {
		t.Errorf("CONCAT_WS needs separator plus two values, error = %v", err)
	}

	names := r.Names()
	if len(names) != 17 {
		t.Errorf("Names() has %d entries: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
}
