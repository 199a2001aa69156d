// Package scalar is a small catalog of scalar functions used to derive
// columns before grouping: string helpers, NULL handling, and date part
// extraction. Functions follow engine semantics, so NULL inputs
// propagate and LEN ignores trailing spaces.
package scalar

import (
	"sort"
	"strings"
	"unicode/utf8"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// Func applies a scalar function to already evaluated arguments.
type Func func(args []value.Value) (value.Value, error)

// Function describes a registered scalar function. MaxArgs of -1 means
// variadic.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int
	Apply   Func
}

// Registry maps names to scalar functions, case-insensitively.
type Registry struct {
	funcs map[string]*Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Register adds a function, replacing any previous registration under
// the same name.
func (r *Registry) Register(f *Function) {
	r.funcs[strings.ToUpper(f.Name)] = f
}

// Lookup finds a function by name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	f, ok := r.funcs[strings.ToUpper(name)]
	return f, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call validates arity and applies the named function.
func (r *Registry) Call(name string, args ...value.Value) (value.Value, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return value.Null(), tberrors.NewNotFound("scalar function", strings.ToUpper(name))
	}
	if len(args) < f.MinArgs || (f.MaxArgs >= 0 && len(args) > f.MaxArgs) {
		return value.Null(), tberrors.Wrapf(tberrors.ErrInvalidInput,
			"%s: %d arguments", f.Name, len(args))
	}
	return f.Apply(args)
}

// DefaultRegistry returns a registry with the full catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// String functions
	r.Register(&Function{Name: "UPPER", MinArgs: 1, MaxArgs: 1, Apply: upperFunc})
	r.Register(&Function{Name: "LOWER", MinArgs: 1, MaxArgs: 1, Apply: lowerFunc})
	r.Register(&Function{Name: "LEN", MinArgs: 1, MaxArgs: 1, Apply: lenFunc})
	r.Register(&Function{Name: "LEFT", MinArgs: 2, MaxArgs: 2, Apply: leftFunc})
	r.Register(&Function{Name: "RIGHT", MinArgs: 2, MaxArgs: 2, Apply: rightFunc})
	r.Register(&Function{Name: "REVERSE", MinArgs: 1, MaxArgs: 1, Apply: reverseFunc})
	r.Register(&Function{Name: "CONCAT_WS", MinArgs: 3, MaxArgs: -1, Apply: concatWSFunc})

	// NULL handling
	r.Register(&Function{Name: "ISNULL", MinArgs: 2, MaxArgs: 2, Apply: isnullFunc})
	r.Register(&Function{Name: "COALESCE", MinArgs: 2, MaxArgs: -1, Apply: coalesceFunc})
	r.Register(&Function{Name: "NULLIF", MinArgs: 2, MaxArgs: 2, Apply: nullifFunc})
	r.Register(&Function{Name: "IIF", MinArgs: 3, MaxArgs: 3, Apply: iifFunc})

	// Date functions
	r.Register(&Function{Name: "YEAR", MinArgs: 1, MaxArgs: 1, Apply: yearFunc})
	r.Register(&Function{Name: "MONTH", MinArgs: 1, MaxArgs: 1, Apply: monthFunc})
	r.Register(&Function{Name: "DAY", MinArgs: 1, MaxArgs: 1, Apply: dayFunc})
	r.Register(&Function{Name: "DATENAME", MinArgs: 2, MaxArgs: 2, Apply: datenameFunc})
	r.Register(&Function{Name: "DATEDIFF", MinArgs: 3, MaxArgs: 3, Apply: datediffFunc})
	r.Register(&Function{Name: "EOMONTH", MinArgs: 1, MaxArgs: 2, Apply: eomonthFunc})

	return r
}

// upperFunc implements UPPER(s)
func upperFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return value.Null(), nil
	}
	return value.NewString(strings.ToUpper(args[0].AsString())), nil
}

// lowerFunc implements LOWER(s)
func lowerFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return value.Null(), nil
	}
	return value.NewString(strings.ToLower(args[0].AsString())), nil
}

// lenFunc implements LEN(s)
// Counts characters without trailing spaces, the engine quirk.
func lenFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return value.Null(), nil
	}
	s := strings.TrimRight(args[0].AsString(), " ")
	return value.NewInt(int64(utf8.RuneCountInString(s))), nil
}

// leftFunc implements LEFT(s, n)
func leftFunc(args []value.Value) (value.Value, error) {
	return clip("LEFT", args, func(runes []rune, n int) string {
		if n > len(runes) {
			n = len(runes)
		}
		return string(runes[:n])
	})
}

// rightFunc implements RIGHT(s, n)
func rightFunc(args []value.Value) (value.Value, error) {
	return clip("RIGHT", args, func(runes []rune, n int) string {
		if n > len(runes) {
			n = len(runes)
		}
		return string(runes[len(runes)-n:])
	})
}

func clip(op string, args []value.Value, take func([]rune, int) string) (value.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return value.Null(), nil
	}
	n, ok := args[1].AsInt64()
	if !ok {
		return value.Null(), tberrors.NewType(op, "integer length", args[1].Kind().String())
	}
	if n < 0 {
		return value.Null(), tberrors.Wrapf(tberrors.ErrInvalidInput, "%s: negative length %d", op, n)
	}
	return value.NewString(take([]rune(args[0].AsString()), int(n))), nil
}

// reverseFunc implements REVERSE(s)
func reverseFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return value.Null(), nil
	}
	runes := []rune(args[0].AsString())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return value.NewString(string(runes)), nil
}

// concatWSFunc implements CONCAT_WS(sep, v1, v2, ...)
// NULL values are skipped without doubling the separator. A NULL
// separator acts as an empty string.
func concatWSFunc(args []value.Value) (value.Value, error) {
	sep := ""
	if !args[0].IsNull() {
		sep = args[0].AsString()
	}
	parts := make([]string, 0, len(args)-1)
	for _, v := range args[1:] {
		if v.IsNull() {
			continue
		}
		parts = append(parts, v.AsString())
	}
	return value.NewString(strings.Join(parts, sep)), nil
}

// isnullFunc implements ISNULL(v, replacement)
func isnullFunc(args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return args[1], nil
	}
	return args[0], nil
}

// coalesceFunc implements COALESCE(v1, v2, ...)
func coalesceFunc(args []value.Value) (value.Value, error) {
	for _, v := range args {
		if !v.IsNull() {
			return v, nil
		}
	}
	return value.Null(), nil
}

// nullifFunc implements NULLIF(a, b)
func nullifFunc(args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if !a.IsNull() && !b.IsNull() && value.Equal(a, b) {
		return value.Null(), nil
	}
	return a, nil
}

// iifFunc implements IIF(cond, whenTrue, whenFalse)
// NULL conditions pick the false branch.
func iifFunc(args []value.Value) (value.Value, error) {
	if truthy(args[0]) {
		return args[1], nil
	}
	return args[2], nil
}

func truthy(v value.Value) bool {
	if v.IsNull() {
		return false
	}
	if b, ok := v.AsBool(); ok {
		return b
	}
	if f, ok := v.AsFloat64(); ok {
		return f != 0
	}
	return false
}
