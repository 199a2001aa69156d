// Package aggregate implements the aggregate functions evaluated over
// grouped rows: COUNT, SUM, AVG, MIN, MAX, STRING_AGG, and the
// variance family. Accumulators follow step/final semantics with
// engine NULL handling: NULL inputs are skipped, and every aggregate
// except COUNT yields NULL over an empty or all-NULL group.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// Accumulator consumes one column's values for one group.
type Accumulator interface {
	// Step processes one value
	Step(v value.Value) error

	// Final returns the aggregate result
	Final() value.Value

	// Reset clears the accumulator state
	Reset()
}

// Args carries per-call configuration taken from a parsed aggregate
// expression. Only STRING_AGG uses the separator.
type Args struct {
	Separator    string
	HasSeparator bool
}

// Factory builds a fresh accumulator for one group.
type Factory func(args Args) (Accumulator, error)

// Registry holds aggregate factories by name.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a factory. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToUpper(name)] = f
}

// Lookup finds a factory by name, case-insensitively.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[strings.ToUpper(name)]
	return f, ok
}

// New builds an accumulator for the named aggregate.
func (r *Registry) New(name string, args Args) (Accumulator, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, tberrors.NewNotFound("aggregate", strings.ToUpper(name))
	}
	return f(args)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all standard aggregates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("COUNT", func(Args) (Accumulator, error) { return NewCount(), nil })
	r.Register("COUNT_BIG", func(Args) (Accumulator, error) { return NewCount(), nil })
	r.Register("SUM", func(Args) (Accumulator, error) { return NewSum(), nil })
	r.Register("AVG", func(Args) (Accumulator, error) { return NewAvg(), nil })
	r.Register("MIN", func(Args) (Accumulator, error) { return NewMin(), nil })
	r.Register("MAX", func(Args) (Accumulator, error) { return NewMax(), nil })
	r.Register("STRING_AGG", func(a Args) (Accumulator, error) {
		if !a.HasSeparator {
			return nil, tberrors.NewAggregate("STRING_AGG", "", "separator required")
		}
		return NewStringAgg(a.Separator), nil
	})
	r.Register("STDEV", func(Args) (Accumulator, error) { return NewStdev(), nil })
	r.Register("STDEVP", func(Args) (Accumulator, error) { return NewStdevP(), nil })
	r.Register("VAR", func(Args) (Accumulator, error) { return NewVar(), nil })
	r.Register("VARP", func(Args) (Accumulator, error) { return NewVarP(), nil })
	return r
}

// countAcc counts non-NULL values.
type countAcc struct {
	count int64
}

// NewCount returns a COUNT(col) accumulator.
func NewCount() Accumulator { return &countAcc{} }

func (a *countAcc) Step(v value.Value) error {
	if !v.IsNull() {
		a.count++
	}
	return nil
}

func (a *countAcc) Final() value.Value { return value.NewInt(a.count) }
func (a *countAcc) Reset()             { a.count = 0 }

// countStarAcc counts every row, NULL or not.
type countStarAcc struct {
	count int64
}

// NewCountStar returns a COUNT(*) accumulator.
func NewCountStar() Accumulator { return &countStarAcc{} }

func (a *countStarAcc) Step(value.Value) error {
	a.count++
	return nil
}

func (a *countStarAcc) Final() value.Value { return value.NewInt(a.count) }
func (a *countStarAcc) Reset()             { a.count = 0 }

// countDistinctAcc counts distinct non-NULL values.
type countDistinctAcc struct {
	seen map[string]bool
}

// NewCountDistinct returns a COUNT(DISTINCT col) accumulator.
func NewCountDistinct() Accumulator {
	return &countDistinctAcc{seen: make(map[string]bool)}
}

func (a *countDistinctAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	a.seen[v.GroupKey()] = true
	return nil
}

func (a *countDistinctAcc) Final() value.Value { return value.NewInt(int64(len(a.seen))) }
func (a *countDistinctAcc) Reset()             { a.seen = make(map[string]bool) }

type sumMode int

const (
	sumInt sumMode = iota
	sumFloat
	sumDecimal
)

// sumAcc sums numeric values. Integer sums promote to float on
// overflow; any decimal input switches the whole sum to decimal.
type sumAcc struct {
	op   string
	seen bool
	mode sumMode
	i    int64
	f    float64
	d    decimal.Decimal
}

// NewSum returns a SUM accumulator.
func NewSum() Accumulator { return &sumAcc{op: "SUM"} }

func (a *sumAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	if !v.IsNumeric() {
		return tberrors.NewType(a.op, "numeric", v.Kind().String())
	}
	a.seen = true

	switch v.Kind() {
	case value.KindDecimal:
		d, _ := v.AsDecimal()
		a.toDecimal()
		a.d = a.d.Add(d)

	case value.KindFloat:
		if a.mode == sumDecimal {
			d, _ := v.AsDecimal()
			a.d = a.d.Add(d)
			return nil
		}
		if a.mode == sumInt {
			a.f = float64(a.i)
			a.mode = sumFloat
		}
		f, _ := v.AsFloat64()
		a.f += f

	default:
		i, _ := v.AsInt64()
		switch a.mode {
		case sumDecimal:
			a.d = a.d.Add(decimal.NewFromInt(i))
		case sumFloat:
			a.f += float64(i)
		default:
			next := a.i + i
			// Overflow promotes to float, it does not wrap.
			if (i > 0 && next < a.i) || (i < 0 && next > a.i) {
				a.f = float64(a.i) + float64(i)
				a.mode = sumFloat
			} else {
				a.i = next
			}
		}
	}
	return nil
}

func (a *sumAcc) toDecimal() {
	switch a.mode {
	case sumInt:
		a.d = decimal.NewFromInt(a.i)
	case sumFloat:
		a.d = decimal.NewFromFloat(a.f)
	case sumDecimal:
		return
	}
	a.mode = sumDecimal
}

func (a *sumAcc) Final() value.Value {
	if !a.seen {
		return value.Null()
	}
	switch a.mode {
	case sumDecimal:
		return value.NewDecimal(a.d)
	case sumFloat:
		return value.NewFloat(a.f)
	default:
		return value.NewInt(a.i)
	}
}

func (a *sumAcc) Reset() {
	a.seen = false
	a.mode = sumInt
	a.i = 0
	a.f = 0
	a.d = decimal.Decimal{}
}

// avgDecimalScale is the result scale for decimal averages.
const avgDecimalScale = 6

// avgAcc averages numeric values: decimal inputs yield a decimal with
// six digits of scale, everything else yields a float.
type avgAcc struct {
	sum sumAcc
	n   int64
}

// NewAvg returns an AVG accumulator.
func NewAvg() Accumulator { return &avgAcc{sum: sumAcc{op: "AVG"}} }

func (a *avgAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	if err := a.sum.Step(v); err != nil {
		return err
	}
	a.n++
	return nil
}

func (a *avgAcc) Final() value.Value {
	if a.n == 0 {
		return value.Null()
	}
	if a.sum.mode == sumDecimal {
		return value.NewDecimal(a.sum.d.DivRound(decimal.NewFromInt(a.n), avgDecimalScale))
	}
	total := a.sum.f
	if a.sum.mode == sumInt {
		total = float64(a.sum.i)
	}
	return value.NewFloat(total / float64(a.n))
}

func (a *avgAcc) Reset() {
	a.sum.Reset()
	a.n = 0
}

// extremeAcc tracks the minimum or maximum non-NULL value.
type extremeAcc struct {
	best value.Value
	seen bool
	max  bool
}

// NewMin returns a MIN accumulator.
func NewMin() Accumulator { return &extremeAcc{} }

// NewMax returns a MAX accumulator.
func NewMax() Accumulator { return &extremeAcc{max: true} }

func (a *extremeAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	if !a.seen {
		a.best = v
		a.seen = true
		return nil
	}
	if (value.Compare(v, a.best) > 0) == a.max {
		a.best = v
	}
	return nil
}

func (a *extremeAcc) Final() value.Value {
	if !a.seen {
		return value.Null()
	}
	return a.best
}

func (a *extremeAcc) Reset() {
	a.best = value.Value{}
	a.seen = false
}

// stringAggAcc concatenates non-NULL values with a separator, in step
// order.
type stringAggAcc struct {
	sep   string
	parts []string
}

// NewStringAgg returns a STRING_AGG accumulator with the given
// separator.
func NewStringAgg(sep string) Accumulator {
	return &stringAggAcc{sep: sep}
}

func (a *stringAggAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	a.parts = append(a.parts, v.AsString())
	return nil
}

func (a *stringAggAcc) Final() value.Value {
	if len(a.parts) == 0 {
		return value.Null()
	}
	return value.NewString(strings.Join(a.parts, a.sep))
}

func (a *stringAggAcc) Reset() { a.parts = nil }

// distinctAcc forwards only the first occurrence of each non-NULL
// value to the wrapped accumulator.
type distinctAcc struct {
	inner Accumulator
	seen  map[string]bool
}

// Distinct wraps an accumulator so it sees each distinct value once,
// the DISTINCT modifier of SUM, AVG, COUNT, and STRING_AGG.
func Distinct(inner Accumulator) Accumulator {
	return &distinctAcc{inner: inner, seen: make(map[string]bool)}
}

func (a *distinctAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	key := v.GroupKey()
	if a.seen[key] {
		return nil
	}
	a.seen[key] = true
	return a.inner.Step(v)
}

func (a *distinctAcc) Final() value.Value { return a.inner.Final() }

func (a *distinctAcc) Reset() {
	a.inner.Reset()
	a.seen = make(map[string]bool)
}
