package aggregate

import (
	"math"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// varianceAcc computes variance and standard deviation with Welford's
// online algorithm. Sample variants (STDEV, VAR) need at least two
// values and yield NULL otherwise; population variants (STDEVP, VARP)
// need one.
type varianceAcc struct {
	op         string
	population bool
	sqrt       bool
	n          int64
	mean       float64
	m2         float64
}

// NewStdev returns a sample standard deviation accumulator.
func NewStdev() Accumulator {
	return &varianceAcc{op: "STDEV", sqrt: true}
}

// NewStdevP returns a population standard deviation accumulator.
func NewStdevP() Accumulator {
	return &varianceAcc{op: "STDEVP", population: true, sqrt: true}
}

// NewVar returns a sample variance accumulator.
func NewVar() Accumulator {
	return &varianceAcc{op: "VAR"}
}

// NewVarP returns a population variance accumulator.
func NewVarP() Accumulator {
	return &varianceAcc{op: "VARP", population: true}
}

func (a *varianceAcc) Step(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	f, ok := v.AsFloat64()
	if !ok {
		return tberrors.NewType(a.op, "numeric", v.Kind().String())
	}
	a.n++
	delta := f - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (f - a.mean)
	return nil
}

func (a *varianceAcc) Final() value.Value {
	div := a.n - 1
	if a.population {
		div = a.n
	}
	if div < 1 {
		return value.Null()
	}
	out := a.m2 / float64(div)
	if a.sqrt {
		out = math.Sqrt(out)
	}
	return value.NewFloat(out)
}

func (a *varianceAcc) Reset() {
	a.n = 0
	a.mean = 0
	a.m2 = 0
}
