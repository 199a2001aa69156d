package demos

import (
	"context"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/fingerprint"
	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/spec"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/tally"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// runTally parses the grouping and aggregate clauses, evaluates them
// over t, and builds a labeled report. Results are memoized by query
// fingerprint when env carries a cache.
func runTally(ctx context.Context, env *Env, t *table.Table, grouping, aggregates string, opts report.Options) (*report.Report, error) {
	gspec, err := spec.ParseGrouping(grouping)
	if err != nil {
		return nil, err
	}
	aggs, err := spec.ParseAggregates(aggregates)
	if err != nil {
		return nil, err
	}
	compute := func() (*tally.Result, error) {
		return tally.Run(ctx, t, tally.Request{Spec: gspec, Aggregates: aggs})
	}
	var res *tally.Result
	if env.Cache != nil {
		res, _, err = env.Cache.GetOrCompute(fingerprint.Query(t, gspec, aggs), compute)
	} else {
		res, err = compute()
	}
	if err != nil {
		return nil, err
	}
	return report.Build(res, opts), nil
}

// deriveScalar appends a computed column to t by calling the named
// scalar function on each row; args picks the call arguments.
func deriveScalar(env *Env, t *table.Table, col table.Column, fn string, args func(table.Row) []value.Value) (*table.Table, error) {
	var callErr error
	out, err := t.Derive(col, func(row table.Row) value.Value {
		v, verr := env.Scalars.Call(fn, args(row)...)
		if verr != nil && callErr == nil {
			callErr = verr
		}
		return v
	})
	if err != nil {
		return nil, err
	}
	if callErr != nil {
		return nil, callErr
	}
	return out, nil
}

// mustColumn panics when the dataset is missing a column the catalog
// was written against.
func mustColumn(t *table.Table, name string) int {
	i, ok := t.ColumnIndex(name)
	if !ok {
		panic(tberrors.NewUnknownColumn(name, "demo dataset"))
	}
	return i
}
