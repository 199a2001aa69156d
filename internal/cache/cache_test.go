package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/FocuswithJustin/TallyBook/core/fingerprint"
	"github.com/FocuswithJustin/TallyBook/core/groupset"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/tally"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

func TestLRUBasicOperations(t *testing.T) {
	c := NewLRU[string, int](Config{MaxSize: 3})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	c.Remove("b")
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) after Remove should miss")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	var evicted []string
	c := NewLRU[string, int](Config{
		MaxSize: 2,
		OnEvict: func(key, value interface{}) {
			evicted = append(evicted, key.(string))
		},
	})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a becomes most recent
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was used last")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestLRUTTL(t *testing.T) {
	c := NewLRU[string, int](Config{MaxSize: 10, TTL: 10 * time.Millisecond})

	c.Put("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU[string, int](Config{MaxSize: 2})

	c.Put("a", 1)
	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d, want 10", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUStats(t *testing.T) {
	c := NewLRU[string, int](Config{MaxSize: 5})

	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("nope")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.Size != 1 || stats.MaxSize != 5 {
		t.Errorf("Stats size = %+v", stats)
	}
}

func TestLRUConcurrent(t *testing.T) {
	c := NewLRU[int, int](Config{MaxSize: 64})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Put(i%32, g*1000+i)
				c.Get(i % 32)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 32 {
		t.Errorf("Len() = %d, want at most 32", c.Len())
	}
}

func salaryQuery(t *testing.T) (*table.Table, *groupset.Spec, []tally.AggSpec) {
	t.Helper()
	tbl := table.New(table.Schema{
		{Name: "department", Kind: value.KindString},
		{Name: "salary", Kind: value.KindInt},
	})
	tbl.MustAppendRow(value.NewString("Engineering"), value.NewInt(100))
	tbl.MustAppendRow(value.NewString("Finance"), value.NewInt(50))

	spec, err := groupset.Rollup("department")
	if err != nil {
		t.Fatalf("Rollup() error = %v", err)
	}
	return tbl, spec, []tally.AggSpec{{Func: "SUM", Col: "salary", As: "total"}}
}

func TestResultCacheGetOrCompute(t *testing.T) {
	tbl, spec, aggs := salaryQuery(t)
	key := fingerprint.Query(tbl, spec, aggs)
	rc := NewDefaultResultCache()

	computes := 0
	compute := func() (*tally.Result, error) {
		computes++
		return tally.Run(context.Background(), tbl, tally.Request{Spec: spec, Aggregates: aggs})
	}

	res, cached, err := rc.GetOrCompute(key, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if cached {
		t.Error("first call should not be cached")
	}
	if len(res.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(res.Rows))
	}

	again, cached, err := rc.GetOrCompute(key, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if !cached {
		t.Error("second call should hit the cache")
	}
	if computes != 1 {
		t.Errorf("compute ran %d times, want 1", computes)
	}
	if fingerprint.Result(again) != fingerprint.Result(res) {
		t.Error("cached result differs from computed result")
	}
}

func TestResultCacheComputeError(t *testing.T) {
	tbl, spec, aggs := salaryQuery(t)
	rc := NewDefaultResultCache()

	wantErr := errors.New("boom")
	_, _, err := rc.GetOrCompute(fingerprint.Query(tbl, spec, aggs), func() (*tally.Result, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
	if rc.Len() != 0 {
		t.Error("failed compute must not populate the cache")
	}
}

func TestResultCacheRemoveClear(t *testing.T) {
	tbl, spec, aggs := salaryQuery(t)
	key := fingerprint.Query(tbl, spec, aggs)
	rc := NewResultCache(Config{MaxSize: 4})

	res, err := tally.Run(context.Background(), tbl, tally.Request{Spec: spec, Aggregates: aggs})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rc.Put(key, res)
	if _, ok := rc.Get(key); !ok {
		t.Fatal("Put then Get should hit")
	}

	rc.Remove(key)
	if _, ok := rc.Get(key); ok {
		t.Error("Get after Remove should miss")
	}

	rc.Put(key, res)
	rc.Clear()
	if rc.Len() != 0 {
		t.Errorf("Len() after Clear = %d", rc.Len())
	}
}

func TestResultCacheDistinctKeys(t *testing.T) {
	tbl, spec, aggs := salaryQuery(t)
	rc := NewResultCache(Config{MaxSize: 8})

	res, err := tally.Run(context.Background(), tbl, tally.Request{Spec: spec, Aggregates: aggs})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	rc.Put(fingerprint.Query(tbl, spec, aggs), res)

	other := []tally.AggSpec{{Func: "COUNT", Col: "*", As: "n"}}
	if _, ok := rc.Get(fingerprint.Query(tbl, spec, other)); ok {
		t.Error("different aggregates must not share a cache entry")
	}
}

func ExampleResultCache() {
	tbl := table.New(table.Schema{
		{Name: "department", Kind: value.KindString},
		{Name: "salary", Kind: value.KindInt},
	})
	tbl.MustAppendRow(value.NewString("Engineering"), value.NewInt(100))

	spec, _ := groupset.Rollup("department")
	aggs := []tally.AggSpec{{Func: "SUM", Col: "salary", As: "total"}}
	key := fingerprint.Query(tbl, spec, aggs)

	rc := NewDefaultResultCache()
	_, cached, _ := rc.GetOrCompute(key, func() (*tally.Result, error) {
		return tally.Run(context.Background(), tbl, tally.Request{Spec: spec, Aggregates: aggs})
	})
	fmt.Println("first call cached:", cached)

	_, cached, _ = rc.GetOrCompute(key, func() (*tally.Result, error) {
		return tally.Run(context.Background(), tbl, tally.Request{Spec: spec, Aggregates: aggs})
	})
	fmt.Println("second call cached:", cached)
	// Output:
	// first call cached: false
	// second call cached: true
}
