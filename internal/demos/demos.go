// Package demos holds the runnable walkthroughs that showcase grouped
// salary reporting over the built-in HR dataset: rollups, cubes,
// grouping sets, GROUPING_ID decoding, ranking, date bucketing, and
// NULL handling. Each demo evaluates a grouping over the employees
// table and renders a report; the checks attached to a demo pin the
// cells a correct run must produce, so the catalog doubles as an
// executable regression suite.
package demos

import (
	"context"
	"sort"

	"github.com/FocuswithJustin/TallyBook/core/report"
	"github.com/FocuswithJustin/TallyBook/core/scalar"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/internal/cache"
	"github.com/FocuswithJustin/TallyBook/internal/hrsystem"
)

// Env is the shared evaluation environment demos run against.
type Env struct {
	// Employees is the dataset every demo groups over.
	Employees *table.Table
	// Scalars resolves the scalar functions derived columns use.
	Scalars *scalar.Registry
	// Cache memoizes results by query fingerprint; nil disables it.
	Cache *cache.ResultCache
}

// NewEnv returns an environment over the built-in dataset.
func NewEnv() *Env {
	return &Env{
		Employees: hrsystem.EmployeeTable(),
		Scalars:   scalar.DefaultRegistry(),
		Cache:     cache.NewDefaultResultCache(),
	}
}

// Demo is one runnable walkthrough.
type Demo struct {
	// ID is the registry key, unique across the catalog.
	ID string `json:"id"`
	// Category groups related demos in listings.
	Category string `json:"category"`
	Title    string `json:"title"`
	// Notes explains what the demo shows, a sentence or two.
	Notes string `json:"notes,omitempty"`

	// Run evaluates the demo against env.
	Run func(ctx context.Context, env *Env) (*report.Report, error) `json:"-"`
	// Checks pin the cells a correct run must produce.
	Checks []Check `json:"-"`
}

// registry holds all registered demos keyed by ID.
var registry = make(map[string]*Demo)

// Register adds a demo to the catalog. Demos without an ID are
// ignored; a duplicate ID replaces the earlier entry.
func Register(d *Demo) {
	if d != nil && d.ID != "" {
		registry[d.ID] = d
	}
}

// Get returns a demo by ID, or nil if not found.
func Get(id string) *Demo {
	return registry[id]
}

// Has checks whether a demo with the given ID exists.
func Has(id string) bool {
	_, ok := registry[id]
	return ok
}

// List returns all registered demos ordered by category, then ID.
func List() []*Demo {
	out := make([]*Demo, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Categories returns the distinct categories in listing order.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range List() {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// ByCategory returns the demos in one category ordered by ID.
func ByCategory(category string) []*Demo {
	var out []*Demo
	for _, d := range List() {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}
