package bench

import (
	"context"
	"math/rand"

	"chainbench/domain/run"
	"chainbench/internal/chaintable"
	"chainbench/internal/errors"
	"chainbench/internal/logging"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

// Table is the hash table under measurement.
type Table interface {
	Insert(key string)
	Contains(key string) bool
	Remove(key string)
}

// TableFactory returns a fresh, empty table. Each ordering gets its own.
type TableFactory func() Table

// ChainingTable is the default factory: a separate-chaining table of strings.
func ChainingTable() Table {
	return chaintable.NewStrings()
}

// Runner times insert, search and delete over every ordering of a key set.
type Runner struct {
	Clock    clock.PassiveClock
	NewTable TableFactory
	Logger   logr.Logger
}

// NewRunner creates a runner over the real clock and the chaining table.
func NewRunner(logger logr.Logger) *Runner {
	return &Runner{
		Clock:    clock.RealClock{},
		NewTable: ChainingTable,
		Logger:   logger,
	}
}

// found keeps Contains results observable so the search loop is not elided.
var found int

// Run derives the orderings of keys and times each one against a new table.
func (r *Runner) Run(ctx context.Context, keys []string, rng *rand.Rand) (*run.Result, error) {
	if len(keys) == 0 {
		return nil, errors.NoData("no keys to benchmark")
	}

	result := run.NewResult(len(keys))
	for _, o := range BuildOrderings(keys, rng) {
		timing, err := r.time(ctx, o)
		if err != nil {
			return nil, errors.Wrapf(err, "timing %s ordering", o.Order)
		}
		result.Timings[o.Order] = timing

		r.Logger.V(logging.VERBOSE).Info("Ordering timed",
			"order", o.Order,
			"keys", len(o.Keys),
			"insert", timing.Insert,
			"search", timing.Search,
			"delete", timing.Delete)
	}
	return result, nil
}

func (r *Runner) time(ctx context.Context, o Ordering) (run.Timing, error) {
	var timing run.Timing
	table := r.NewTable()

	if err := ctx.Err(); err != nil {
		return timing, err
	}
	start := r.Clock.Now()
	for _, key := range o.Keys {
		table.Insert(key)
	}
	timing.Insert = r.Clock.Since(start)

	if err := ctx.Err(); err != nil {
		return timing, err
	}
	hits := 0
	start = r.Clock.Now()
	for _, key := range o.Keys {
		if table.Contains(key) {
			hits++
		}
	}
	timing.Search = r.Clock.Since(start)
	found += hits

	if hits != len(o.Keys) {
		r.Logger.V(logging.DEFAULT).Info("Search missed inserted keys", "order", o.Order, "hits", hits, "keys", len(o.Keys))
	}

	if err := ctx.Err(); err != nil {
		return timing, err
	}
	start = r.Clock.Now()
	for _, key := range o.Keys {
		table.Remove(key)
	}
	timing.Delete = r.Clock.Since(start)

	return timing, nil
}
