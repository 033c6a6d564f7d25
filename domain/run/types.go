package run

import (
	"fmt"
	"time"

	"chainbench/domain/core"
)

// Order names one of the three key orderings a run is timed under.
// The string value is the label written to the results log.
type Order string

const (
	OrderSorted   Order = "sorted"
	OrderShuffled Order = "shuffled"
	OrderReversed Order = "reversed"
)

// Orders lists the orderings in the sequence they are timed, printed and logged.
var Orders = []Order{OrderSorted, OrderShuffled, OrderReversed}

// Title is the heading used in the human-readable report.
func (o Order) Title() string {
	switch o {
	case OrderSorted:
		return "Already sorted list"
	case OrderShuffled:
		return "Shuffled list"
	case OrderReversed:
		return "Reversed list"
	default:
		return string(o)
	}
}

// ParseOrder validates a results-log label.
func ParseOrder(s string) (Order, error) {
	for _, o := range Orders {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown order label %q", s)
}

// Timing holds the three phase durations measured for one ordering.
type Timing struct {
	Insert time.Duration `json:"insert"`
	Search time.Duration `json:"search"`
	Delete time.Duration `json:"delete"`
}

// Seconds returns insert, search and delete durations in seconds.
func (t Timing) Seconds() (insert, search, del float64) {
	return t.Insert.Seconds(), t.Search.Seconds(), t.Delete.Seconds()
}

// Result is the outcome of timing every ordering over the same key set.
type Result struct {
	Count   int              `json:"count"`
	Timings map[Order]Timing `json:"timings"`
}

// NewResult creates an empty result for count keys.
func NewResult(count int) *Result {
	return &Result{Count: count, Timings: make(map[Order]Timing, len(Orders))}
}

// Records flattens the result into one results-log record per ordering,
// all sharing ts.
func (r *Result) Records(ts core.Timestamp) []Record {
	records := make([]Record, 0, len(Orders))
	for _, o := range Orders {
		t := r.Timings[o]
		ins, srch, del := t.Seconds()
		records = append(records, Record{
			Timestamp:     ts,
			Order:         o,
			Count:         r.Count,
			InsertSeconds: ins,
			SearchSeconds: srch,
			DeleteSeconds: del,
		})
	}
	return records
}

// Record is one line of the results log:
// timestamp,order_label,count,insert_seconds,search_seconds,delete_seconds
type Record struct {
	Timestamp     core.Timestamp `json:"timestamp" db:"-"`
	Order         Order          `json:"order" db:"order_label"`
	Count         int            `json:"count" db:"key_count"`
	InsertSeconds float64        `json:"insert_seconds" db:"insert_seconds"`
	SearchSeconds float64        `json:"search_seconds" db:"search_seconds"`
	DeleteSeconds float64        `json:"delete_seconds" db:"delete_seconds"`
}
