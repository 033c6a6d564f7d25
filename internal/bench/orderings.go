package bench

import (
	"math/rand"
	"slices"
	"strings"

	"chainbench/domain/run"
)

// Ordering is one derived key sequence and the label it is reported under.
type Ordering struct {
	Order run.Order
	Keys  []string
}

// Sorted returns an ascending copy of keys.
func Sorted(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return out
}

// Reversed returns a descending copy of keys.
func Reversed(keys []string) []string {
	out := slices.Clone(keys)
	slices.SortFunc(out, func(a, b string) int { return strings.Compare(b, a) })
	return out
}

// Shuffled returns a uniformly permuted copy of keys drawn from rng.
func Shuffled(keys []string, rng *rand.Rand) []string {
	out := slices.Clone(keys)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// BuildOrderings derives the three orderings in run.Orders sequence. keys is
// never modified.
func BuildOrderings(keys []string, rng *rand.Rand) []Ordering {
	return []Ordering{
		{Order: run.OrderSorted, Keys: Sorted(keys)},
		{Order: run.OrderShuffled, Keys: Shuffled(keys, rng)},
		{Order: run.OrderReversed, Keys: Reversed(keys)},
	}
}

// NewRand returns the shuffle source and the seed it was built from. A zero
// seed means "seed from now".
func NewRand(seed int64, now func() int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = now()
	}
	return rand.New(rand.NewSource(seed)), seed
}
