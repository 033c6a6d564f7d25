package bench

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"chainbench/domain/run"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var carKeys = []string{"Mustang", "Civic", "Accord", "Civic", "Beetle", "Model S", "accord", "Camry"}

func sameMultiset(t *testing.T, want, got []string) {
	t.Helper()
	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(want, got, sortStrings); diff != "" {
		t.Errorf("multiset mismatch (-want +got):\n%s", diff)
	}
}

func TestSorted(t *testing.T) {
	got := Sorted(carKeys)
	sameMultiset(t, carKeys, got)
	assert.True(t, slices.IsSorted(got))
	assert.Equal(t, "Accord", got[0])
	assert.Equal(t, "accord", got[len(got)-1])
}

func TestReversed(t *testing.T) {
	got := Reversed(carKeys)
	sameMultiset(t, carKeys, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, strings.Compare(got[i-1], got[i]), 0, "index %d", i)
	}
	assert.Equal(t, Sorted(carKeys), reverse(got))
}

func TestShuffledIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		sameMultiset(t, carKeys, Shuffled(carKeys, rng))
	}
}

func TestShuffledDeterministicForSeed(t *testing.T) {
	a := Shuffled(carKeys, rand.New(rand.NewSource(99)))
	b := Shuffled(carKeys, rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
}

func TestBuildOrderingsLeavesInputAlone(t *testing.T) {
	input := slices.Clone(carKeys)
	orderings := BuildOrderings(input, rand.New(rand.NewSource(3)))

	assert.Equal(t, carKeys, input)
	require.Len(t, orderings, 3)
	for i, o := range orderings {
		assert.Equal(t, run.Orders[i], o.Order)
		sameMultiset(t, carKeys, o.Keys)
	}
}

func TestOrderingsOfEmptyAndSingleton(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	assert.Empty(t, Sorted(nil))
	assert.Empty(t, Shuffled(nil, rng))
	assert.Equal(t, []string{"only"}, Reversed([]string{"only"}))
}

func TestNewRandZeroSeedUsesNow(t *testing.T) {
	calls := 0
	now := func() int64 {
		calls++
		return 77
	}

	a, seed := NewRand(0, now)
	b := rand.New(rand.NewSource(77))
	assert.Equal(t, int64(77), seed)
	assert.Equal(t, b.Int63(), a.Int63())
	assert.Equal(t, 1, calls)

	_, seed = NewRand(5, now)
	assert.Equal(t, int64(5), seed)
	assert.Equal(t, 1, calls)
}

func reverse(s []string) []string {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}
