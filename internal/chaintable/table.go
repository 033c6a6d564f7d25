// Package chaintable implements a separate-chaining hash table: every bucket
// holds a singly linked chain of the keys that hash to it.
package chaintable

import (
	"github.com/cespare/xxhash/v2"
)

// DefaultCapacity is the bucket count of a new table.
const DefaultCapacity = 101

// Hasher maps a key to a 64-bit hash.
type Hasher[K comparable] func(K) uint64

// StringHasher hashes string keys with xxhash64.
func StringHasher(s string) uint64 {
	return xxhash.Sum64String(s)
}

type node[K comparable] struct {
	key  K
	next *node[K]
}

// Table is a set of keys backed by chained buckets. It is not safe for
// concurrent use.
type Table[K comparable] struct {
	buckets []*node[K]
	size    int
	hash    Hasher[K]
}

// New creates an empty table with DefaultCapacity buckets.
func New[K comparable](hash Hasher[K]) *Table[K] {
	return NewWithCapacity(hash, DefaultCapacity)
}

// NewWithCapacity creates an empty table whose bucket count is the smallest
// prime >= capacity.
func NewWithCapacity[K comparable](hash Hasher[K], capacity int) *Table[K] {
	return &Table[K]{
		buckets: make([]*node[K], nextPrime(capacity)),
		hash:    hash,
	}
}

// NewStrings creates a string-keyed table hashed with StringHasher.
func NewStrings() *Table[string] {
	return New[string](StringHasher)
}

// Insert adds key. Inserting a key that is already present is a no-op.
func (t *Table[K]) Insert(key K) {
	idx := t.bucket(key)
	for n := t.buckets[idx]; n != nil; n = n.next {
		if n.key == key {
			return
		}
	}
	t.buckets[idx] = &node[K]{key: key, next: t.buckets[idx]}
	t.size++
	if t.size > len(t.buckets) {
		t.rehash()
	}
}

// Contains reports whether key is present.
func (t *Table[K]) Contains(key K) bool {
	for n := t.buckets[t.bucket(key)]; n != nil; n = n.next {
		if n.key == key {
			return true
		}
	}
	return false
}

// Remove deletes key. Removing an absent key is a no-op.
func (t *Table[K]) Remove(key K) {
	idx := t.bucket(key)
	var prev *node[K]
	for n := t.buckets[idx]; n != nil; prev, n = n, n.next {
		if n.key != key {
			continue
		}
		if prev == nil {
			t.buckets[idx] = n.next
		} else {
			prev.next = n.next
		}
		t.size--
		return
	}
}

// Len returns the number of keys stored.
func (t *Table[K]) Len() int {
	return t.size
}

// Buckets returns the current bucket count.
func (t *Table[K]) Buckets() int {
	return len(t.buckets)
}

// MakeEmpty removes every key but keeps the current bucket count.
func (t *Table[K]) MakeEmpty() {
	clear(t.buckets)
	t.size = 0
}

func (t *Table[K]) bucket(key K) int {
	return int(t.hash(key) % uint64(len(t.buckets)))
}

// rehash grows to the next prime at least twice the current bucket count.
func (t *Table[K]) rehash() {
	old := t.buckets
	t.buckets = make([]*node[K], nextPrime(2*len(old)))
	for _, head := range old {
		for n := head; n != nil; {
			next := n.next
			idx := t.bucket(n.key)
			n.next = t.buckets[idx]
			t.buckets[idx] = n
			n = next
		}
	}
}

func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

func isPrime(n int) bool {
	if n == 2 || n == 3 {
		return true
	}
	if n < 2 || n%2 == 0 {
		return false
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
