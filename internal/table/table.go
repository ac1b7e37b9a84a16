// Package table implements the associative store behind every data object:
// a chained-bucket hash table whose keys and values may each be owned copies
// or references to immutable static strings.
package table

import (
	"errors"
	"iter"
)

const (
	defaultInitialCapacity = 8
	defaultLoadFactor      = 0.7
)

var (
	// ErrAllocation is returned when an insertion needs a resize beyond MaxCapacity.
	ErrAllocation = errors.New("table: allocation failed")
	// ErrNilField is returned when a nil key or value is passed to Put.
	ErrNilField = errors.New("table: nil field")
)

// Options tunes a Table. Zero fields take their defaults.
type Options struct {
	InitialCapacity int
	LoadFactor      float64
	// MaxCapacity bounds the bucket count; 0 means unbounded.
	MaxCapacity int
}

// FillDefaults sets any zero-value fields to their defaults.
func (o *Options) FillDefaults() {
	if o.InitialCapacity <= 0 {
		o.InitialCapacity = defaultInitialCapacity
	}
	if o.LoadFactor <= 0 {
		o.LoadFactor = defaultLoadFactor
	}
}

type entry struct {
	key   Field
	value Field
	next  *entry
}

// Table is a hash table keyed by field content. It is not safe for
// concurrent use.
type Table struct {
	buckets []*entry
	count   int
	opts    Options
}

// New creates an empty Table.
func New(opts Options) *Table {
	opts.FillDefaults()
	return &Table{
		buckets: make([]*entry, opts.InitialCapacity),
		opts:    opts,
	}
}

// NewDefault creates an empty Table with default options.
func NewDefault() *Table {
	return New(Options{})
}

func (t *Table) index(key Field, capacity int) int {
	return int(hash(key) % uint32(capacity))
}

func (t *Table) find(key Field) (*entry, int) {
	idx := t.index(key, len(t.buckets))
	for e := t.buckets[idx]; e != nil; e = e.next {
		if Equal(key, e.key) {
			return e, idx
		}
	}
	return nil, idx
}

// Put inserts or updates key. Owned keys and values are copied; static ones
// are stored by reference. Updating an existing key keeps the stored key and
// retags the value with the new field's tier.
func (t *Table) Put(key, value Field) error {
	if key == nil || value == nil {
		return ErrNilField
	}

	if e, _ := t.find(key); e != nil {
		e.value = store(value)
		return nil
	}

	idx := t.index(key, len(t.buckets))
	e := &entry{key: store(key), value: store(value), next: t.buckets[idx]}
	t.buckets[idx] = e
	t.count++

	if !t.overloaded() {
		return nil
	}
	if err := t.grow(); err != nil {
		// Roll back so the load factor still holds.
		t.buckets[idx] = e.next
		t.count--
		return err
	}
	return nil
}

func (t *Table) overloaded() bool {
	return float64(t.count)/float64(len(t.buckets)) > t.opts.LoadFactor
}

// grow doubles the bucket array until the load factor holds again.
func (t *Table) grow() error {
	capacity := len(t.buckets)
	for float64(t.count)/float64(capacity) > t.opts.LoadFactor {
		capacity *= 2
	}
	if t.opts.MaxCapacity > 0 && capacity > t.opts.MaxCapacity {
		return ErrAllocation
	}
	t.resize(capacity)
	return nil
}

// resize relinks every entry into a new bucket array; key and value bytes are
// never touched.
func (t *Table) resize(capacity int) {
	buckets := make([]*entry, capacity)
	for _, head := range t.buckets {
		for e := head; e != nil; {
			next := e.next
			idx := t.index(e.key, capacity)
			e.next = buckets[idx]
			buckets[idx] = e
			e = next
		}
	}
	t.buckets = buckets
}

// Get returns the value stored for key.
func (t *Table) Get(key Field) (Field, bool) {
	if key == nil {
		return nil, false
	}
	e, _ := t.find(key)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Exists reports whether key is present.
func (t *Table) Exists(key Field) bool {
	_, ok := t.Get(key)
	return ok
}

// Remove unlinks key. It returns true if an entry was removed.
func (t *Table) Remove(key Field) bool {
	if key == nil {
		return false
	}
	idx := t.index(key, len(t.buckets))
	var prev *entry
	for e := t.buckets[idx]; e != nil; e = e.next {
		if !Equal(key, e.key) {
			prev = e
			continue
		}
		if prev == nil {
			t.buckets[idx] = e.next
		} else {
			prev.next = e.next
		}
		e.next, e.key, e.value = nil, nil, nil
		t.count--
		return true
	}
	return false
}

// Clear drops every entry and shrinks back to the initial capacity.
func (t *Table) Clear() {
	t.buckets = make([]*entry, t.opts.InitialCapacity)
	t.count = 0
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return t.count
}

// Capacity returns the current bucket count.
func (t *Table) Capacity() int {
	return len(t.buckets)
}

// LoadFactor returns the resize threshold.
func (t *Table) LoadFactor() float64 {
	return t.opts.LoadFactor
}

// Range calls fn for every entry until fn returns false. Order is
// unspecified and changes across resizes. fn must not modify the table.
func (t *Table) Range(fn func(key, value Field) bool) bool {
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, e.value) {
				return false
			}
		}
	}
	return true
}

// All returns an iterator over every entry.
func (t *Table) All() iter.Seq2[Field, Field] {
	return func(yield func(Field, Field) bool) {
		t.Range(yield)
	}
}
