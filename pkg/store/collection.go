// Package store holds the in-memory entity collections and the merge
// reducer applied to them. The reducer is the single choke point for
// inserts, updates and deletes, whether a change came from an optimistic
// local write or a pushed remote event. Collections are not safe for
// concurrent use on their own; the owning syncer serializes access.
package store

import (
	"sort"
	"strings"
)

// Record is the minimal shape a collection element must expose.
type Record interface {
	RecordId() string
	SortKey() int64
}

// Collection is an ordered set of records keyed by id. Insertion order is
// preserved until an explicit re-sort.
type Collection[T Record] struct {
	order   []T
	index   map[string]int
	foldKey bool // case-insensitive id lookup (profiles)
}

func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{index: map[string]int{}}
}

// NewFoldedCollection builds a collection whose id lookup is
// case-insensitive while stored records keep their display casing.
func NewFoldedCollection[T Record]() *Collection[T] {
	return &Collection[T]{index: map[string]int{}, foldKey: true}
}

func (c *Collection[T]) key(id string) string {
	if c.foldKey {
		return strings.ToLower(id)
	}
	return id
}

// MergeInsert appends rec unless a record with the same id already exists,
// in which case the insert is a no-op. Duplicate echoes of optimistic
// writes are absorbed here.
func (c *Collection[T]) MergeInsert(rec T) bool {
	k := c.key(rec.RecordId())
	if _, ok := c.index[k]; ok {
		return false
	}
	c.index[k] = len(c.order)
	c.order = append(c.order, rec)
	return true
}

// MergeUpdate applies fn to the record with the given id. If the record
// does not exist the update is dropped; an update never materializes a
// partial record on its own.
func (c *Collection[T]) MergeUpdate(id string, fn func(T)) bool {
	i, ok := c.index[c.key(id)]
	if !ok {
		return false
	}
	fn(c.order[i])
	return true
}

// MergeDelete removes the record with the given id; no-op if absent.
func (c *Collection[T]) MergeDelete(id string) bool {
	k := c.key(id)
	i, ok := c.index[k]
	if !ok {
		return false
	}
	c.order = append(c.order[:i], c.order[i+1:]...)
	delete(c.index, k)
	for j := i; j < len(c.order); j++ {
		c.index[c.key(c.order[j].RecordId())] = j
	}
	return true
}

// Replace swaps the whole collection for an authoritative snapshot. Later
// duplicates of an id are dropped.
func (c *Collection[T]) Replace(recs []T) {
	c.order = c.order[:0]
	c.index = map[string]int{}
	for _, rec := range recs {
		c.MergeInsert(rec)
	}
}

// SortByTimestamp re-sorts the collection ascending by sort key. Needed
// after a bootstrap merge; live inserts are always newest and are appended
// directly instead.
func (c *Collection[T]) SortByTimestamp() {
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.order[i].SortKey() < c.order[j].SortKey()
	})
	for i, rec := range c.order {
		c.index[c.key(rec.RecordId())] = i
	}
}

func (c *Collection[T]) Get(id string) (T, bool) {
	var zero T
	i, ok := c.index[c.key(id)]
	if !ok {
		return zero, false
	}
	return c.order[i], true
}

func (c *Collection[T]) Has(id string) bool {
	_, ok := c.index[c.key(id)]
	return ok
}

// List returns the records in collection order. The returned slice is
// owned by the caller; the records are shared and must be treated as
// read-only snapshots.
func (c *Collection[T]) List() []T {
	out := make([]T, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Collection[T]) Len() int { return len(c.order) }
