// pkg/util/generic.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package util collects small generic helpers shared by the guidance,
// dispatch, and input packages: bounded history buffers, slice/map
// copies, and clamping. None of it depends on any of those packages.
package util

import (
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

// Select returns a if sel is true, else b.
func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	}
	return b
}

// DuplicateMap returns a newly allocated map that stores copies of all
// the values in the given map.
func DuplicateMap[K comparable, V any](m map[K]V) map[K]V {
	mnew := make(map[K]V, len(m))
	maps.Copy(mnew, m)
	return mnew
}

// DuplicateSlice returns a newly-allocated slice that is a copy of the
// provided one.
func DuplicateSlice[V any](s []V) []V {
	dupe := make([]V, len(s))
	copy(dupe, s)
	return dupe
}

// Clamp restricts v to [lo,hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampMin restricts v to be no lower than lo.
func ClampMin[T constraints.Ordered](v, lo T) T {
	if v < lo {
		return lo
	}
	return v
}

///////////////////////////////////////////////////////////////////////////
// BoundedHistory

// BoundedHistory is a newest-at-tail sequence of records capped at a
// configured limit; once full, the oldest record is dropped to make
// room for the next. It backs the history sequences the guidance
// runtime, input service, and manual dispatcher each maintain.
type BoundedHistory[V any] struct {
	entries []V
	limit   int
}

func NewBoundedHistory[V any](limit int) *BoundedHistory[V] {
	if limit <= 0 {
		limit = 1
	}
	return &BoundedHistory[V]{limit: limit}
}

// Push appends v, trimming the oldest entry if the history is already
// at its limit.
func (b *BoundedHistory[V]) Push(v V) {
	b.entries = append(b.entries, v)
	if len(b.entries) > b.limit {
		b.entries = slices.Delete(b.entries, 0, len(b.entries)-b.limit)
	}
}

// PushFront prepends v, trimming the oldest (tail) entry if the
// history is already at its limit. The guidance runtime keeps its
// history newest-first; this is the mirror of Push for that ordering.
func (b *BoundedHistory[V]) PushFront(v V) {
	b.entries = slices.Insert(b.entries, 0, v)
	if len(b.entries) > b.limit {
		b.entries = b.entries[:b.limit]
	}
}

func (b *BoundedHistory[V]) Len() int {
	return len(b.entries)
}

// Slice returns the underlying entries directly; callers that expose
// this outside the owning package must deep-copy first.
func (b *BoundedHistory[V]) Slice() []V {
	return b.entries
}

// Tail returns the most recent n entries (or fewer, if the history is
// shorter), oldest-first.
func (b *BoundedHistory[V]) Tail(n int) []V {
	if n >= len(b.entries) || n < 0 {
		return DuplicateSlice(b.entries)
	}
	return DuplicateSlice(b.entries[len(b.entries)-n:])
}
