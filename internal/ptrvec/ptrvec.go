// Package ptrvec provides a growable vector of individually allocated
// values. Growing the vector moves only the pointer slice, never the values,
// so addresses into stored values survive any number of appends.
package ptrvec

import "iter"

// Vector owns a sequence of *T. The zero value is ready to use.
type Vector[T any] struct {
	items []*T
}

// Len returns the number of stored values.
func (v *Vector[T]) Len() int { return len(v.items) }

// Push appends p. The vector takes ownership of it.
func (v *Vector[T]) Push(p *T) {
	if p == nil {
		panic("ptrvec: push of nil pointer")
	}
	v.items = append(v.items, p)
}

// Pop removes and returns the last value. It panics on an empty vector.
func (v *Vector[T]) Pop() *T {
	n := len(v.items)
	if n == 0 {
		panic("ptrvec: pop from empty vector")
	}
	p := v.items[n-1]
	v.items[n-1] = nil
	v.items = v.items[:n-1]
	return p
}

// At returns the i-th value.
func (v *Vector[T]) At(i int) *T { return v.items[i] }

// Last returns the final value, or nil if the vector is empty.
func (v *Vector[T]) Last() *T {
	if len(v.items) == 0 {
		return nil
	}
	return v.items[len(v.items)-1]
}

// All iterates over the stored values in order.
func (v *Vector[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i, p := range v.items {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Clear drops every value and keeps the pointer slice for reuse.
func (v *Vector[T]) Clear() {
	clear(v.items)
	v.items = v.items[:0]
}

// ShrinkToFit releases unused capacity in the pointer slice.
func (v *Vector[T]) ShrinkToFit() {
	if cap(v.items) == len(v.items) {
		return
	}
	if len(v.items) == 0 {
		v.items = nil
		return
	}
	items := make([]*T, len(v.items))
	copy(items, v.items)
	v.items = items
}
