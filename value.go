package pdata

import (
	"cmp"
	"fmt"
)

// AnyValue is the untyped view of a value. Transaction results hold their
// values as AnyValue so values of different keys can share one list.
type AnyValue interface {
	// AnyKey returns the key of the value.
	AnyKey() AnyKey
	// Raw returns the held value.
	Raw() any
	// RawDefault returns the default value of the key.
	RawDefault() any
}

// Mutable is a (key, value, default) triple whose value can be replaced.
type Mutable[T any] struct {
	key   Key[T]
	value T
	def   T
}

// NewValue returns a mutable value for the key.
func NewValue[T any](key Key[T], value, def T) *Mutable[T] {
	return &Mutable[T]{key: key, value: value, def: def}
}

// Key returns the key of the value.
func (v *Mutable[T]) Key() Key[T] { return v.key }

// AnyKey implements AnyValue.
func (v *Mutable[T]) AnyKey() AnyKey { return v.key }

// Get returns the current value.
func (v *Mutable[T]) Get() T { return v.value }

// Default returns the default value.
func (v *Mutable[T]) Default() T { return v.def }

// Raw implements AnyValue.
func (v *Mutable[T]) Raw() any { return v.value }

// RawDefault implements AnyValue.
func (v *Mutable[T]) RawDefault() any { return v.def }

// Set replaces the value and returns v for chaining.
func (v *Mutable[T]) Set(value T) *Mutable[T] {
	v.value = value
	return v
}

// Copy returns an independent copy of the value.
func (v *Mutable[T]) Copy() *Mutable[T] {
	c := *v
	return &c
}

// AsImmutable returns a frozen snapshot of the value.
func (v *Mutable[T]) AsImmutable() *Immutable[T] {
	return ImmutableOf(v.key, v.value, v.def)
}

// String returns a debug representation of the value.
func (v *Mutable[T]) String() string {
	return fmt.Sprintf("%s=%v", v.key.Name(), v.value)
}

// Immutable is a frozen (key, value, default) snapshot.
type Immutable[T any] struct {
	key   Key[T]
	value T
	def   T
}

// Key returns the key of the value.
func (v *Immutable[T]) Key() Key[T] { return v.key }

// AnyKey implements AnyValue.
func (v *Immutable[T]) AnyKey() AnyKey { return v.key }

// Get returns the value.
func (v *Immutable[T]) Get() T { return v.value }

// Default returns the default value.
func (v *Immutable[T]) Default() T { return v.def }

// Raw implements AnyValue.
func (v *Immutable[T]) Raw() any { return v.value }

// RawDefault implements AnyValue.
func (v *Immutable[T]) RawDefault() any { return v.def }

// With returns an immutable value holding the new value. v is not changed.
func (v *Immutable[T]) With(value T) *Immutable[T] {
	return ImmutableOf(v.key, value, v.def)
}

// AsMutable returns a mutable copy of the value.
func (v *Immutable[T]) AsMutable() *Mutable[T] {
	return NewValue(v.key, v.value, v.def)
}

// String returns a debug representation of the value.
func (v *Immutable[T]) String() string {
	return fmt.Sprintf("%s=%v", v.key.Name(), v.value)
}

// Bounded is a mutable value constrained to [min, max].
// Set never rejects an out-of-range value; whoever applies the value decides
// what to do when InBounds reports false.
type Bounded[T any] struct {
	Mutable[T]
	min     T
	max     T
	compare func(a, b T) int
}

// NewBounded returns a bounded value ordered by the natural ordering of T.
func NewBounded[T cmp.Ordered](key Key[T], value, def, min, max T) *Bounded[T] {
	return NewBoundedFunc(key, value, def, min, max, cmp.Compare[T])
}

// NewBoundedFunc returns a bounded value ordered by compare.
func NewBoundedFunc[T any](key Key[T], value, def, min, max T, compare func(a, b T) int) *Bounded[T] {
	return &Bounded[T]{
		Mutable: Mutable[T]{key: key, value: value, def: def},
		min:     min,
		max:     max,
		compare: compare,
	}
}

// Min returns the lower bound.
func (v *Bounded[T]) Min() T { return v.min }

// Max returns the upper bound.
func (v *Bounded[T]) Max() T { return v.max }

// InBounds returns true if min <= value <= max.
func (v *Bounded[T]) InBounds() bool {
	return v.compare(v.value, v.min) >= 0 && v.compare(v.value, v.max) <= 0
}

// Set replaces the value and returns v for chaining.
func (v *Bounded[T]) Set(value T) *Bounded[T] {
	v.value = value
	return v
}

// Copy returns an independent copy of the value.
func (v *Bounded[T]) Copy() *Bounded[T] {
	c := *v
	return &c
}
