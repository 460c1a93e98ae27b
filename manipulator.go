package pdata

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrImmutable is returned when an immutable manipulator is modified.
	ErrImmutable = errors.New("manipulator is immutable")
	// ErrUnknownKey is returned when a key does not belong to a trait.
	ErrUnknownKey = errors.New("key does not belong to trait")
)

// Manipulator is a detached bag of values for one Trait. It always holds a
// value for every key of its trait, in the trait's key order.
//
// A manipulator is either mutable or immutable. Immutable manipulators are
// frozen snapshots: Set on them returns ErrImmutable.
type Manipulator struct {
	trait     *Trait
	values    []any
	immutable bool
}

// Trait returns the trait of the manipulator.
func (m *Manipulator) Trait() *Trait { return m.trait }

// Keys returns the keys of the manipulator in order.
func (m *Manipulator) Keys() []AnyKey { return m.trait.Keys() }

// Values returns immutable snapshots of all values in key order.
func (m *Manipulator) Values() []AnyValue {
	out := make([]AnyValue, len(m.values))
	for i, k := range m.trait.keys {
		out[i] = k.immutable(m.values[i], m.trait.defaults[i])
	}
	return out
}

// Has returns true if the manipulator carries the key.
func (m *Manipulator) Has(key AnyKey) bool {
	return m.trait.Has(key)
}

// IsImmutable returns true if the manipulator is a frozen snapshot.
func (m *Manipulator) IsImmutable() bool { return m.immutable }

// RawGet returns the value stored under key.
func (m *Manipulator) RawGet(key AnyKey) (any, bool) {
	i, ok := m.trait.index[key.ID()]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// RawSet stores v under key after checking that v has the key's type.
func (m *Manipulator) RawSet(key AnyKey, v any) error {
	if m.immutable {
		return ErrImmutable
	}
	i, ok := m.trait.index[key.ID()]
	if !ok {
		return fmt.Errorf("%s: %w %s", key.Name(), ErrUnknownKey, m.trait.name)
	}
	if !assignable(key, v) {
		return fmt.Errorf("%s: cannot store %T as %v", key.Name(), v, key.Type())
	}
	m.values[i] = v
	return nil
}

// Copy returns an independent copy with the same mutability.
func (m *Manipulator) Copy() *Manipulator {
	values := make([]any, len(m.values))
	copy(values, m.values)
	return &Manipulator{trait: m.trait, values: values, immutable: m.immutable}
}

// AsImmutable returns a frozen copy. If m is already immutable it is returned
// as is.
func (m *Manipulator) AsImmutable() *Manipulator {
	if m.immutable {
		return m
	}
	c := m.Copy()
	c.immutable = true
	return c
}

// AsMutable returns a mutable copy of m.
func (m *Manipulator) AsMutable() *Manipulator {
	c := m.Copy()
	c.immutable = false
	return c
}

// Equal returns true if other has the same trait and deeply equal values.
// Mutability is ignored.
func (m *Manipulator) Equal(other *Manipulator) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.trait != other.trait {
		return false
	}
	for i := range m.values {
		if !reflect.DeepEqual(m.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// Container encodes the manipulator into a container, one entry per key name.
func (m *Manipulator) Container() (Container, error) {
	c := NewContainer()
	for i, k := range m.trait.keys {
		raw, err := k.encode(m.values[i])
		if err != nil {
			return nil, err
		}
		c.Set(k.Name(), raw)
	}
	return c, nil
}

// String returns a debug representation of the manipulator.
func (m *Manipulator) String() string {
	var b strings.Builder
	b.WriteString(m.trait.name)
	b.WriteByte('{')
	for i, k := range m.trait.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k.Name(), m.values[i])
	}
	b.WriteByte('}')
	return b.String()
}

// Get returns the value stored under key.
func Get[T any](m *Manipulator, key Key[T]) (T, bool) {
	raw, ok := m.RawGet(key)
	if !ok {
		var zero T
		return zero, false
	}
	v, _ := raw.(T)
	return v, true
}

// Set stores v under key.
func Set[T any](m *Manipulator, key Key[T], v T) error {
	if m.immutable {
		return ErrImmutable
	}
	i, ok := m.trait.index[key.ID()]
	if !ok {
		return fmt.Errorf("%s: %w %s", key.Name(), ErrUnknownKey, m.trait.name)
	}
	m.values[i] = v
	return nil
}

// ValueOf returns a mutable snapshot of the value stored under key.
// Changing the returned value does not change m.
func ValueOf[T any](m *Manipulator, key Key[T]) (*Mutable[T], bool) {
	i, ok := m.trait.index[key.ID()]
	if !ok {
		return nil, false
	}
	v, _ := m.values[i].(T)
	def, _ := m.trait.defaults[i].(T)
	return NewValue(key, v, def), true
}

// With returns a copy of m with key set to v. It works on immutable
// manipulators too; the copy keeps m's mutability.
func With[T any](m *Manipulator, key Key[T], v T) (*Manipulator, error) {
	c := m.Copy()
	i, ok := c.trait.index[key.ID()]
	if !ok {
		return nil, fmt.Errorf("%s: %w %s", key.Name(), ErrUnknownKey, m.trait.name)
	}
	c.values[i] = v
	return c, nil
}

// fill decodes every key of the trait found in c into m. Keys missing from
// the container keep their current value. It returns false if no key was
// found.
func (m *Manipulator) fill(c Container) (bool, error) {
	found := false
	for i, k := range m.trait.keys {
		raw, ok := c.Get(k.Name())
		if !ok {
			continue
		}
		v, err := k.decode(raw)
		if err != nil {
			return false, err
		}
		m.values[i] = v
		found = true
	}
	return found, nil
}
