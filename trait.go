package pdata

import (
	"fmt"
	"reflect"
)

// Trait describes one semantic trait of a holder, such as "has health" or
// "is sneaking", as an ordered list of keys with their default values.
// Traits are created at bootstrap and are immutable.
type Trait struct {
	name     string
	keys     []AnyKey
	set      KeySet
	index    map[KeyID]int
	defaults []any
}

// TraitKey is a key paired with its default value, used to declare a Trait.
type TraitKey struct {
	key AnyKey
	def any
}

// Default pairs a key with its default value.
func Default[T any](key Key[T], def T) TraitKey {
	return TraitKey{key: key, def: def}
}

// NewTrait creates a trait from its keys in order. It panics if no keys are
// given or a key is listed twice.
func NewTrait(name string, keys ...TraitKey) *Trait {
	if len(keys) == 0 {
		panic(fmt.Sprintf("pdata: trait %q has no keys", name))
	}
	t := &Trait{
		name:     name,
		index:    make(map[KeyID]int, len(keys)),
		defaults: make([]any, 0, len(keys)),
	}
	for i, tk := range keys {
		if t.set.Has(tk.key.ID()) {
			panic(fmt.Sprintf("pdata: trait %q lists key %s twice", name, tk.key.Name()))
		}
		t.set.Add(tk.key.ID())
		t.index[tk.key.ID()] = i
		t.keys = append(t.keys, tk.key)
		t.defaults = append(t.defaults, tk.def)
	}
	return t
}

// Name returns the trait name.
func (t *Trait) Name() string { return t.name }

// Keys returns the keys of the trait in declaration order.
func (t *Trait) Keys() []AnyKey {
	out := make([]AnyKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// KeySet returns the set of key IDs of the trait.
func (t *Trait) KeySet() KeySet { return t.set }

// Has returns true if the key belongs to the trait.
func (t *Trait) Has(key AnyKey) bool {
	return key != nil && t.set.Has(key.ID())
}

// DefaultOf returns the default value of a key of the trait.
func (t *Trait) DefaultOf(key AnyKey) (any, bool) {
	i, ok := t.index[key.ID()]
	if !ok {
		return nil, false
	}
	return t.defaults[i], true
}

// New returns a mutable manipulator of the trait holding the default values.
func (t *Trait) New() *Manipulator {
	values := make([]any, len(t.defaults))
	copy(values, t.defaults)
	return &Manipulator{trait: t, values: values}
}

// String returns the trait name.
func (t *Trait) String() string { return t.name }

// assignable reports whether v may be stored under key.
func assignable(key AnyKey, v any) bool {
	if v == nil {
		k := key.Type().Kind()
		return k == reflect.Interface || k == reflect.Pointer || k == reflect.Slice || k == reflect.Map
	}
	return reflect.TypeOf(v).AssignableTo(key.Type())
}
