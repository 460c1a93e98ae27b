package pdata

import (
	"math"
	"reflect"
	"sync"
	"sync/atomic"
)

// maxCachedValues caps the number of immutable values kept by the cache.
// Once full, new values are still returned but no longer stored.
const maxCachedValues = 4096

// valueCache shares immutable values between callers so that frequently
// repeated snapshots, such as booleans and small enums, are allocated once.
type valueCache struct {
	// entries maps cacheKey -> AnyValue.
	entries sync.Map

	// size is the number of stored entries.
	size atomic.Int64

	// disabled turns the cache into a pass-through.
	disabled atomic.Bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// cacheKey identifies a cached immutable value.
type cacheKey struct {
	key   KeyID
	def   any
	value any
}

// immutables is the process-wide immutable value cache.
var immutables = &valueCache{}

// ImmutableOf returns an immutable value for the key. Values of primitive
// kinds are cached and shared: two calls with the same key, default and value
// return the same pointer.
func ImmutableOf[T any](key Key[T], value, def T) *Immutable[T] {
	if immutables.disabled.Load() || !cacheable(value) || !cacheable(def) {
		return &Immutable[T]{key: key, value: value, def: def}
	}

	ck := cacheKey{key: key.ID(), def: def, value: value}
	if v, ok := immutables.entries.Load(ck); ok {
		immutables.hits.Add(1)
		return v.(*Immutable[T])
	}
	immutables.misses.Add(1)

	v := &Immutable[T]{key: key, value: value, def: def}
	if immutables.size.Load() >= maxCachedValues {
		return v
	}
	actual, loaded := immutables.entries.LoadOrStore(ck, v)
	if !loaded {
		immutables.size.Add(1)
	}
	return actual.(*Immutable[T])
}

// SetImmutableCache enables or disables the immutable value cache. Disabling
// the cache also drops every stored value.
func SetImmutableCache(enabled bool) {
	immutables.disabled.Store(!enabled)
	if !enabled {
		immutables.entries.Range(func(k, _ any) bool {
			immutables.entries.Delete(k)
			return true
		})
		immutables.size.Store(0)
	}
}

// ImmutableCacheStats returns the number of cache hits and misses so far.
func ImmutableCacheStats() (hits, misses uint64) {
	return immutables.hits.Load(), immutables.misses.Load()
}

// cacheable reports whether v can safely be part of a map key. Only
// primitive kinds and arrays of them qualify; structs and interfaces may hold
// values that panic when compared. NaN never equals itself, so values holding
// one would be stored again on every lookup.
func cacheable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return primitiveKind(rv.Type()) && !hasNaN(rv)
}

func hasNaN(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(v.Float())
	case reflect.Array:
		for i := range v.Len() {
			if hasNaN(v.Index(i)) {
				return true
			}
		}
	}
	return false
}

func primitiveKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Array:
		return primitiveKind(t.Elem())
	}
	return false
}
