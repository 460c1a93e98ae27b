package pdata

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// KeyID is a unique identifier for a registered key.
// Valid IDs range from 0 to 254.
type KeyID uint8

// MaxKeys is the maximum number of keys that can be registered.
const MaxKeys = 255

// AnyKey is the untyped view of a Key. It is used wherever keys of different
// value types are handled together, such as in a Trait or a TransactionResult.
type AnyKey interface {
	// ID returns the registry ID of the key.
	ID() KeyID
	// Name returns the globally unique name of the key.
	Name() string
	// Type returns the value type carried by the key.
	Type() reflect.Type

	encode(v any) (any, error)
	decode(raw any) (any, error)
	immutable(v, def any) AnyValue
}

// Key identifies a semantic property with values of type T.
// Keys are created once at bootstrap with NewKey and never change afterwards.
type Key[T any] struct {
	*keyInfo
	codec Codec[T]
}

// keyInfo is the shared, immutable part of a key.
type keyInfo struct {
	id   KeyID
	name string
	typ  reflect.Type
}

// ID returns the registry ID of the key.
func (k *keyInfo) ID() KeyID { return k.id }

// Name returns the name of the key.
func (k *keyInfo) Name() string { return k.name }

// Type returns the value type of the key.
func (k *keyInfo) Type() reflect.Type { return k.typ }

// String returns the key name.
func (k *keyInfo) String() string { return k.name }

func (k Key[T]) encode(v any) (any, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("key %s: cannot encode %T", k.name, v)
	}
	if k.codec == nil {
		return nil, fmt.Errorf("key %s: %w", k.name, ErrNoCodec)
	}
	return k.codec.Encode(t)
}

func (k Key[T]) decode(raw any) (any, error) {
	if k.codec == nil {
		return nil, fmt.Errorf("key %s: %w", k.name, ErrNoCodec)
	}
	v, err := k.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("key %s: %w", k.name, err)
	}
	return v, nil
}

func (k Key[T]) immutable(v, def any) AnyValue {
	tv, _ := v.(T)
	td, _ := def.(T)
	return ImmutableOf(k, tv, td)
}

// Valid reports whether the key was created through NewKey.
func (k Key[T]) Valid() bool {
	return k.keyInfo != nil
}

// KeyOption configures a key at creation.
type KeyOption[T any] func(*Key[T])

// WithCodec overrides the container codec used for the key.
func WithCodec[T any](c Codec[T]) KeyOption[T] {
	return func(k *Key[T]) {
		k.codec = c
	}
}

// keyRegistry manages key registration with lock-free reads.
// Keys are registered at bootstrap and looked up by name and ID afterwards.
type keyRegistry struct {
	// byName maps the key name to its AnyKey.
	byName sync.Map // map[string]AnyKey

	// keys stores registered keys indexed by KeyID.
	keys [MaxKeys]AnyKey

	// nextID is the next available key ID.
	nextID atomic.Uint32

	// mu protects writes to keys and name reservation.
	mu sync.RWMutex
}

// keyReg is the process-wide key registry.
var keyReg = &keyRegistry{}

// NewKey registers a new key with the given name. It panics if a key with the
// same name already exists or the key limit is exceeded, since keys are only
// created during bootstrap.
//
// If no codec is given and T has a built-in codec, that codec is used.
// Keys without any codec cannot be filled from a Container.
func NewKey[T any](name string, opts ...KeyOption[T]) Key[T] {
	keyReg.mu.Lock()
	defer keyReg.mu.Unlock()

	if _, ok := keyReg.byName.Load(name); ok {
		panic(fmt.Sprintf("pdata: key %q registered twice", name))
	}
	id := keyReg.nextID.Load()
	if id >= MaxKeys {
		panic(fmt.Sprintf("pdata: key limit exceeded (max %d keys)", MaxKeys))
	}
	keyReg.nextID.Add(1)

	k := Key[T]{
		keyInfo: &keyInfo{
			id:   KeyID(id),
			name: name,
			typ:  reflect.TypeOf((*T)(nil)).Elem(),
		},
		codec: defaultCodec[T](),
	}
	for _, opt := range opts {
		opt(&k)
	}

	keyReg.keys[id] = k
	keyReg.byName.Store(name, AnyKey(k))
	return k
}

// KeyByName looks up a registered key by its name.
func KeyByName(name string) (AnyKey, bool) {
	v, ok := keyReg.byName.Load(name)
	if !ok {
		return nil, false
	}
	return v.(AnyKey), true
}

// KeyByID returns the key registered with the given ID.
func KeyByID(id KeyID) (AnyKey, bool) {
	if int(id) >= MaxKeys {
		return nil, false
	}
	keyReg.mu.RLock()
	defer keyReg.mu.RUnlock()
	k := keyReg.keys[id]
	return k, k != nil
}

// RegisteredKeyCount returns the number of registered keys.
func RegisteredKeyCount() int {
	return int(keyReg.nextID.Load())
}
