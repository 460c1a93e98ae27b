package pdata

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrNoCodec is returned when a key without a codec is encoded or decoded.
var ErrNoCodec = errors.New("no container codec")

// Codec converts values of a key to and from the primitive representation
// stored in a Container. Encoded values must be one of bool, int64, float64,
// string, []any or map[string]any so every container encoding can hold them.
type Codec[T any] interface {
	Encode(v T) (any, error)
	Decode(raw any) (T, error)
}

// CodecFunc builds a Codec from a pair of functions.
func CodecFunc[T any](encode func(T) (any, error), decode func(any) (T, error)) Codec[T] {
	return funcCodec[T]{encode: encode, decode: decode}
}

type funcCodec[T any] struct {
	encode func(T) (any, error)
	decode func(any) (T, error)
}

func (c funcCodec[T]) Encode(v T) (any, error)   { return c.encode(v) }
func (c funcCodec[T]) Decode(raw any) (T, error) { return c.decode(raw) }

var (
	boolType     = reflect.TypeOf(false)
	intType      = reflect.TypeOf(0)
	float64Type  = reflect.TypeOf(0.0)
	stringType   = reflect.TypeOf("")
	durationType = reflect.TypeOf(time.Duration(0))
	vec3Type     = reflect.TypeOf(mgl64.Vec3{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	gameModeType = reflect.TypeOf((*world.GameMode)(nil)).Elem()
)

// defaultCodec returns the built-in codec for T, or nil if there is none.
func defaultCodec[T any]() Codec[T] {
	var c any
	switch reflect.TypeOf((*T)(nil)).Elem() {
	case boolType:
		c = boolCodec{}
	case intType:
		c = intCodec{}
	case float64Type:
		c = floatCodec{}
	case stringType:
		c = stringCodec{}
	case durationType:
		c = durationCodec{}
	case vec3Type:
		c = vec3Codec{}
	case uuidType:
		c = uuidCodec{}
	case gameModeType:
		c = gameModeCodec{}
	default:
		return nil
	}
	return c.(Codec[T])
}

type boolCodec struct{}

func (boolCodec) Encode(v bool) (any, error) { return v, nil }
func (boolCodec) Decode(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case uint8:
		// NBT has no boolean tag and stores flags as bytes.
		return v != 0, nil
	}
	n, err := toInt64(raw)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

type intCodec struct{}

func (intCodec) Encode(v int) (any, error) { return int64(v), nil }
func (intCodec) Decode(raw any) (int, error) {
	n, err := toInt64(raw)
	return int(n), err
}

type floatCodec struct{}

func (floatCodec) Encode(v float64) (any, error) { return v, nil }
func (floatCodec) Decode(raw any) (float64, error) {
	return toFloat64(raw)
}

type stringCodec struct{}

func (stringCodec) Encode(v string) (any, error) { return v, nil }
func (stringCodec) Decode(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", raw)
	}
	return s, nil
}

// durationCodec stores durations as whole milliseconds.
type durationCodec struct{}

func (durationCodec) Encode(v time.Duration) (any, error) { return v.Milliseconds(), nil }
func (durationCodec) Decode(raw any) (time.Duration, error) {
	n, err := toInt64(raw)
	return time.Duration(n) * time.Millisecond, err
}

type vec3Codec struct{}

func (vec3Codec) Encode(v mgl64.Vec3) (any, error) {
	return []any{v[0], v[1], v[2]}, nil
}

func (vec3Codec) Decode(raw any) (mgl64.Vec3, error) {
	var vec mgl64.Vec3
	switch v := raw.(type) {
	case mgl64.Vec3:
		return v, nil
	case []float64:
		if len(v) != 3 {
			return vec, fmt.Errorf("expected 3 components, got %d", len(v))
		}
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	case []any:
		if len(v) != 3 {
			return vec, fmt.Errorf("expected 3 components, got %d", len(v))
		}
		for i, c := range v {
			f, err := toFloat64(c)
			if err != nil {
				return vec, err
			}
			vec[i] = f
		}
		return vec, nil
	}
	return vec, fmt.Errorf("expected vector, got %T", raw)
}

type uuidCodec struct{}

func (uuidCodec) Encode(v uuid.UUID) (any, error) { return v.String(), nil }
func (uuidCodec) Decode(raw any) (uuid.UUID, error) {
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("expected uuid string, got %T", raw)
	}
	return uuid.Parse(s)
}

type gameModeCodec struct{}

func (gameModeCodec) Encode(v world.GameMode) (any, error) {
	id, ok := world.GameModeID(v)
	if !ok {
		return nil, fmt.Errorf("unknown game mode %T", v)
	}
	return int64(id), nil
}

func (gameModeCodec) Decode(raw any) (world.GameMode, error) {
	n, err := toInt64(raw)
	if err != nil {
		return nil, err
	}
	mode, ok := world.GameModeByID(int(n))
	if !ok {
		return nil, fmt.Errorf("unknown game mode id %d", n)
	}
	return mode, nil
}

// toInt64 converts any numeric representation produced by the container
// encodings (NBT, YAML, JSON) to an int64.
func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

func uintToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("integer %d overflows int64", v)
	}
	return int64(v), nil
}

// floatToInt64 accepts floats holding whole numbers, as JSON and YAML
// decoders produce for integers.
func floatToInt64(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("number %v is not an integer", v)
	}
	// 2^63 is exactly representable and the first float out of range.
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, fmt.Errorf("number %v overflows int64", v)
	}
	return int64(v), nil
}

// toFloat64 converts any numeric representation to a float64.
func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	}
	n, err := toInt64(raw)
	return float64(n), err
}
