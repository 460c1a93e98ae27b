package pdata

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"gopkg.in/yaml.v3"
)

// Container is a tree of string-keyed values used to persist data.
// Paths address nested entries with dots: "health.max_health".
//
// Leaf values are bool, int64, float64, string or []any; nested entries are
// Containers. Values decoded from NBT, YAML or JSON may use other numeric
// types, which the typed getters and key codecs accept.
type Container map[string]any

// NewContainer returns an empty container.
func NewContainer() Container {
	return make(Container)
}

// Set stores v at path, creating intermediate containers as needed.
func (c Container) Set(path string, v any) {
	parts := strings.Split(path, ".")
	cur := c
	for _, p := range parts[:len(parts)-1] {
		next, ok := asContainer(cur[p])
		if !ok {
			next = NewContainer()
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// Get returns the value at path.
func (c Container) Get(path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := c
	for _, p := range parts[:len(parts)-1] {
		next, ok := asContainer(cur[p])
		if !ok {
			return nil, false
		}
		cur = next
	}
	v, ok := cur[parts[len(parts)-1]]
	return v, ok
}

// View returns the nested container at path.
func (c Container) View(path string) (Container, bool) {
	v, ok := c.Get(path)
	if !ok {
		return nil, false
	}
	return asContainer(v)
}

// Remove deletes the value at path and reports whether it existed.
func (c Container) Remove(path string) bool {
	i := strings.LastIndexByte(path, '.')
	parent := c
	if i >= 0 {
		var ok bool
		if parent, ok = c.View(path[:i]); !ok {
			return false
		}
	}
	name := path[i+1:]
	if _, ok := parent[name]; !ok {
		return false
	}
	delete(parent, name)
	return true
}

// Keys returns the top-level keys in sorted order.
func (c Container) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Len returns the number of top-level entries.
func (c Container) Len() int {
	return len(c)
}

// Int returns the value at path as an integer.
func (c Container) Int(path string) (int64, bool) {
	v, ok := c.Get(path)
	if !ok {
		return 0, false
	}
	n, err := toInt64(v)
	return n, err == nil
}

// Float returns the value at path as a float.
func (c Container) Float(path string) (float64, bool) {
	v, ok := c.Get(path)
	if !ok {
		return 0, false
	}
	f, err := toFloat64(v)
	return f, err == nil
}

// Bool returns the value at path as a boolean.
func (c Container) Bool(path string) (bool, bool) {
	v, ok := c.Get(path)
	if !ok {
		return false, false
	}
	b, err := boolCodec{}.Decode(v)
	return b, err == nil
}

// Text returns the value at path as a string.
func (c Container) Text(path string) (string, bool) {
	v, ok := c.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// asContainer converts nested maps produced by decoders to a Container.
func asContainer(v any) (Container, bool) {
	switch m := v.(type) {
	case Container:
		return m, true
	case map[string]any:
		return Container(m), true
	}
	return nil, false
}

// EncodeNBT encodes the container as little-endian NBT, the format dragonfly
// uses for its world and player data.
func (c Container) EncodeNBT() ([]byte, error) {
	b, err := nbt.MarshalEncoding(toNBT(c), nbt.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("encode nbt: %w", err)
	}
	return b, nil
}

// DecodeNBT decodes a container from little-endian NBT.
func DecodeNBT(b []byte) (Container, error) {
	m := make(map[string]any)
	if err := nbt.UnmarshalEncoding(b, &m, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return Container(m), nil
}

// toNBT converts values to types NBT has tags for: booleans become bytes
// and lists become typed slices.
func toNBT(v any) any {
	switch t := v.(type) {
	case Container:
		return toNBT(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toNBT(e)
		}
		return out
	case bool:
		if t {
			return uint8(1)
		}
		return uint8(0)
	case int:
		return int64(t)
	case []any:
		return typedList(t)
	}
	return v
}

// typedList converts a homogeneous []any to a typed slice.
func typedList(l []any) any {
	if len(l) == 0 {
		return []int64{}
	}
	switch l[0].(type) {
	case float64:
		out := make([]float64, 0, len(l))
		for _, e := range l {
			f, err := toFloat64(e)
			if err != nil {
				return l
			}
			out = append(out, f)
		}
		return out
	case int64, int:
		out := make([]int64, 0, len(l))
		for _, e := range l {
			n, err := toInt64(e)
			if err != nil {
				return l
			}
			out = append(out, n)
		}
		return out
	case string:
		out := make([]string, 0, len(l))
		for _, e := range l {
			s, ok := e.(string)
			if !ok {
				return l
			}
			out = append(out, s)
		}
		return out
	}
	out := make([]any, len(l))
	for i, e := range l {
		out[i] = toNBT(e)
	}
	return out
}

// EncodeYAML encodes the container as YAML.
func (c Container) EncodeYAML() ([]byte, error) {
	b, err := yaml.Marshal(map[string]any(c))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return b, nil
}

// DecodeYAML decodes a container from YAML.
func DecodeYAML(b []byte) (Container, error) {
	m := make(map[string]any)
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return Container(m), nil
}

// EncodeJSON encodes the container as JSON.
func (c Container) EncodeJSON() ([]byte, error) {
	b, err := json.Marshal(map[string]any(c))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return b, nil
}

// DecodeJSON decodes a container from JSON. Comments are allowed.
func DecodeJSON(b []byte) (Container, error) {
	m := make(map[string]any)
	if err := json.Unmarshal(jsonc.ToJSON(b), &m); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return Container(m), nil
}
