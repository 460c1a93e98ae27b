package pdata

import (
	"math/bits"
)

// KeySet is a 256-bit set of key IDs.
// It is used to track which keys a manipulator or trait carries.
type KeySet [4]uint64

// KeySetOf returns a set containing the given keys.
func KeySetOf(ks ...AnyKey) KeySet {
	var s KeySet
	for _, k := range ks {
		s.Add(k.ID())
	}
	return s
}

// Add adds the ID to the set.
func (s *KeySet) Add(id KeyID) {
	s[id/64] |= 1 << (id % 64)
}

// Delete removes the ID from the set.
func (s *KeySet) Delete(id KeyID) {
	s[id/64] &^= 1 << (id % 64)
}

// Has returns true if the ID is in the set.
func (s *KeySet) Has(id KeyID) bool {
	return s[id/64]&(1<<(id%64)) != 0
}

// ContainsAny returns true if any ID in other is also in s.
func (s *KeySet) ContainsAny(other KeySet) bool {
	return (s[0]&other[0] != 0) ||
		(s[1]&other[1] != 0) ||
		(s[2]&other[2] != 0) ||
		(s[3]&other[3] != 0)
}

// IsZero returns true if the set is empty.
func (s *KeySet) IsZero() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0 && s[3] == 0
}

// Union returns a new set with the IDs of both s and other.
func (s KeySet) Union(other KeySet) KeySet {
	return KeySet{
		s[0] | other[0],
		s[1] | other[1],
		s[2] | other[2],
		s[3] | other[3],
	}
}

// Len returns the number of IDs in the set.
func (s *KeySet) Len() int {
	return bits.OnesCount64(s[0]) +
		bits.OnesCount64(s[1]) +
		bits.OnesCount64(s[2]) +
		bits.OnesCount64(s[3])
}
