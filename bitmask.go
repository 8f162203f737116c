package kizuna

import "math/bits"

// bitmask256 represents a set of up to 256 component IDs. It is the
// canonical, order-independent signature of an archetype: each bit
// corresponds to a component ID, and two archetypes never share a mask.
type bitmask256 [4]uint64

// set enables the bit corresponding to the given component ID.
func (m *bitmask256) set(id ComponentID) {
	i := id >> 6 // (id / 64) to find the uint64 index
	o := id & 63 // (id % 64) to find the bit offset
	m[i] |= uint64(1) << uint64(o)
}

// unset disables the bit corresponding to the given component ID.
func (m *bitmask256) unset(id ComponentID) {
	i := id >> 6
	o := id & 63
	m[i] &= ^(uint64(1) << uint64(o))
}

// contains checks if all the bits set in sub are also set in m. This is used
// to decide whether an archetype's signature is a superset of a query's.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

// containsBit checks if a specific bit is set in the mask.
func (m bitmask256) containsBit(id ComponentID) bool {
	i := id >> 6
	o := id & 63
	return (m[i] & (uint64(1) << uint64(o))) != 0
}

// or returns the union of m and other.
func (m bitmask256) or(other bitmask256) bitmask256 {
	return bitmask256{m[0] | other[0], m[1] | other[1], m[2] | other[2], m[3] | other[3]}
}

// count returns the number of component IDs in the mask.
func (m bitmask256) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}

// ids appends the component IDs of the mask to dst in ascending order.
func (m bitmask256) ids(dst []ComponentID) []ComponentID {
	for w, word := range m {
		for word != 0 {
			o := bits.TrailingZeros64(word)
			dst = append(dst, ComponentID(w*64+o))
			word &= word - 1
		}
	}
	return dst
}
