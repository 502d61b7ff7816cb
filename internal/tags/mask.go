package tags

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Capacity is the maximum number of simultaneously live tags: one bit each.
const Capacity = 32

// Mask is a set of tag bits. A Tag's own mask has exactly one bit set; the
// masks carried by windows and desktops are arbitrary combinations.
type Mask uint32

// Bit returns the single-bit mask for a tag slot.
func Bit(slot int) (Mask, error) {
	if slot < 0 || slot >= Capacity {
		return 0, fmt.Errorf("tag slot %d out of range [0,%d)", slot, Capacity)
	}
	return Mask(1) << uint(slot), nil
}

// Intersects reports whether m and o share at least one bit. A window is
// visible on a desktop iff its mask intersects the desktop's mask.
func (m Mask) Intersects(o Mask) bool { return m&o != 0 }

// Has reports whether every bit of o is set in m.
func (m Mask) Has(o Mask) bool { return m&o == o }

// With returns m with the bits of o added.
func (m Mask) With(o Mask) Mask { return m | o }

// Without returns m with the bits of o cleared.
func (m Mask) Without(o Mask) Mask { return m &^ o }

// Toggle returns m with the bits of o flipped.
func (m Mask) Toggle(o Mask) Mask { return m ^ o }

// IsEmpty reports whether no bit is set.
func (m Mask) IsEmpty() bool { return m == 0 }

// IsSingle reports whether exactly one bit is set.
func (m Mask) IsSingle() bool { return bits.OnesCount32(uint32(m)) == 1 }

// Count returns the number of bits set.
func (m Mask) Count() int { return bits.OnesCount32(uint32(m)) }

// ForEach calls fn with the slot number of each set bit, lowest first.
func (m Mask) ForEach(fn func(slot int)) {
	x := uint32(m)
	for x != 0 {
		i := bits.TrailingZeros32(x)
		fn(i)
		x &^= 1 << uint(i)
	}
}

// String prints the mask as an unsigned decimal, the form used by list output.
func (m Mask) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

// ParseMask accepts decimal, 0x hex and 0b binary notation.
func ParseMask(s string) (Mask, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty mask")
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mask %q: %w", s, err)
	}
	return Mask(v), nil
}
