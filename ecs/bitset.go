package ecs

import (
	"math/bits"
	"strconv"
	"strings"
)

const wordBits = 32

// BitSet is a growable bit vector backed by 32-bit words.
// Bit i is set iff words[i>>5] & (1 << (i & 31)) != 0.
// The backing slice only grows; Reset clears bits but keeps capacity.
type BitSet struct {
	words []uint32
}

// NewBitSet returns a BitSet with the given bits set.
func NewBitSet(indices ...uint32) *BitSet {
	b := &BitSet{}
	for _, i := range indices {
		b.Add(i)
	}
	return b
}

// grow doubles the word count until word index w fits.
func (b *BitSet) grow(w int) {
	if w < len(b.words) {
		return
	}
	n := len(b.words)
	if n == 0 {
		n = 1
	}
	for n <= w {
		n *= 2
	}
	words := make([]uint32, n)
	copy(words, b.words)
	b.words = words
}

// Add sets bit i.
func (b *BitSet) Add(i uint32) {
	w := int(i >> 5)
	b.grow(w)
	b.words[w] |= 1 << (i & (wordBits - 1))
}

// Remove clears bit i. Indices beyond capacity are already clear.
func (b *BitSet) Remove(i uint32) {
	w := int(i >> 5)
	if w >= len(b.words) {
		return
	}
	b.words[w] &^= 1 << (i & (wordBits - 1))
}

// Has reports whether bit i is set.
func (b *BitSet) Has(i uint32) bool {
	w := int(i >> 5)
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<(i&(wordBits-1))) != 0
}

// Reset clears every bit.
func (b *BitSet) Reset() {
	clear(b.words)
}

// Copy makes b a snapshot of other. Later changes to either side are not shared.
func (b *BitSet) Copy(other *BitSet) {
	if len(b.words) < len(other.words) {
		b.words = make([]uint32, len(other.words))
	}
	n := copy(b.words, other.words)
	clear(b.words[n:])
}

// Clone returns an independent copy of b.
func (b *BitSet) Clone() *BitSet {
	words := make([]uint32, len(b.words))
	copy(words, b.words)
	return &BitSet{words: words}
}

// word returns word w, treating anything beyond the backing slice as zero.
func (b *BitSet) word(w int) uint32 {
	if w < len(b.words) {
		return b.words[w]
	}
	return 0
}

// ContainsAll reports whether every bit set in other is also set in b.
// Both operands are compared over the longer of the two lengths.
func (b *BitSet) ContainsAll(other *BitSet) bool {
	n := max(len(b.words), len(other.words))
	for w := 0; w < n; w++ {
		o := other.word(w)
		if b.word(w)&o != o {
			return false
		}
	}
	return true
}

// ContainsAny reports whether b and other share at least one set bit.
func (b *BitSet) ContainsAny(other *BitSet) bool {
	n := min(len(b.words), len(other.words))
	for w := 0; w < n; w++ {
		if b.words[w]&other.words[w] != 0 {
			return true
		}
	}
	return false
}

// Union sets every bit that is set in other.
func (b *BitSet) Union(other *BitSet) {
	if len(other.words) > 0 {
		b.grow(len(other.words) - 1)
	}
	for w, o := range other.words {
		b.words[w] |= o
	}
}

// Equal reports whether b and other have the same bits set, regardless of capacity.
func (b *BitSet) Equal(other *BitSet) bool {
	n := max(len(b.words), len(other.words))
	for w := 0; w < n; w++ {
		if b.word(w) != other.word(w) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no bit is set.
func (b *BitSet) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of set bits.
func (b *BitSet) Len() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount32(w)
	}
	return n
}

// Each calls fn for every set bit in ascending order.
func (b *BitSet) Each(fn func(i uint32)) {
	for w, word := range b.words {
		for word != 0 {
			pos := bits.TrailingZeros32(word)
			fn(uint32(w*wordBits + pos))
			word &^= 1 << pos
		}
	}
}

// key returns a string usable as a map key for structural comparison.
// Trailing zero words are ignored so equal sets of different capacity share a key.
func (b *BitSet) key() string {
	n := len(b.words)
	for n > 0 && b.words[n-1] == 0 {
		n--
	}
	var sb strings.Builder
	for _, w := range b.words[:n] {
		sb.WriteString(strconv.FormatUint(uint64(w), 16))
		sb.WriteByte('.')
	}
	return sb.String()
}

func (b *BitSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	b.Each(func(i uint32) {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(strconv.FormatUint(uint64(i), 10))
	})
	sb.WriteByte('}')
	return sb.String()
}
