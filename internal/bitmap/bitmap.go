// Package bitmap is a bitset over non-negative integer IDs, used to count
// identifiers that a join dropped without building string-keyed maps.
package bitmap

import "math/bits"

// MaxDenseID bounds the IDs FromValues accepts: 1<<24 bits is 2 MiB of words.
const MaxDenseID = 1 << 24

// Bitmap is a bitset backed by uint64 words. Each bit is one ID.
type Bitmap struct {
	data []uint64
}

// New allocates a bitmap for IDs in [0, maxID]. A negative maxID yields an
// empty set that ignores every Add.
func New(maxID int) *Bitmap {
	if maxID < 0 {
		return &Bitmap{}
	}
	return &Bitmap{data: make([]uint64, maxID/64+1)}
}

// Add sets id. Negative or out-of-range ids are ignored.
func (b *Bitmap) Add(id int) {
	if id < 0 || id/64 >= len(b.data) {
		return
	}
	b.data[id/64] |= 1 << uint(id%64)
}

// Has reports whether id is set.
func (b *Bitmap) Has(id int) bool {
	if id < 0 || id/64 >= len(b.data) {
		return false
	}
	return b.data[id/64]&(1<<uint(id%64)) != 0
}

// Len returns the number of set IDs.
func (b *Bitmap) Len() int {
	n := 0
	for _, w := range b.data {
		n += bits.OnesCount64(w)
	}
	return n
}

// AndNot returns the number of IDs set in b but not in other.
func (b *Bitmap) AndNot(other *Bitmap) int {
	n := 0
	for i, w := range b.data {
		if i < len(other.data) {
			w &^= other.data[i]
		}
		n += bits.OnesCount64(w)
	}
	return n
}

// FromValues builds a bitmap from integer values. ok is false when any value
// is not a non-negative integer no larger than MaxDenseID; nulls are skipped.
func FromValues(values []int64, maxID int64) (bm *Bitmap, ok bool) {
	if maxID > MaxDenseID {
		return nil, false
	}
	bm = New(int(maxID))
	for _, v := range values {
		if v < 0 || v > maxID {
			return nil, false
		}
		bm.Add(int(v))
	}
	return bm, true
}
