package builtin

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/zeebo/xxh3"

	"retailetl/pkg/records"
)

// DropDuplicates removes rows that equal an earlier row on every column,
// keeping the first occurrence. Rows are bucketed by an xxh3 hash of their
// values and compared exactly within a bucket.
func DropDuplicates(t records.Table) records.Table {
	cols := t.Columns()
	buckets := make(map[uint64][]records.Record, t.Len())
	return t.Filter(func(r records.Record) bool {
		h := hashRow(cols, r)
		for _, prev := range buckets[h] {
			if sameRow(cols, prev, r) {
				return false
			}
		}
		buckets[h] = append(buckets[h], r)
		return true
	})
}

func hashRow(cols []string, r records.Record) uint64 {
	buf := make([]byte, 0, 16*len(cols))
	for _, c := range cols {
		buf = appendValue(buf, r[c])
		buf = append(buf, 0x1f)
	}
	return xxh3.Hash(buf)
}

func appendValue(buf []byte, v any) []byte {
	switch x := v.(type) {
	case time.Time:
		return binary.LittleEndian.AppendUint64(append(buf, 't'), uint64(x.UnixNano()))
	case float64:
		if math.IsNaN(x) {
			return append(buf, 0)
		}
	}
	return append(buf, records.Key(v)...)
}

func sameRow(cols []string, a, b records.Record) bool {
	for _, c := range cols {
		if records.Key(a[c]) != records.Key(b[c]) {
			return false
		}
	}
	return true
}
