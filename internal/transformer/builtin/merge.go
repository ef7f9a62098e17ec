package builtin

import (
	"fmt"
	"strings"

	"retailetl/internal/bitmap"
	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// sampleMissing bounds the missing-key sample logged by CheckMergeCompatibility.
const sampleMissing = 5

// ValidateForMerge fails when either side is empty or lacks key, and warns
// about null keys on either side.
func ValidateForMerge(log *logging.Logger, left, right records.Table, key, leftName, rightName string) error {
	log = logging.OrNop(log)
	if left.Empty() {
		return fmt.Errorf("%s table: %w", leftName, ErrEmptyInput)
	}
	if right.Empty() {
		return fmt.Errorf("%s table: %w", rightName, ErrEmptyInput)
	}
	if !left.HasColumn(key) {
		return fmt.Errorf("%w: %q in %s table", ErrMissingJoinKey, key, leftName)
	}
	if !right.HasColumn(key) {
		return fmt.Errorf("%w: %q in %s table", ErrMissingJoinKey, key, rightName)
	}
	for _, side := range []struct {
		name string
		t    records.Table
	}{{leftName, left}, {rightName, right}} {
		if n := countNulls(side.t, key); n > 0 {
			log.Warn("null join key values", "key", key, "table", side.name, "count", n)
		}
	}
	return nil
}

// CheckMergeCompatibility fails when right holds duplicate key values and
// warns about left keys that right does not contain.
func CheckMergeCompatibility(log *logging.Logger, left, right records.Table, key, rightName string) error {
	log = logging.OrNop(log)
	seen := make(map[string]struct{}, right.Len())
	dups := 0
	for _, v := range right.Values(key) {
		k := records.Key(v)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	if dups > 0 {
		log.Error("duplicate join key values", "key", key, "table", rightName, "count", dups)
		return fmt.Errorf("%s table contains %d duplicate %s values: %w", rightName, dups, key, ErrDuplicateKeys)
	}

	missing := map[string]struct{}{}
	var sample []any
	for _, v := range left.Values(key) {
		if records.IsNull(v) {
			continue
		}
		k := records.Key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		if _, ok := missing[k]; ok {
			continue
		}
		missing[k] = struct{}{}
		if len(sample) < sampleMissing {
			sample = append(sample, v)
		}
	}
	if len(missing) > 0 {
		log.Warn("left key values missing from right", "key", key, "table", rightName, "count", len(missing), "sample", sample)
	}
	return nil
}

// MergeQuality summarises a join. Ratio is output rows per left row in
// percent. LostRecords is set only when an identifier column was given and
// exists on both sides.
type MergeQuality struct {
	InputLeft   int
	InputRight  int
	Output      int
	Ratio       float64
	UniqueLeft  int
	UniqueRight int
	KeysMerged  int
	LostRecords *int
}

// AnalyzeMergeQuality computes MergeQuality for a join of left and right on
// key that produced merged. leftID may be empty.
func AnalyzeMergeQuality(left, right, merged records.Table, key, leftID string) MergeQuality {
	q := MergeQuality{
		InputLeft:   left.Len(),
		InputRight:  right.Len(),
		Output:      merged.Len(),
		UniqueLeft:  countUnique(left, key),
		UniqueRight: countUnique(right, key),
		KeysMerged:  countUnique(merged, key),
	}
	if left.Len() > 0 {
		q.Ratio = float64(merged.Len()) / float64(left.Len()) * 100
	}
	if leftID != "" && left.HasColumn(leftID) && merged.HasColumn(leftID) {
		lost := lostIDs(left.Values(leftID), merged.Values(leftID))
		q.LostRecords = &lost
	}
	return q
}

// lostIDs counts distinct non-null ids in orig that are absent from kept.
// Integer ids use bitmaps; anything else falls back to a key set.
func lostIDs(orig, kept []any) int {
	if a, ok := denseIDs(orig); ok {
		if b, ok := denseIDs(kept); ok {
			return a.AndNot(b)
		}
	}
	have := map[string]struct{}{}
	for _, v := range kept {
		have[records.Key(v)] = struct{}{}
	}
	missing := map[string]struct{}{}
	for _, v := range orig {
		if records.IsNull(v) {
			continue
		}
		k := records.Key(v)
		if _, ok := have[k]; !ok {
			missing[k] = struct{}{}
		}
	}
	return len(missing)
}

func denseIDs(values []any) (*bitmap.Bitmap, bool) {
	ids := make([]int64, 0, len(values))
	var top int64
	for _, v := range values {
		if records.IsNull(v) {
			continue
		}
		id, ok := records.AsInt(v)
		if !ok {
			return nil, false
		}
		top = max(top, id)
		ids = append(ids, id)
	}
	return bitmap.FromValues(ids, top)
}

// InnerJoinManyToOne joins left to right on key, keeping left row order. Each
// left row matches at most one right row; duplicate right keys are an error.
// Null keys never match. Non-key columns present on both sides are suffixed
// with _x (left) and _y (right).
func InnerJoinManyToOne(left, right records.Table, key string) (records.Table, error) {
	if !left.HasColumn(key) || !right.HasColumn(key) {
		return records.Table{}, fmt.Errorf("%w: %q", ErrMissingJoinKey, key)
	}
	index := make(map[string]records.Record, right.Len())
	for _, r := range right.Rows() {
		v := r[key]
		if records.IsNull(v) {
			continue
		}
		k := records.Key(v)
		if _, dup := index[k]; dup {
			return records.Table{}, fmt.Errorf("%w: %s=%s", ErrDuplicateKeys, key, records.Format(v))
		}
		index[k] = r
	}

	leftCols, rightCols := left.Columns(), right.Columns()
	overlap := map[string]struct{}{}
	for _, c := range rightCols {
		if c != key && left.HasColumn(c) {
			overlap[c] = struct{}{}
		}
	}
	rename := func(c, suffix string) string {
		if _, ok := overlap[c]; ok {
			return c + suffix
		}
		return c
	}

	cols := make([]string, 0, len(leftCols)+len(rightCols)-1)
	for _, c := range leftCols {
		cols = append(cols, rename(c, "_x"))
	}
	for _, c := range rightCols {
		if c != key {
			cols = append(cols, rename(c, "_y"))
		}
	}

	var rows []records.Record
	for _, l := range left.Rows() {
		v := l[key]
		if records.IsNull(v) {
			continue
		}
		r, ok := index[records.Key(v)]
		if !ok {
			continue
		}
		row := make(records.Record, len(cols))
		for _, c := range leftCols {
			row[rename(c, "_x")] = l[c]
		}
		for _, c := range rightCols {
			if c != key {
				row[rename(c, "_y")] = r[c]
			}
		}
		rows = append(rows, row)
	}
	return records.New(cols, rows), nil
}

// Describe logs the shape, a short preview and the value types per column.
func Describe(log *logging.Logger, t records.Table, operation string, previewRows int) {
	log = logging.OrNop(log)
	cols := t.Columns()
	log.Info(operation+" shape", "rows", t.Len(), "columns", len(cols))
	if previewRows > 0 && !t.Empty() {
		n := min(previewRows, t.Len())
		preview := make([]string, n)
		for i := 0; i < n; i++ {
			parts := make([]string, len(cols))
			for j, c := range cols {
				parts[j] = c + "=" + records.Format(t.Value(i, c))
			}
			preview[i] = strings.Join(parts, " ")
		}
		log.Info(operation+" preview", "rows", preview)
	}
	types := make([]string, len(cols))
	for i, c := range cols {
		types[i] = c + ":" + columnType(t, c)
	}
	log.Info(operation+" data types", "dtypes", types)
}

// columnType reports the type of the first non-null value, or "null".
func columnType(t records.Table, col string) string {
	for i := 0; i < t.Len(); i++ {
		if v := t.Value(i, col); !records.IsNull(v) {
			return records.TypeName(v)
		}
	}
	return "null"
}

func countNulls(t records.Table, col string) int {
	n := 0
	for _, v := range t.Values(col) {
		if records.IsNull(v) {
			n++
		}
	}
	return n
}

func countUnique(t records.Table, col string) int {
	seen := map[string]struct{}{}
	for _, v := range t.Values(col) {
		if !records.IsNull(v) {
			seen[records.Key(v)] = struct{}{}
		}
	}
	return len(seen)
}
