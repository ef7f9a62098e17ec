// Package json turns JSON input into records.Table values.
//
// Two layouts are accepted:
//
//   - a top-level array of objects (records orientation):
//     [{"id":1,"name":"a"},{"id":2,"name":"b"}]
//   - newline-delimited objects:
//     {"id":1,"name":"a"}
//     {"id":2,"name":"b"}
//
// Object keys become columns in first-seen order. Integral numbers decode as
// int64 and other numbers as float64; nested objects and arrays are kept as
// their JSON text.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"retailetl/internal/config"
	"retailetl/pkg/records"
)

// Options controls which top-level layouts are accepted.
type Options struct {
	// AllowArrays accepts a top-level array of objects.
	AllowArrays bool
}

// FromConfigOptions builds Options from the "json" parser block. Arrays are
// allowed unless allow_arrays is explicitly false.
func FromConfigOptions(o config.Options) Options {
	return Options{
		AllowArrays: o.Bool("allow_arrays", true),
	}
}

// Decoder reads one object at a time from a JSON stream.
type Decoder struct {
	dec     *json.Decoder
	opt     Options
	inArray bool
	index   int

	cols []string
	seen map[string]struct{}
}

// NewDecoder constructs a Decoder from an io.Reader and JSON Options.
func NewDecoder(r io.Reader, opt Options) *Decoder {
	d := json.NewDecoder(r)
	// UseNumber so integers survive without float rounding.
	d.UseNumber()
	return &Decoder{dec: d, opt: opt, seen: map[string]struct{}{}}
}

// Next returns the next object as a record. Top-level primitives between
// objects are skipped. io.EOF is returned when the stream is exhausted.
func (d *Decoder) Next() (records.Record, error) {
	for {
		if d.inArray {
			if d.dec.More() {
				tok, err := d.dec.Token()
				if err != nil {
					return nil, fmt.Errorf("json parser: decode: %w", err)
				}
				if tok != json.Delim('{') {
					return nil, fmt.Errorf("json parser: element %d in array is not an object", d.index)
				}
				d.index++
				return d.object()
			}
			if _, err := d.dec.Token(); err != nil {
				return nil, fmt.Errorf("json parser: decode: %w", err)
			}
			d.inArray = false
			continue
		}

		tok, err := d.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("json parser: decode: %w", err)
		}
		switch tok {
		case json.Delim('['):
			if !d.opt.AllowArrays {
				return nil, fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
			}
			d.inArray = true
		case json.Delim('{'):
			return d.object()
		}
	}
}

// Columns returns the keys seen so far in first-seen order.
func (d *Decoder) Columns() []string { return append([]string(nil), d.cols...) }

// object reads the members of an object whose '{' was already consumed.
func (d *Decoder) object() (records.Record, error) {
	rec := records.Record{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json parser: decode key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("json parser: unexpected token %v", tok)
		}
		var raw any
		if err := d.dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("json parser: decode %q: %w", key, err)
		}
		rec[key] = value(raw)
		if _, ok := d.seen[key]; !ok {
			d.seen[key] = struct{}{}
			d.cols = append(d.cols, key)
		}
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, fmt.Errorf("json parser: decode: %w", err)
	}
	return rec, nil
}

func value(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return raw
}

// DecodeAll reads every object from r into a table. Rows missing a key hold
// null for that column.
func DecodeAll(r io.Reader, opt Options) (records.Table, error) {
	d := NewDecoder(r, opt)
	var rows []records.Record
	for {
		rec, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records.Table{}, err
		}
		rows = append(rows, rec)
	}
	return records.New(d.Columns(), rows), nil
}
