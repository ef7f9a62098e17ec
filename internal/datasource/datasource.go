// Package datasource extracts raw tables from the configured source.
//
// Each source kind lives in its own subpackage and registers a Factory from
// init; import datasource/all to link every kind.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"retailetl/internal/config"
	"retailetl/internal/logging"
	"retailetl/internal/parser"
	"retailetl/pkg/records"
)

// RawTables maps a dataset name (the file stem, e.g. "sales_data") to its
// parsed, untyped table.
type RawTables map[string]records.Table

// Names returns the dataset names in sorted order.
func (r RawTables) Names() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Extractor reads every supported file of a source into RawTables.
type Extractor interface {
	Extract(ctx context.Context) (RawTables, error)
}

// Source opens a single input stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Factory builds an Extractor for a pipeline.
type Factory func(p config.Pipeline, log *logging.Logger) (Extractor, error)

// ErrUnknownSource is returned by New for a source kind without a factory.
var ErrUnknownSource = errors.New("datasource: unknown source")

var (
	mu        sync.RWMutex
	factories = map[config.SourceKind]Factory{}
)

// Register makes a source kind available to New. It panics on duplicates.
func Register(kind config.SourceKind, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("datasource: Register called twice for %q", kind))
	}
	factories[kind] = f
}

// New returns the Extractor for p.Source.
func New(p config.Pipeline, log *logging.Logger) (Extractor, error) {
	mu.RLock()
	f, ok := factories[p.Source]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, p.Source)
	}
	return f(p, log)
}

// SplitName returns the dataset key and lower-cased extension of a file
// name or object key. ok is false when the extension has no parser.
func SplitName(name string) (key, ext string, ok bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return base, "", false
	}
	key, ext = base[:i], strings.ToLower(base[i+1:])
	for _, f := range parser.Formats {
		if ext == f {
			return key, ext, true
		}
	}
	return key, ext, false
}

// Read parses src with the parser for ext.
func Read(ctx context.Context, p config.Pipeline, log *logging.Logger, src Source, ext string) (records.Table, error) {
	ps, err := parser.ForFormat(p, ext, log)
	if err != nil {
		return records.Table{}, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return records.Table{}, err
	}
	defer rc.Close()
	return ps.Parse(rc)
}
