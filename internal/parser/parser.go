// Package parser selects a file-format parser by extension.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"retailetl/internal/config"
	"retailetl/internal/logging"
	pcsv "retailetl/internal/parser/csv"
	pjson "retailetl/internal/parser/json"
	"retailetl/pkg/records"
)

// Parser turns an input stream into a raw table.
type Parser interface {
	Parse(r io.Reader) (records.Table, error)
}

// ErrUnsupportedFormat is returned for extensions without a parser.
var ErrUnsupportedFormat = errors.New("parser: unsupported format")

// Formats lists the supported file extensions, without the dot.
var Formats = []string{"csv", "json"}

// Func adapts a function to Parser.
type Func func(r io.Reader) (records.Table, error)

func (f Func) Parse(r io.Reader) (records.Table, error) { return f(r) }

// ForFormat returns the parser for format ("csv" or "json", any case),
// configured from the pipeline's parser options.
func ForFormat(p config.Pipeline, format string, log *logging.Logger) (Parser, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case "csv":
		cp := pcsv.NewParser(pcsv.FromConfigOptions(p.Parser("csv")), log)
		return Func(func(r io.Reader) (records.Table, error) {
			t, _, err := cp.Parse(r)
			return t, err
		}), nil
	case "json":
		opt := pjson.FromConfigOptions(p.Parser("json"))
		return Func(func(r io.Reader) (records.Table, error) {
			return pjson.DecodeAll(r, opt)
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
