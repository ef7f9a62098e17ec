// Package csv parses delimited text with a header row into records.Table
// values. Cells stay strings; empty cells become null so later coercion sees
// them as missing.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"retailetl/internal/config"
	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; zero
// values give comma-separated input with untrimmed cells.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to column names. Unmapped headers
	// are kept as they are, trimmed.
	HeaderMap map[string]string
}

// FromConfigOptions builds Options from the "csv" parser block.
func FromConfigOptions(o config.Options) Options {
	return Options{
		Comma:     o.Rune("comma", ','),
		TrimSpace: o.Bool("trim_space", false),
		HeaderMap: o.StringMap("header_map"),
	}
}

// Parser parses CSV input according to Options. It holds no per-input state
// and is safe to reuse.
type Parser struct {
	opt Options
	log *logging.Logger
}

// NewParser constructs a Parser. log receives skipped-row warnings and may
// be nil.
func NewParser(opt Options, log *logging.Logger) *Parser {
	return &Parser{opt: opt, log: logging.OrNop(log)}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit bounds per-row warnings for badly shaped files.
const skipLogLimit = 20

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Parse reads the header and every row of r. Rows shorter than the header
// are padded with nulls; rows with extra fields are skipped and counted in
// the returned skip total.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return records.Table{}, 0, ErrNoHeader
	}
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := p.normalizeHeaders(h)

	var (
		rows    []records.Record
		skipped int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records.Table{}, skipped, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) > len(headers) {
			if skipped < skipLogLimit {
				p.log.Warn("skipping csv row with extra fields",
					"line", line, "expected", len(headers), "got", len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(headers))
		for i, col := range headers {
			if i >= len(row) {
				rec[col] = nil
				continue
			}
			val := row[i]
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[col] = emptyToNil(val)
		}
		rows = append(rows, rec)
	}
	if skipped > 0 {
		p.log.Warn("csv rows skipped", "skipped", skipped)
	}
	return records.New(headers, rows), skipped, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders trims cells, strips a leading BOM, applies HeaderMap and
// makes duplicate names unique by appending ".1", ".2", and so on.
func (p *Parser) normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimSpace(strings.TrimPrefix(c, utf8BOM))
		}
		if m, ok := p.opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = "col_" + strconv.Itoa(i)
		}
		if n, dup := seen[c]; dup {
			seen[c] = n + 1
			c = c + "." + strconv.Itoa(n+1)
		} else {
			seen[c] = 0
		}
		res[i] = c
	}
	return res
}
