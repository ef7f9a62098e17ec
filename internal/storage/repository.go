// Package storage loads pipeline outputs into a SQL warehouse.
//
// Backends (postgres, sqlite, mssql) register a Factory and a Dialect from
// their init functions; import internal/storage/all to enable all of them.
// Callers stay backend-agnostic and work through Repository and Loader.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"retailetl/internal/ddl"
)

// Repository is the minimal write surface the loader needs from a backend.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns) into the table named
	// by the dotted fqn and returns the number of rows written.
	CopyFrom(ctx context.Context, fqn string, columns []string, rows [][]any) (int64, error)
	// Exec runs one SQL statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

// ErrEmptyTable is returned by Loader.Replace for a table with no rows.
var ErrEmptyTable = errors.New("storage: refusing to load empty table")

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
	dialects  = map[string]Dialect{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %s)", cfg.Kind, strings.Join(ListKinds(), ", "))
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Target is a warehouse coordinate. Backends without databases or schemas
// ignore the parts they do not support. PrimaryKey names the columns the
// created table is keyed on; empty means no key.
type Target struct {
	Database   string
	Schema     string
	Table      string
	PrimaryKey []string
}

func (t Target) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Database, t.Schema, t.Table} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Dialect carries the SQL flavour of a backend.
type Dialect struct {
	Kind string
	// Quote quotes one identifier segment.
	Quote ddl.QuoteFunc
	// MapType turns a logical column kind (ddl.KindInt, ...) into a SQL type.
	MapType func(kind string) string
	// CreateTable renders the CREATE statement for a table definition.
	CreateTable func(ddl.TableDef) (string, error)
	// Qualify returns the dotted name used for a target. Nil means
	// schema.table.
	Qualify func(Target) string
	// Value converts a record value into a driver argument. Nil passes
	// values through.
	Value func(any) any
}

// FQN returns the dotted table name for t under d.
func (d Dialect) FQN(t Target) string {
	if d.Qualify != nil {
		return d.Qualify(t)
	}
	return Target{Schema: t.Schema, Table: t.Table}.String()
}

// RegisterDialect installs (or replaces) the dialect for d.Kind.
func RegisterDialect(d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[d.Kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	mu.RLock()
	d, ok := dialects[kind]
	mu.RUnlock()
	if !ok {
		return Dialect{}, fmt.Errorf("no dialect registered for storage.kind=%q (registered: %s)", kind, strings.Join(ListKinds(), ", "))
	}
	return d, nil
}
