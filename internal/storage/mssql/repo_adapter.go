package mssql

import (
	"context"

	"retailetl/internal/storage"
	msddl "retailetl/internal/storage/mssql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// Kind is the storage kind this package registers.
const Kind = "mssql"

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	// Targets keep their three-part database.schema.table name.
	storage.RegisterDialect(storage.Dialect{
		Kind:        Kind,
		Quote:       msddl.QuoteIdent,
		MapType:     msddl.MapType,
		CreateTable: msddl.BuildCreateTableSQL,
		Qualify:     storage.Target.String,
	})
}

// wrappedRepo adapts *mssql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
