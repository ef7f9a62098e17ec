package postgres

import (
	"context"

	"retailetl/internal/storage"
	pgddl "retailetl/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// Kind is the storage kind this package registers.
const Kind = "postgres"

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDialect(storage.Dialect{
		Kind:        Kind,
		Quote:       pgddl.QuoteIdent,
		MapType:     pgddl.MapType,
		CreateTable: pgddl.BuildCreateTableSQL,
	})
}

// wrappedRepo adds Close, backed by the function NewRepository returned.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() { w.closeFn() }
