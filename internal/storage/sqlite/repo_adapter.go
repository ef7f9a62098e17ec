package sqlite

import (
	"context"

	"retailetl/internal/storage"
	sqliteddl "retailetl/internal/storage/sqlite/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// wrappedRepo adds Close, backed by the cleanup function from NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

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
		Quote:       sqliteddl.QuoteIdent,
		MapType:     sqliteddl.MapType,
		CreateTable: sqliteddl.BuildCreateTableSQL,
		Qualify:     func(t storage.Target) string { return t.Table },
		Value:       toArg,
	})
}
