package storage

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"retailetl/internal/ddl"
	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// TestLoadBatches_Basic verifies rows are grouped into batches and copyFn is
// called with the expected counts. It also checks the total equals the sum of
// all successful copyFn returns.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	columns := []string{"c1", "c2"}

	in := make(chan []any, 8)
	for i := 0; i < 7; i++ {
		in <- []any{i, "x"}
	}
	close(in)

	var calls int32
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		atomic.AddInt32(&calls, 1)
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, nil, columns, in, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("copyFn calls %d, want 3 (3+3+1)", got)
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error is propagated
// and processing stops after that batch.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	columns := []string{"c"}

	in := make(chan []any, 5)
	for i := 0; i < 5; i++ {
		in <- []any{i}
	}
	close(in)

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return int64(len(rows)), wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, nil, columns, in, 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	// Total must include rows from successful batches (at least the first 2).
	if total < 4 {
		t.Fatalf("total rows %d, want >= 4", total)
	}
}

// TestLoadBatches_ContextCancel checks the loader exits on context cancellation.
func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	columns := []string{"c"}
	in := make(chan []any, 1)
	in <- []any{1}

	// copyFn sleeps to simulate slow I/O; cancel triggers early exit.
	copyFn := func(ctx context.Context, _ []string, rows [][]any) (int64, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(2 * time.Second):
			return int64(len(rows)), nil
		}
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, nil, columns, in, 2, copyFn)
		errCh <- err
	}()

	cancel() // cancel promptly
	close(in)

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected cancellation error, got nil")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches did not return after context cancel")
	}
}

func testDialect() Dialect {
	return Dialect{
		Kind:    "test",
		Quote:   func(s string) string { return `"` + s + `"` },
		MapType: func(kind string) string { return strings.ToUpper(kind) },
		CreateTable: func(def ddl.TableDef) (string, error) {
			return ddl.Render(def, func(s string) string { return `"` + s + `"` })
		},
	}
}

func salesTable() records.Table {
	return records.New([]string{"sales_id", "region"}, []records.Record{
		{"sales_id": int64(1), "region": "north"},
		{"sales_id": int64(2), "region": nil},
		{"sales_id": int64(3), "region": "south"},
	})
}

/*
TestLoaderReplace drops and recreates the target before copying every row,
in column order, across several batches.
*/
func TestLoaderReplace(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	l := &Loader{Repo: repo, Dialect: testDialect(), BatchSize: 2, Job: "test"}

	n, err := l.Replace(context.Background(), Target{Database: "DB", Schema: "RAW", Table: "SALES"}, salesTable())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 3 {
		t.Fatalf("rows = %d, want 3", n)
	}
	if len(repo.execs) != 2 {
		t.Fatalf("execs = %v, want drop + create", repo.execs)
	}
	if want := `DROP TABLE IF EXISTS "RAW"."SALES";`; repo.execs[0] != want {
		t.Fatalf("drop = %q, want %q", repo.execs[0], want)
	}
	wantCreate := "CREATE TABLE \"RAW\".\"SALES\" (\n  \"sales_id\" INT NOT NULL,\n  \"region\" STRING\n);"
	if repo.execs[1] != wantCreate {
		t.Fatalf("create =\n%s\nwant:\n%s", repo.execs[1], wantCreate)
	}
	rows := repo.copied["RAW.SALES"]
	if len(rows) != 3 || rows[1][0] != int64(2) || rows[1][1] != nil {
		t.Fatalf("copied rows = %v", rows)
	}
}

/*
TestLoaderReplace_PrimaryKey keys the created table on the target's key
columns, and refuses a key column that holds nulls before touching the
warehouse.
*/
func TestLoaderReplace_PrimaryKey(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	l := &Loader{Repo: repo, Dialect: testDialect()}
	target := Target{Schema: "ANALYTICS", Table: "BY_ID", PrimaryKey: []string{"sales_id"}}
	if _, err := l.Replace(context.Background(), target, salesTable()); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	want := "CREATE TABLE \"ANALYTICS\".\"BY_ID\" (\n  \"sales_id\" INT NOT NULL,\n  \"region\" STRING,\n  PRIMARY KEY (\"sales_id\")\n);"
	if repo.execs[1] != want {
		t.Fatalf("create =\n%s\nwant:\n%s", repo.execs[1], want)
	}

	bad := &Loader{Repo: newFakeRepo(), Dialect: testDialect()}
	target.PrimaryKey = []string{"region"}
	if _, err := bad.Replace(context.Background(), target, salesTable()); err == nil {
		t.Fatalf("nullable key column accepted")
	}
	if got := bad.Repo.(*fakeRepo).execs; len(got) != 0 {
		t.Fatalf("execs = %v, want none", got)
	}
}

func TestLoaderReplace_EmptyTable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	l := &Loader{Repo: repo, Dialect: testDialect()}
	_, err := l.Replace(context.Background(), Target{Table: "T"}, records.New([]string{"a"}, nil))
	if !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("err = %v, want ErrEmptyTable", err)
	}
	if len(repo.execs) != 0 {
		t.Fatalf("empty table must not touch the warehouse: %v", repo.execs)
	}
}

func TestLoaderReplace_ValueConversion(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	d := testDialect()
	d.Value = func(v any) any {
		if b, ok := v.(bool); ok && b {
			return int64(1)
		}
		return v
	}
	l := &Loader{Repo: repo, Dialect: d}
	tbl := records.New([]string{"in_stock"}, []records.Record{{"in_stock": true}})
	if _, err := l.Replace(context.Background(), Target{Table: "P"}, tbl); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := repo.copied["P"][0][0]; got != int64(1) {
		t.Fatalf("converted value = %v, want 1", got)
	}
}

/*
TestLoaderLoadAll checks that one failing target does not stop the others and
that every failure is reported and logged.
*/
func TestLoaderLoadAll(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	repo := newFakeRepo()
	boom := errors.New("boom")
	repo.copyErr["RAW.BAD"] = boom

	l := &Loader{Repo: repo, Dialect: testDialect(), Workers: 2, Log: logging.NewWithCore(core)}
	targets := map[string]Target{
		"good": {Schema: "RAW", Table: "GOOD"},
		"bad":  {Schema: "RAW", Table: "BAD"},
	}
	tables := map[string]records.Table{
		"good":     salesTable(),
		"bad":      salesTable(),
		"unmapped": salesTable(),
	}

	err := l.LoadAll(context.Background(), targets, tables)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "load unmapped: no target configured") {
		t.Fatalf("missing unmapped error: %v", err)
	}
	if len(repo.copied["RAW.GOOD"]) != 3 {
		t.Fatalf("good target rows = %d, want 3", len(repo.copied["RAW.GOOD"]))
	}
	if logs.FilterMessage("loader: copy failed").Len() != 1 {
		t.Fatalf("expected one copy failure log, got %v", logs.All())
	}
}
