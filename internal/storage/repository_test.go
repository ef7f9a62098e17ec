package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// fakeRepo is an in-memory Repository that records every call.
type fakeRepo struct {
	mu      sync.Mutex
	closed  bool
	execs   []string
	copied  map[string][][]any
	copyErr map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{copied: map[string][][]any{}, copyErr: map[string]error{}}
}

func (f *fakeRepo) CopyFrom(ctx context.Context, fqn string, columns []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.copyErr[fqn]; err != nil {
		return 0, err
	}
	f.copied[fqn] = append(f.copied[fqn], rows...)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Close() { f.closed = true }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return newFakeRepo(), nil
	})

	repo, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}

	// Ensure ListKinds contains the registered kind.
	kinds := ListKinds()
	found := false
	for _, k := range kinds {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, kinds)
	}
}

// TestNew_Unsupported verifies that unsupported kinds return an error naming
// the kinds that are registered.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	Register("listed", func(ctx context.Context, cfg Config) (Repository, error) { return newFakeRepo(), nil })
	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	got := err.Error()
	if !strings.HasPrefix(got, "unsupported storage.kind=does-not-exist (registered: ") || !strings.Contains(got, "listed") {
		t.Fatalf("error = %q, want registered kinds listed", got)
	}
}

// TestRegister_Override verifies that re-registering a kind overrides the
// previous factory (useful for tests and dynamic wiring).
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return newFakeRepo(), nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return newFakeRepo(), nil
	})

	_, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 { // only the second factory should have been used
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

// TestListKinds_Snapshot performs a shallow sanity check that ListKinds returns
// a copy (mutations by caller do not affect internal registry).
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	k := "snap"
	Register(k, func(ctx context.Context, cfg Config) (Repository, error) { return newFakeRepo(), nil })

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	// Mutate the returned slice; registry should be unaffected.
	a[0] = "mutated"

	b := ListKinds()
	if reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

// TestRegister_AllowsErrors shows factories can return errors that bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	kind := "errkind"
	want := errors.New("boom")

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: kind})
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}

func TestTargetString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Target
		want string
	}{
		{Target{Database: "RETAIL", Schema: "RAW", Table: "SALES"}, "RETAIL.RAW.SALES"},
		{Target{Schema: "RAW", Table: "SALES"}, "RAW.SALES"},
		{Target{Database: " ", Table: "SALES"}, "SALES"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Fatalf("%+v.String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDialectFQN(t *testing.T) {
	t.Parallel()

	target := Target{Database: "RETAIL", Schema: "RAW", Table: "SALES"}
	if got := (Dialect{}).FQN(target); got != "RAW.SALES" {
		t.Fatalf("default FQN = %q, want RAW.SALES", got)
	}
	only := Dialect{Qualify: func(t Target) string { return t.Table }}
	if got := only.FQN(target); got != "SALES" {
		t.Fatalf("custom FQN = %q, want SALES", got)
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	RegisterDialect(Dialect{Kind: "fake-dialect"})
	if _, err := DialectFor("fake-dialect"); err != nil {
		t.Fatalf("DialectFor: %v", err)
	}
	if _, err := DialectFor("nope"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}
