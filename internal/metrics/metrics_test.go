package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend records calls in memory.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushes    int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStage_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStage("retail_etl", "transform_sales", nil, 2*time.Second)
	RecordStage("retail_etl", "merge_sales_products", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2, 2", len(fb.counters), len(fb.histograms))
	}
	c0 := fb.counters[0]
	if c0.name != StageTotal || c0.value != 1 {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c0.labels["stage"] != "transform_sales" || c0.labels["status"] != "success" || c0.labels["job"] != "retail_etl" {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if got := fb.counters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1] status = %q, want failure", got)
	}
	h1 := fb.histograms[1]
	if h1.name != StageDuration || h1.value < 1.499 || h1.value > 1.501 {
		t.Fatalf("hist[1] = %#v, want ~1.5s", h1)
	}
}

func TestRecordRowsAndBatches(t *testing.T) {
	fb := install(t)

	RecordRows("retail_etl", "loaded", 3)
	RecordRows("retail_etl", "loaded", 0)
	RecordRows("retail_etl", "violations", 5)
	RecordBatches("retail_etl", 2)
	RecordBatches("retail_etl", -1)

	if len(fb.counters) != 3 {
		t.Fatalf("counter calls = %d, want 3", len(fb.counters))
	}
	if c := fb.counters[1]; c.name != RowsTotal || c.value != 5 || c.labels["kind"] != "violations" {
		t.Fatalf("counter[1] = %#v", c)
	}
	if c := fb.counters[2]; c.name != BatchesTotal || c.value != 2 {
		t.Fatalf("counter[2] = %#v", c)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fb.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", fb.flushes)
	}
	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) changed the backend")
	}
}
