package watcher

import (
	"testing"
	"time"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *Debouncer, timeout time.Duration) []Event {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debouncer batch")
		return nil
	}
}

func Test_Debouncer_SingleEvent(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("main.go", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if batch[0].Path != "main.go" {
		t.Errorf("expected path 'main.go', got '%s'", batch[0].Path)
	}
	if batch[0].Op != OpWrite {
		t.Errorf("expected OpWrite, got %d", batch[0].Op)
	}
}

func Test_Debouncer_SamePathCollapses(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("main.go", OpCreate)
	d.Add("main.go", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 1 {
		t.Fatalf("expected 1 collapsed event, got %d", len(batch))
	}
	if batch[0].Op != OpWrite {
		t.Errorf("expected latest op OpWrite, got %d", batch[0].Op)
	}
}

func Test_Debouncer_BatchIsSortedByPath(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("util.go", OpCreate)
	d.Add("README.md", OpRemove)
	d.Add("main.go", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 3 {
		t.Fatalf("expected 3 events, got %d", len(batch))
	}
	expected := []string{"README.md", "main.go", "util.go"}
	for i, path := range expected {
		if batch[i].Path != path {
			t.Errorf("event[%d]: expected path '%s', got '%s'", i, path, batch[i].Path)
		}
	}
}

func Test_Debouncer_QuietWindowResets(t *testing.T) {
	d := NewDebouncer(testInterval)

	d.Add("main.go", OpWrite)
	time.Sleep(testInterval / 2)
	d.Add("util.go", OpWrite)

	// Both events should land in the same batch because the second Add
	// restarted the window before the first flush fired.
	batch := receiveBatch(t, d, 500*time.Millisecond)

	if len(batch) != 2 {
		t.Fatalf("expected 2 events in one batch, got %d", len(batch))
	}
}
