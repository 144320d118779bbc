package scheduler

import (
	"reflect"
	"testing"
)

func TestWindow_EvictsOldest(t *testing.T) {
	w := NewWindow(3, nil)
	w.Record("A", "B", "C")
	if !w.Contains("A") {
		t.Fatalf("Expected A in window")
	}

	w.Record("D")
	if w.Contains("A") {
		t.Errorf("Expected A to be evicted")
	}
	if n := len(w.Names()); n != 3 || w.Cap() != 3 {
		t.Errorf("Expected len 3 cap 3, got %d/%d", n, w.Cap())
	}
	if got := w.Names(); !reflect.DeepEqual(got, []string{"B", "C", "D"}) {
		t.Errorf("Expected [B C D], got %v", got)
	}
}

func TestWindow_DuplicateNamesAreCounted(t *testing.T) {
	w := NewWindow(2, nil)
	w.Record("A", "A")
	w.Record("B")
	if !w.Contains("A") {
		t.Errorf("Expected A to remain while one copy is held")
	}
	w.Record("C")
	if w.Contains("A") {
		t.Errorf("Expected A to be gone")
	}
}

func TestWindow_SeedKeepsMostRecent(t *testing.T) {
	w := NewWindow(2, []string{"A", "B", "C"})
	if got := w.Names(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("Expected [B C], got %v", got)
	}
}

func TestWindow_ZeroCapacity(t *testing.T) {
	w := NewWindow(0, []string{"A"})
	w.Record("B")
	if w.Contains("A") || w.Contains("B") || w.Cap() != 0 {
		t.Errorf("Expected an empty window")
	}
	if len(w.Names()) != 0 {
		t.Errorf("Expected no names")
	}
}
