package telemetry

import "testing"

func TestHistoryUnbounded(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 1000; i++ {
		h.Append(Sample{Tick: int32(i)})
	}
	if h.Len() != 1000 || h.Dropped() != 0 {
		t.Fatalf("len=%d dropped=%d, want 1000 0", h.Len(), h.Dropped())
	}
	for i, s := range h.Samples() {
		if s.Tick != int32(i) {
			t.Fatalf("sample %d has tick %d", i, s.Tick)
		}
	}
}

func TestHistoryCapKeepsNewest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(Sample{Tick: int32(i)})
	}

	got := h.Samples()
	if len(got) != 3 || h.Dropped() != 2 {
		t.Fatalf("len=%d dropped=%d, want 3 2", len(got), h.Dropped())
	}
	for i, want := range []int32{2, 3, 4} {
		if got[i].Tick != want {
			t.Errorf("sample %d tick %d, want %d", i, got[i].Tick, want)
		}
	}

	last, ok := h.Last()
	if !ok || last.Tick != 4 {
		t.Errorf("Last = %v %v, want tick 4", last, ok)
	}

	h.Reset()
	if h.Len() != 0 || h.Dropped() != 0 {
		t.Error("Reset left samples behind")
	}
	if _, ok := h.Last(); ok {
		t.Error("Last on empty history reported a sample")
	}
}
