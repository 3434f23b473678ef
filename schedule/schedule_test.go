package schedule

import (
	"testing"

	"github.com/anupshinde/solarcore/nbody"
)

func TestAddKeepsSortedOrder(t *testing.T) {
	s := New()
	s.Add(Event{Instant: 300, BodyId: "Probe"})
	s.Add(Event{Instant: 100, BodyId: "Probe"})
	s.Add(Event{Instant: 200, BodyId: "Probe"})

	var got []float64
	for {
		e, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, e.Instant)
	}
	want := []float64{100, 200, 300}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("event %d: got %v want %v", i, got[i], w)
		}
	}
}

func TestNext_ExactStateReplay(t *testing.T) {
	s := New()
	want := nbody.State{}
	want.Pos.X = 42
	s.Add(Event{Instant: 10, BodyId: "Probe", State: want})
	e, ok := s.Next()
	if !ok {
		t.Fatal("expected an event")
	}
	if e.State.Pos.X != 42 {
		t.Errorf("event state not preserved exactly: got %v", e.State.Pos.X)
	}
}

func TestPeek_DoesNotAdvanceCursor(t *testing.T) {
	s := New()
	s.Add(Event{Instant: 10, BodyId: "A"})
	if _, ok := s.Peek(); !ok {
		t.Fatal("expected an event")
	}
	if _, ok := s.Peek(); !ok {
		t.Fatal("expected peek to be idempotent")
	}
	if len(s.Pending()) != 1 {
		t.Errorf("expected 1 pending event after peeking, got %d", len(s.Pending()))
	}
}

func TestAdd_RejectsEventBeforeCursor(t *testing.T) {
	s := New()
	s.Add(Event{Instant: 100, BodyId: "A"})
	s.Next()
	if s.Add(Event{Instant: 50, BodyId: "A"}) {
		t.Error("expected Add to reject an event earlier than the consumed cursor")
	}
}

func TestRemoveBody_OnlyPrunesUnconsumed(t *testing.T) {
	s := New()
	s.Add(Event{Instant: 10, BodyId: "Probe"})
	s.Add(Event{Instant: 20, BodyId: "Other"})
	s.Next() // consume the Probe event at t=10
	s.Add(Event{Instant: 30, BodyId: "Probe"})

	s.RemoveBody("Probe")
	pending := s.Pending()
	if len(pending) != 1 || pending[0].BodyId != "Other" {
		t.Errorf("expected only the Other event to remain pending, got %+v", pending)
	}
}

func TestExhaustedSchedule(t *testing.T) {
	s := New()
	if _, ok := s.Next(); ok {
		t.Error("expected Next on an empty schedule to report false")
	}
}
