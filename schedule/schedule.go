// Package schedule holds the orchestrator's event list (spec §4.G,
// Component H): a strictly time-ordered sequence of "overwrite this
// particle's state at this instant" events, consumed once per macro tick
// via a monotonically advancing cursor.
package schedule

import (
	"sort"

	"github.com/anupshinde/solarcore/nbody"
)

// Event is a scheduled state override: at Instant (seconds past J2000),
// the particle named BodyId is overwritten with State.
type Event struct {
	Instant float64
	BodyId  string
	State   nbody.State
}

// EventSchedule is a time-ordered list of Events with a cursor marking how
// many have already been consumed. Events before the cursor are immutable
// history; Add inserts new events only into the remaining (unconsumed)
// portion, re-sorting it.
type EventSchedule struct {
	events []Event
	cursor int
}

// New returns an empty schedule.
func New() *EventSchedule {
	return &EventSchedule{}
}

// Add inserts an event, keeping the unconsumed portion of the schedule
// sorted by Instant. An event whose Instant is earlier than the last
// consumed event's is rejected (the corresponding tick has already been
// applied) and Add returns false; an event at the same Instant is accepted
// into the unconsumed portion.
func (s *EventSchedule) Add(e Event) bool {
	if s.cursor > 0 && e.Instant < s.events[s.cursor-1].Instant {
		return false
	}
	s.events = append(s.events, e)
	sort.Slice(s.events[s.cursor:], func(i, j int) bool {
		return s.events[s.cursor+i].Instant < s.events[s.cursor+j].Instant
	})
	return true
}

// Peek returns the next unconsumed event and whether one exists, without
// advancing the cursor.
func (s *EventSchedule) Peek() (Event, bool) {
	if s.cursor >= len(s.events) {
		return Event{}, false
	}
	return s.events[s.cursor], true
}

// Next returns the next unconsumed event and advances the cursor past it,
// or (Event{}, false) if the schedule is exhausted.
func (s *EventSchedule) Next() (Event, bool) {
	e, ok := s.Peek()
	if !ok {
		return Event{}, false
	}
	s.cursor++
	return e, true
}

// Pending returns every event from the cursor onward, oldest first.
func (s *EventSchedule) Pending() []Event {
	out := make([]Event, len(s.events)-s.cursor)
	copy(out, s.events[s.cursor:])
	return out
}

// RemoveBody drops every unconsumed event targeting the given BodyId,
// preserving consumed history. Used when a spacecraft is removed (spec
// §4.G: "also prunes that spacecraft's scheduled events").
func (s *EventSchedule) RemoveBody(bodyId string) {
	kept := s.events[:s.cursor:s.cursor]
	for _, e := range s.events[s.cursor:] {
		if e.BodyId != bodyId {
			kept = append(kept, e)
		}
	}
	s.events = kept
}
