package agent

import (
	"github.com/ehrlich-b/stepwise/internal/step"
)

type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeAnalyze     EventType = "analyze"
	EventTypeRetrieve    EventType = "retrieve"
	EventTypeSynthesize  EventType = "synthesize"
	EventTypeRunTool     EventType = "action"
	EventTypeObservation EventType = "observe"
	EventTypeFinal       EventType = "output"
	EventTypeError       EventType = "error"
)

// Event is one thing worth showing the user while a turn runs.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
	Tool    string    `json:"tool,omitempty"`
	Data    any       `json:"data,omitempty"`
}

// EventSink receives events in the order they happen.
type EventSink interface {
	Emit(Event)
}

// EventFunc adapts a function to EventSink.
type EventFunc func(Event)

func (f EventFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard EventSink = EventFunc(func(Event) {})

func eventFor(rec step.Record) Event {
	ev := Event{Type: EventType(rec.Step), Content: rec.ContentString()}
	if rec.Step == step.Action {
		ev.Tool = rec.Function
		ev.Content = rec.InputString()
	}
	return ev
}
