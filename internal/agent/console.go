package agent

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

var markers = map[EventType]string{
	EventTypePlan:        "🧠",
	EventTypeAnalyze:     "🔍",
	EventTypeRetrieve:    "📚",
	EventTypeSynthesize:  "🧩",
	EventTypeRunTool:     "🔨",
	EventTypeObservation: "👁",
	EventTypeFinal:       "💬",
	EventTypeError:       "❌",
}

// Console prints events as annotated lines.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	last EventType

	// SkipRepeats prints a step only when its type differs from the
	// previous one.
	SkipRepeats bool

	// MaxObservation truncates long tool output. Zero means no limit.
	MaxObservation int
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, MaxObservation: 2000}
}

func (c *Console) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SkipRepeats && e.Type == c.last && e.Type != EventTypeError {
		return
	}
	c.last = e.Type

	marker := markers[e.Type]
	if marker == "" {
		marker = "•"
	}

	switch e.Type {
	case EventTypeRunTool:
		fmt.Fprintf(c.w, "%s: %s → %s\n", marker, e.Tool, e.Content)
	case EventTypeObservation:
		fmt.Fprintf(c.w, "%s: %s\n", marker, truncate(e.Content, c.MaxObservation))
	default:
		fmt.Fprintf(c.w, "%s: %s\n", marker, e.Content)
	}
}

// Reset forgets the previous event type; call it between turns.
func (c *Console) Reset() {
	c.mu.Lock()
	c.last = ""
	c.mu.Unlock()
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := strings.ToValidUTF8(s[:n], "")
	return fmt.Sprintf("%s… (%d more bytes)", cut, len(s)-len(cut))
}
