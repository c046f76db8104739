package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/ehrlich-b/stepwise/internal/step"
	"github.com/ehrlich-b/stepwise/internal/tools"
)

const DefaultMaxSteps = 25

var (
	ErrTurnBudgetExceeded = errors.New("turn exceeded step budget without output")
	ErrMalformedReply     = errors.New("malformed model reply")
)

// Orchestrator drives the single-step loop: one model call per step, one
// tool call per action, until the model emits an output step.
type Orchestrator struct {
	provider    llm.Provider
	registry    *tools.Registry
	events      EventSink
	maxSteps    int
	temperature *float32
}

func NewOrchestrator(provider llm.Provider, registry *tools.Registry, events EventSink, maxSteps int) *Orchestrator {
	if events == nil {
		events = Discard
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if registry == nil {
		registry = tools.NewRegistry(tools.Env{})
	}
	return &Orchestrator{
		provider: provider,
		registry: registry,
		events:   events,
		maxSteps: maxSteps,
	}
}

// SetTemperature overrides the provider's default sampling temperature.
func (o *Orchestrator) SetTemperature(t *float32) {
	o.temperature = t
}

// RunTurn appends the user's input and runs the loop until output.
func (o *Orchestrator) RunTurn(ctx context.Context, s *session.Session, input string) (step.Record, error) {
	s.Append(session.RoleUser, input)
	return o.Continue(ctx, s)
}

// Continue runs the loop on the transcript as it stands. The returned
// record is the output step; on error the transcript keeps every
// well-formed step that was produced before the failure.
func (o *Orchestrator) Continue(ctx context.Context, s *session.Session) (step.Record, error) {
	for i := 0; i < o.maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return step.Record{}, err
		}

		reply, err := o.provider.Complete(ctx, s.Messages(), llm.Options{
			JSON:        true,
			Temperature: o.temperature,
		})
		if err != nil {
			o.events.Emit(Event{Type: EventTypeError, Content: err.Error()})
			return step.Record{}, fmt.Errorf("model call: %w", err)
		}

		rec, err := step.Parse(reply.Text())
		if err != nil {
			logger.Warn("Malformed model reply", "error", err, "reply", reply.Text())
			o.events.Emit(Event{Type: EventTypeError, Content: err.Error()})
			return step.Record{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}

		s.Append(session.RoleAssistant, rec.JSON())
		o.events.Emit(eventFor(rec))

		switch rec.Step {
		case step.Output:
			return rec, nil
		case step.Action:
			o.runAction(ctx, s, rec)
		}
	}

	logger.Warn("Turn budget exhausted", "max_steps", o.maxSteps, "session", s.ID)
	err := fmt.Errorf("%w (%d steps)", ErrTurnBudgetExceeded, o.maxSteps)
	o.events.Emit(Event{Type: EventTypeError, Content: err.Error()})
	return step.Record{}, err
}

// runAction executes one tool call and appends the observe step. Tool
// failures, unknown names included, become the observation content.
func (o *Orchestrator) runAction(ctx context.Context, s *session.Session, rec step.Record) {
	res := o.registry.Run(ctx, rec.Function, rec.Input)

	obs, err := step.Observation(res.Observation())
	if err != nil {
		obs, _ = step.Observation(fmt.Sprintf("Error encoding tool result: %v", err))
	}
	s.Append(session.RoleAssistant, obs.JSON())

	o.events.Emit(Event{
		Type:    EventTypeObservation,
		Tool:    rec.Function,
		Content: obs.ContentString(),
		Data:    res,
	})
}
