package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/villagio/leaseflow/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// requestEvents and unitEvents convert the domain transition tables into
// looplab/fsm EventDesc format. Transitions with the same event+destination
// are consolidated into a single EventDesc with multiple source states.
var (
	requestEvents = buildEvents(requestDescs())
	unitEvents    = buildEvents(unitDescs())
)

type desc struct {
	event string
	src   string
	dst   string
}

func requestDescs() []desc {
	out := make([]desc, 0, len(domain.Transitions))
	for _, t := range domain.Transitions {
		out = append(out, desc{event: string(t.Event), src: string(t.Src), dst: string(t.Dst)})
	}
	return out
}

func unitDescs() []desc {
	out := make([]desc, 0, len(domain.UnitTransitions))
	for _, t := range domain.UnitTransitions {
		out = append(out, desc{event: string(t.Event), src: string(t.Src), dst: string(t.Dst)})
	}
	return out
}

func buildEvents(descs []desc) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, d := range descs {
		k := key{event: d.event, dst: d.dst}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], d.src)
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM instance per call, initialized with the
// current state. This is necessary because looplab/fsm is stateful (it
// tracks the current state internally).
type Validator struct{}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// ApplyRequest checks if the given event is valid from the current
// request status and returns the destination status. Returns a
// domain.TransitionError if the transition is not allowed.
func (v *Validator) ApplyRequest(ctx context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	next, err := apply(ctx, requestEvents, string(current), string(event))
	if err != nil {
		return "", err
	}
	return domain.Status(next), nil
}

// ApplyUnit checks if the given event is valid from the current unit
// status and returns the destination status.
func (v *Validator) ApplyUnit(ctx context.Context, current domain.UnitStatus, event domain.UnitEvent) (domain.UnitStatus, error) {
	next, err := apply(ctx, unitEvents, string(current), string(event))
	if err != nil {
		return "", err
	}
	return domain.UnitStatus(next), nil
}

func apply(ctx context.Context, events []loopfsm.EventDesc, current, event string) (string, error) {
	machine := loopfsm.NewFSM(current, events, nil)

	if err := machine.Event(ctx, event); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return machine.Current(), nil
}
