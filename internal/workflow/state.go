package workflow

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

// State is a step of a registration or payment flow.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateCheckingUser     State = "checking_user"
	StateBlocked          State = "blocked"
	StateConfirming       State = "confirming"
	StateSubmitting       State = "submitting"
	StateRedirecting      State = "redirecting"
	StateFailed           State = "failed"
	StateVerifyingPayment State = "verifying_payment"
)

// ErrInvalidState is returned when an operation is not allowed from the flow's current state.
var ErrInvalidState = errors.New("workflow: invalid state transition")

var stateTransitions = map[State][]State{
	StateIdle:             {StateValidating, StateVerifyingPayment},
	StateValidating:       {StateIdle, StateCheckingUser},
	StateCheckingUser:     {StateBlocked, StateConfirming, StateFailed},
	StateBlocked:          {StateIdle},
	StateFailed:           {StateIdle},
	StateConfirming:       {StateSubmitting, StateIdle},
	StateSubmitting:       {StateRedirecting, StateFailed},
	StateVerifyingPayment: {StateRedirecting, StateFailed},
}

func canTransition(current, target State) bool {
	next, ok := stateTransitions[current]
	if !ok {
		return false
	}
	return slices.Contains(next, target)
}

// Step is one entry in a flow's history.
type Step struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}

// Flow is one attempt at a registration action. It lives in the session cookie
// between the lookup and the user's confirmation, so History stays in memory
// for the current request only.
type Flow struct {
	ID      string                 `json:"id"`
	Action  form.Action            `json:"action"`
	State   State                  `json:"state"`
	Draft   form.RegistrationDraft `json:"draft"`
	Checked bool                   `json:"checked"`
	History []Step                 `json:"-"`
}

// Pending reports whether the flow is waiting for the user to confirm.
func (f *Flow) Pending() bool {
	return f != nil && f.State == StateConfirming && f.Checked
}

// States returns the visited states in order.
func (f *Flow) States() []State {
	out := make([]State, 0, len(f.History))
	for _, s := range f.History {
		out = append(out, s.State)
	}
	return out
}

func (f *Flow) advance(target State, now time.Time) error {
	if !canTransition(f.State, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, f.State, target)
	}
	f.State = target
	f.History = append(f.History, Step{State: target, At: now})
	return nil
}
