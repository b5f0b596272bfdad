// Package fsm defines the dictation session state table.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateStopping     State = "stopping"
	StateTranscribing State = "transcribing"
	StateDelivering   State = "delivering"
	StateClosed       State = "closed"
)

const (
	EventStart       Event = "start"
	EventStop        Event = "stop"
	EventCaptured    Event = "captured"
	EventEmpty       Event = "empty"
	EventTranscribed Event = "transcribed"
	EventDelivered   Event = "delivered"
	EventClose       Event = "close"
)

// Transition returns the state reached from current on event.
// close is accepted from every state; closed accepts nothing else.
func Transition(current State, event Event) (State, error) {
	if event == EventClose {
		switch current {
		case StateIdle, StateRecording, StateStopping, StateTranscribing, StateDelivering, StateClosed:
			return StateClosed, nil
		default:
			return current, fmt.Errorf("unknown state %q", current)
		}
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventStop:
			return StateStopping, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopping:
		switch event {
		case EventCaptured:
			return StateTranscribing, nil
		case EventEmpty:
			return StateDelivering, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscribed:
			return StateDelivering, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDelivering:
		switch event {
		case EventDelivered:
			return StateClosed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateClosed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether no further events are accepted.
func Terminal(state State) bool {
	return state == StateClosed
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
