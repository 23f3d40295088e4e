
package emitter

import (
	"errors"
	"fmt"
)

var (
	InvalidEventNameErr = errors.New("Invalid event name")
	NilHandlerErr       = errors.New("Event handler is nil")
	UncomparableKeyErr  = errors.New("Listener key is not comparable")
	ClosedErr           = errors.New("Event registry is closed")
)

// EventNameError is returned in strict mode when an event name is not part of
// the registry's declared set.
type EventNameError struct{
	Registry string
	Event    string
}

func (e *EventNameError)Error()(string){
	if e.Registry == "" {
		return fmt.Sprintf("%s '%s'", InvalidEventNameErr.Error(), e.Event)
	}
	return fmt.Sprintf("%s '%s' for %s", InvalidEventNameErr.Error(), e.Event, e.Registry)
}

func (e *EventNameError)Unwrap()(error){
	return InvalidEventNameErr
}

// IsInvalidEventName reports whether err was caused by an undeclared event name.
func IsInvalidEventName(err error)(bool){
	return errors.Is(err, InvalidEventNameErr)
}
