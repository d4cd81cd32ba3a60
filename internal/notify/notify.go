// Package notify carries the two side channels of the record store: change
// notifications keyed by resource address, fired on every successful
// mutation, and the start-work signal that kicks the external transfer
// worker. Firing is synchronous with the mutating call returning success;
// delivery to observers is asynchronous and best-effort, so a failed
// observer can never fail the mutation.
package notify

import "context"

// Op names the mutation that produced a change event.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one change notification.
type Event struct {
	// ID uniquely identifies the event.
	ID string

	// Address is the resource address the mutation was issued against.
	Address string

	// Op is the mutation kind.
	Op Op
}

// ChangeNotifier receives a change event after every successful mutation.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, ev Event)
}

// WorkTrigger is signaled to start the worker when a row is created or its
// control column changes.
type WorkTrigger interface {
	StartWork(ctx context.Context, reason string)
}

// Reasons passed to StartWork.
const (
	ReasonCreate  = "create"
	ReasonControl = "control"
)

// Discard is a ChangeNotifier and WorkTrigger that drops everything.
type Discard struct{}

func (Discard) NotifyChange(context.Context, Event) {}
func (Discard) StartWork(context.Context, string)   {}
