package things

import "time"

// Action status values. Transitions are monotonic:
// created -> pending -> completed.
const (
	ActionCreated   = "created"
	ActionPending   = "pending"
	ActionCompleted = "completed"
)

// Clock produces wall-clock timestamp strings. The hub supplies one;
// the default renders RFC 3339 UTC.
type Clock func() string

// DefaultClock returns the current time as an RFC 3339 UTC string.
func DefaultClock() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ActionNotifier receives status notifications from an action.
type ActionNotifier interface {
	// ActionNotify is invoked on every Start and Finish.
	ActionNotify(a *Action)
}

// Action is a request record for an asynchronous device operation.
// The id, name, and input are fixed at construction; the status moves
// through the three-state lifecycle driven by whoever carries out the
// work. Operations never fail: they are state transitions plus a
// fire-and-forget upcall.
type Action struct {
	id       string
	notifier ActionNotifier
	name     string
	input    any
	status   string
	clock    Clock

	timeRequested string
	timeCompleted string
}

// NewAction creates an action in the created state with timeRequested
// stamped from clock. A nil clock selects DefaultClock.
func NewAction(notifier ActionNotifier, id, name string, input any, clock Clock) *Action {
	if clock == nil {
		clock = DefaultClock
	}
	return &Action{
		id:            id,
		notifier:      notifier,
		name:          name,
		input:         input,
		status:        ActionCreated,
		clock:         clock,
		timeRequested: clock(),
	}
}

// Start moves the action to pending and notifies the owning device.
// There is no re-entry guard: calling Start twice re-sends the pending
// notification. Callers own the once-each-in-order contract.
func (a *Action) Start() {
	a.status = ActionPending
	a.notify()
}

// Finish moves the action to completed, stamps timeCompleted, and
// notifies the owning device.
func (a *Action) Finish() {
	a.status = ActionCompleted
	a.timeCompleted = a.clock()
	a.notify()
}

func (a *Action) notify() {
	if a.notifier != nil {
		a.notifier.ActionNotify(a)
	}
}

// Describe returns the sparse outward view: input and timeCompleted
// appear only when defined.
func (a *Action) Describe() map[string]any {
	d := map[string]any{
		"name":          a.name,
		"timeRequested": a.timeRequested,
		"status":        a.status,
	}
	if a.input != nil {
		d["input"] = a.input
	}
	if a.timeCompleted != "" {
		d["timeCompleted"] = a.timeCompleted
	}
	return d
}

// AsRecord returns the dense introspection view including the id and
// every field regardless of definedness.
func (a *Action) AsRecord() map[string]any {
	var completed any
	if a.timeCompleted != "" {
		completed = a.timeCompleted
	}
	return map[string]any{
		"id":            a.id,
		"name":          a.name,
		"input":         a.input,
		"status":        a.status,
		"timeRequested": a.timeRequested,
		"timeCompleted": completed,
	}
}

func (a *Action) ID() string            { return a.id }
func (a *Action) Name() string          { return a.name }
func (a *Action) Input() any            { return a.input }
func (a *Action) Status() string        { return a.status }
func (a *Action) TimeRequested() string { return a.timeRequested }
func (a *Action) TimeCompleted() string { return a.timeCompleted }
