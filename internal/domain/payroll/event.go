package payroll

import (
	"context"
	"time"
)

type EventKind string

const (
	EventAdvanceChanged    EventKind = "advance.changed"
	EventAttendanceChanged EventKind = "attendance.changed"
	EventPaymentChanged    EventKind = "payment.changed"
	EventRulesChanged      EventKind = "rules.changed"
)

// ChangeEvent names the employee and the day whose source data changed.
// Rule changes carry no employee; they affect every pending snapshot.
type ChangeEvent struct {
	Kind       EventKind
	EmployeeID string
	Date       time.Time
}

// Period returns the payroll month the event belongs to.
func (e ChangeEvent) Period() (month, year int) {
	return int(e.Date.Month()), e.Date.Year()
}

// triggers lists which event kinds invalidate a pending payroll snapshot.
var triggers = map[EventKind]bool{
	EventAdvanceChanged:    true,
	EventAttendanceChanged: true,
	EventPaymentChanged:    false,
	EventRulesChanged:      false,
}

// TriggersSweep reports whether every recent pending snapshot must be re-derived.
func (e ChangeEvent) TriggersSweep() bool {
	return e.Kind == EventRulesChanged
}

// TriggersRecompute reports whether the payroll for the event's month must be re-derived.
func (e ChangeEvent) TriggersRecompute() bool {
	return triggers[e.Kind] && e.EmployeeID != ""
}

// ChangeNotifier receives change events after the source write has committed.
// Implementations must not block the caller.
type ChangeNotifier interface {
	Notify(ctx context.Context, event ChangeEvent)
}
