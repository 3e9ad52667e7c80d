package batch

import (
	"fmt"
	"strings"

	"consolidation/internal/pkg/errs"
)

// Status is the lifecycle state of a batch.
//
//	OPEN ──> SEALED ──> IN_TRANSIT ──> ARRIVED ──> DISTRIBUTED
//	  │         │
//	  └─────────┴──> CANCELLED
type Status int

const (
	Unknown Status = iota
	Open
	Sealed
	InTransit
	Arrived
	Distributed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:     "UNKNOWN",
		Open:        "OPEN",
		Sealed:      "SEALED",
		InTransit:   "IN_TRANSIT",
		Arrived:     "ARRIVED",
		Distributed: "DISTRIBUTED",
		Cancelled:   "CANCELLED",
	}
}

// ParseStatus accepts the names returned by String, case-insensitively.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known batch status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports DISTRIBUTED and CANCELLED.
func (s Status) IsTerminal() bool {
	return s == Distributed || s == Cancelled
}

// AllowsMembershipChange is true only for OPEN.
func (s Status) AllowsMembershipChange() bool {
	return s == Open
}

func (s Status) Seal() (Status, error) {
	return s.transition(Sealed, Open)
}

func (s Status) Dispatch() (Status, error) {
	return s.transition(InTransit, Sealed)
}

func (s Status) Arrive() (Status, error) {
	return s.transition(Arrived, InTransit)
}

func (s Status) Distribute() (Status, error) {
	return s.transition(Distributed, Arrived)
}

func (s Status) Cancel() (Status, error) {
	return s.transition(Cancelled, Open, Sealed)
}

func (s Status) transition(to Status, from ...Status) (Status, error) {
	for _, allowed := range from {
		if s == allowed {
			return to, nil
		}
	}
	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}
