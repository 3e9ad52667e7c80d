package order

import (
	"fmt"
	"strings"

	"consolidation/internal/pkg/errs"
)

// Status is the order's position in the upstream delivery pipeline.
//
//	Created ──> PickedUp ──> InTransit ──> AtDestinationOffice ──> Delivered
//	   │            │            │                  │
//	   └────────────┴────────────┴──────────────────┴──> Cancelled
type Status int

const (
	Unknown Status = iota
	Created
	PickedUp
	InTransit
	AtDestinationOffice
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:             "UNKNOWN",
		Created:             "CREATED",
		PickedUp:            "PICKED_UP",
		InTransit:           "IN_TRANSIT",
		AtDestinationOffice: "AT_DESTINATION_OFFICE",
		Delivered:           "DELIVERED",
		Cancelled:           "CANCELLED",
	}
}

// ParseStatus accepts the upper snake case names returned by String.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == strings.ToUpper(strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known order status", s))
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

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// ChangeTo moves the order forward in the pipeline. Skipping ahead is allowed,
// going back is not, and terminal statuses never change.
func (s Status) ChangeTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}
	if s.IsTerminal() || (next != Cancelled && next < s) {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s cannot change to %s", s, next),
		)
	}
	return next, nil
}
