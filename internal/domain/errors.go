package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for missing entities. These are never conflated with
// guard violations: a stale id is a 404, a tripped business rule is not.
var (
	ErrRequestNotFound = errors.New("rental request not found")
	ErrUnitNotFound    = errors.New("unit not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrLeaseNotFound   = errors.New("lease not found")

	// ErrReasonRequired is returned when a rejection carries no reason.
	ErrReasonRequired = errors.New("rejection reason must not be empty")
)

// GuardCode identifies which business-rule precondition tripped. Codes
// are stable and machine-readable: the client branches its UI on them
// (waiting screen vs rejection modal vs booking form), so they must never
// degrade into free text.
type GuardCode string

const (
	CodeAlreadyVillager         GuardCode = "ALREADY_VILLAGER"
	CodePendingExists           GuardCode = "PENDING_EXISTS"
	CodeUnacknowledgedRejection GuardCode = "UNACKNOWLEDGED_REJECTION"
	CodeAlreadyDecided          GuardCode = "ALREADY_DECIDED"
	CodeUnitUnavailable         GuardCode = "UNIT_UNAVAILABLE"
	CodeInvalidPeriod           GuardCode = "INVALID_PERIOD"
	CodeNotRejected             GuardCode = "NOT_REJECTED"
	CodeLeaseNotActive          GuardCode = "LEASE_NOT_ACTIVE"
)

// GuardError is a business-rule precondition failure. Guard violations
// are reported to the caller and never retried; retrying cannot make a
// villager eligible or un-decide a request.
type GuardError struct {
	Code   GuardCode
	Reason string
}

func (e *GuardError) Error() string {
	if e.Reason == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// GuardCodeOf extracts the guard code from an error chain, or "" if the
// error is not a guard violation.
func GuardCodeOf(err error) GuardCode {
	var g *GuardError
	if errors.As(err, &g) {
		return g.Code
	}
	return ""
}

// TransitionError is returned when a lifecycle event is not allowed from
// the current state. Event and Current are plain strings so the same type
// covers both the request and the unit lifecycles.
type TransitionError struct {
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
