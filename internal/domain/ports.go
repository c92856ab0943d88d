package domain

import (
	"context"
	"time"
)

// RequestRepository defines the persistence contract for rental requests.
// Create must be serialized per user: when two submissions race, exactly
// one wins and the loser gets a GuardError with CodePendingExists.
type RequestRepository interface {
	Create(ctx context.Context, req RentalRequest) error
	GetByID(ctx context.Context, id string) (RentalRequest, error)
	LatestByUser(ctx context.Context, userID string) (RentalRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]RentalRequest, error)
	Acknowledge(ctx context.Context, requestID, userID string) error
}

// RequestFilter holds optional criteria for listing rental requests.
type RequestFilter struct {
	Status *Status
	UserID string
	Limit  int
	Offset int
}

// UnitRegistry defines the read/write contract against the unit store.
// SetUnitStatus exists for maintenance scheduling; occupancy changes go
// through the DecisionStore so they stay atomic with the request.
type UnitRegistry interface {
	GetUnit(ctx context.Context, id string) (Unit, error)
	SetUnitStatus(ctx context.Context, id string, status UnitStatus) error
}

// UserStore defines the contract against the user/role store.
type UserStore interface {
	GetUser(ctx context.Context, id string) (User, error)
	SetUserRole(ctx context.Context, id string, role Role) error
}

// LeaseStore defines the read contract against the lease store. Leases
// are only ever created inside the approval transaction.
type LeaseStore interface {
	GetLease(ctx context.Context, id string) (Lease, error)
	ActiveLeaseForUnit(ctx context.Context, unitID string) (Lease, error)
}

// ApprovalParams carries everything the approval transaction needs. The
// lease id is generated by the caller so the operation can be retried
// with the same identity after a transient failure.
type ApprovalParams struct {
	RequestID string
	AdminID   string
	LeaseID   string
	StartDate time.Time
	EndDate   time.Time
}

// RejectionParams carries the inputs of the rejection transition.
type RejectionParams struct {
	RequestID string
	AdminID   string
	Reason    string
}

// DecisionStore executes the cross-entity transitions as single atomic
// units. Approve writes four records (request, lease, unit, user role)
// all-or-nothing; a lease without the matching role promotion would
// silently corrupt the eligibility projection. Terminate is the symmetric
// reverse transition with the same contract.
type DecisionStore interface {
	Approve(ctx context.Context, p ApprovalParams) (Lease, error)
	Reject(ctx context.Context, p RejectionParams) error
	Terminate(ctx context.Context, leaseID string) error
}

// EventPublisher defines the contract for emitting booking events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, req RentalRequest) error
}

// TransitionValidator checks lifecycle events against the transition
// tables and returns the destination state.
type TransitionValidator interface {
	ApplyRequest(ctx context.Context, current Status, event Event) (Status, error)
	ApplyUnit(ctx context.Context, current UnitStatus, event UnitEvent) (UnitStatus, error)
}
