package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaseStatus represents the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseTerminated LeaseStatus = "terminated"
)

// Lease is created as a side effect of approving a rental request. The
// monthly rent is copied from the unit at approval time.
type Lease struct {
	ID           string
	RequestID    string
	UnitID       string
	TenantUserID string
	StartDate    time.Time
	EndDate      time.Time
	MonthlyRent  decimal.Decimal
	Status       LeaseStatus
	CreatedAt    time.Time
}

// NewLease creates an active lease for an approved request.
func NewLease(id, requestID, unitID, tenantUserID string, start, end time.Time, rent decimal.Decimal) Lease {
	return Lease{
		ID:           id,
		RequestID:    requestID,
		UnitID:       unitID,
		TenantUserID: tenantUserID,
		StartDate:    start,
		EndDate:      end,
		MonthlyRent:  rent,
		Status:       LeaseActive,
		CreatedAt:    time.Now().UTC(),
	}
}
