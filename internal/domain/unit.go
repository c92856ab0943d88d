package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitStatus represents the occupancy state of a unit.
type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

// UnitEvent represents an action that changes a unit's occupancy state.
type UnitEvent string

const (
	UnitEventOccupy           UnitEvent = "occupy"
	UnitEventRelease          UnitEvent = "release"
	UnitEventBeginMaintenance UnitEvent = "begin_maintenance"
	UnitEventEndMaintenance   UnitEvent = "end_maintenance"
)

// UnitTransition defines a valid unit status change.
type UnitTransition struct {
	Event UnitEvent
	Src   UnitStatus
	Dst   UnitStatus
}

// UnitTransitions defines all valid unit status changes. A unit under
// maintenance cannot be occupied directly; it must be released from
// maintenance first.
var UnitTransitions = []UnitTransition{
	{Event: UnitEventOccupy, Src: UnitAvailable, Dst: UnitOccupied},
	{Event: UnitEventRelease, Src: UnitOccupied, Dst: UnitAvailable},
	{Event: UnitEventBeginMaintenance, Src: UnitAvailable, Dst: UnitMaintenance},
	{Event: UnitEventEndMaintenance, Src: UnitMaintenance, Dst: UnitAvailable},
}

// Unit is a rentable apartment unit in the registry.
type Unit struct {
	ID          string
	Name        string
	Status      UnitStatus
	MonthlyRent decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
