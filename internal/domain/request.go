package domain

import "time"

// Status represents the lifecycle state of a rental request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Event represents an action within the booking lifecycle. Only
// EventApprove and EventReject change a request's status; the others
// are published for observers but never move the status enum.
type Event string

const (
	EventSubmit      Event = "submit"
	EventApprove     Event = "approve"
	EventReject      Event = "reject"
	EventAcknowledge Event = "acknowledge"
	EventTerminate   Event = "terminate"
)

// Transition defines a valid state change: an event moves a request from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid request status changes. Approved and
// rejected are terminal: no event leads out of either. Acknowledgement
// flips a flag on a rejected request without moving the status.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventApprove, Src: StatusPending, Dst: StatusApproved},
	{Event: EventReject, Src: StatusPending, Dst: StatusRejected},
}

// ApplicantSnapshot is the applicant's contact data copied at submission
// time. It is deliberately not a join against the user record, so later
// profile edits never alter a request that is already under review.
type ApplicantSnapshot struct {
	FullName         string
	Email            string
	Phone            string
	Occupation       string
	EmergencyContact string
}

// RentalRequest is one booking attempt by a prospective tenant. Requests
// are never deleted; a fresh attempt after rejection creates a new row.
type RentalRequest struct {
	ID                    string
	UserID                string
	UnitID                string
	Applicant             ApplicantSnapshot
	LeaseDurationMonths   int
	Status                Status
	RequestDate           time.Time
	DecisionDate          *time.Time
	DecidedBy             string
	RejectionReason       string
	RejectionAcknowledged bool
	LeaseID               string
}

// NewRentalRequest creates a request in the initial "pending" state.
func NewRentalRequest(id, userID, unitID string, applicant ApplicantSnapshot, leaseDurationMonths int) RentalRequest {
	return RentalRequest{
		ID:                  id,
		UserID:              userID,
		UnitID:              unitID,
		Applicant:           applicant,
		LeaseDurationMonths: leaseDurationMonths,
		Status:              StatusPending,
		RequestDate:         time.Now().UTC(),
	}
}
