package domain

// Eligibility is the derived booking view the polling client branches on.
// It is recomputed from live state on every call; caching it across a
// decision would either let a user double-submit or leave them stuck on
// the waiting screen.
type Eligibility struct {
	CanCreateNewRequest     bool
	IsPending               bool
	IsApproved              bool
	IsRejected              bool
	RequiresAcknowledgement bool
	HasActiveLease          bool
}

// ComputeEligibility derives the booking view from the user's role and
// their most recent request. latest is nil when the user has never
// submitted. The role, not the request row, decides HasActiveLease: an
// approved request whose lease has since been terminated leaves the user
// demoted to RoleUser and free to book again.
func ComputeEligibility(role Role, latest *RentalRequest) Eligibility {
	e := Eligibility{
		HasActiveLease: role == RoleVillager,
	}

	if latest == nil {
		e.CanCreateNewRequest = role != RoleVillager
		return e
	}

	e.IsPending = latest.Status == StatusPending
	e.IsApproved = latest.Status == StatusApproved
	e.IsRejected = latest.Status == StatusRejected
	e.RequiresAcknowledgement = e.IsRejected && !latest.RejectionAcknowledged

	unlocked := e.IsApproved || (e.IsRejected && latest.RejectionAcknowledged)
	e.CanCreateNewRequest = role != RoleVillager && unlocked

	return e
}
