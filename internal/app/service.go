package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/villagio/leaseflow/internal/domain"
)

// BookingService orchestrates the rental request lifecycle: submission
// guards, the eligibility projection, and the admin decision transitions.
type BookingService struct {
	requests  domain.RequestRepository
	units     domain.UnitRegistry
	users     domain.UserStore
	leases    domain.LeaseStore
	decisions domain.DecisionStore
	publisher domain.EventPublisher
	validator domain.TransitionValidator
}

// NewBookingService creates a service with the given adapters.
func NewBookingService(
	requests domain.RequestRepository,
	units domain.UnitRegistry,
	users domain.UserStore,
	leases domain.LeaseStore,
	decisions domain.DecisionStore,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
) *BookingService {
	return &BookingService{
		requests:  requests,
		units:     units,
		users:     users,
		leases:    leases,
		decisions: decisions,
		publisher: publisher,
		validator: validator,
	}
}

// Submit validates the submission guards and persists a pending request.
// The guards are re-checked by the repository's uniqueness constraint, so
// two concurrent submissions cannot both win: the loser gets a GuardError
// with CodePendingExists even if both passed the read-side checks here.
func (s *BookingService) Submit(ctx context.Context, userID, unitID string, applicant domain.ApplicantSnapshot, leaseDurationMonths int) (domain.RentalRequest, error) {
	if leaseDurationMonths < 1 {
		return domain.RentalRequest{}, &domain.GuardError{
			Code:   domain.CodeInvalidPeriod,
			Reason: "lease duration must be at least one month",
		}
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.RentalRequest{}, err
	}
	if user.Role == domain.RoleVillager {
		return domain.RentalRequest{}, &domain.GuardError{
			Code:   domain.CodeAlreadyVillager,
			Reason: "user already holds an active lease",
		}
	}

	if _, err := s.units.GetUnit(ctx, unitID); err != nil {
		return domain.RentalRequest{}, err
	}

	latest, err := s.requests.LatestByUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		// First submission ever; nothing to guard against.
	case err != nil:
		return domain.RentalRequest{}, err
	case latest.Status == domain.StatusPending:
		return domain.RentalRequest{}, &domain.GuardError{
			Code:   domain.CodePendingExists,
			Reason: "a pending request already exists for this user",
		}
	case latest.Status == domain.StatusRejected && !latest.RejectionAcknowledged:
		return domain.RentalRequest{}, &domain.GuardError{
			Code:   domain.CodeUnacknowledgedRejection,
			Reason: "the previous rejection must be acknowledged first",
		}
	}

	req := domain.NewRentalRequest(newID(), userID, unitID, applicant, leaseDurationMonths)

	if err := s.requests.Create(ctx, req); err != nil {
		return domain.RentalRequest{}, err
	}

	if err := s.publisher.Publish(ctx, domain.EventSubmit, req); err != nil {
		return domain.RentalRequest{}, fmt.Errorf("publishing submit event: %w", err)
	}

	return req, nil
}

// LatestStatus computes the eligibility projection for a user. It is
// derived from live state on every call; the poller depends on seeing a
// decision within one poll interval.
func (s *BookingService) LatestStatus(ctx context.Context, userID string) (domain.Eligibility, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.Eligibility{}, err
	}

	latest, err := s.requests.LatestByUser(ctx, userID)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return domain.ComputeEligibility(user.Role, nil), nil
	}
	if err != nil {
		return domain.Eligibility{}, err
	}

	return domain.ComputeEligibility(user.Role, &latest), nil
}

// GetRequest returns a rental request by its unique identifier.
func (s *BookingService) GetRequest(ctx context.Context, id string) (domain.RentalRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// ListRequests returns rental requests matching the given filter. Admins
// use this with a pending filter as their decision queue.
func (s *BookingService) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.RentalRequest, error) {
	return s.requests.List(ctx, filter)
}

// Approve executes the approval transition: lease created, request
// approved, applicant promoted to villager, unit occupied, all in one
// atomic unit in the decision store. The pre-flight checks here give
// fast, well-typed failures; the store re-checks both the request status
// and the unit status under the transaction, so a stale read can never
// produce a partial write.
func (s *BookingService) Approve(ctx context.Context, requestID, adminID string, startDate, endDate time.Time) (domain.Lease, error) {
	if !endDate.After(startDate) {
		return domain.Lease{}, &domain.GuardError{
			Code:   domain.CodeInvalidPeriod,
			Reason: "end date must be after start date",
		}
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return domain.Lease{}, err
	}

	if _, err := s.validator.ApplyRequest(ctx, req.Status, domain.EventApprove); err != nil {
		return domain.Lease{}, asDecisionError(err)
	}

	unit, err := s.units.GetUnit(ctx, req.UnitID)
	if err != nil {
		return domain.Lease{}, err
	}
	if _, err := s.validator.ApplyUnit(ctx, unit.Status, domain.UnitEventOccupy); err != nil {
		return domain.Lease{}, asUnitError(err)
	}

	lease, err := s.decisions.Approve(ctx, domain.ApprovalParams{
		RequestID: requestID,
		AdminID:   adminID,
		LeaseID:   newID(),
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return domain.Lease{}, err
	}

	req, err = s.requests.GetByID(ctx, requestID)
	if err != nil {
		return domain.Lease{}, err
	}
	if err := s.publisher.Publish(ctx, domain.EventApprove, req); err != nil {
		return domain.Lease{}, fmt.Errorf("publishing approve event: %w", err)
	}

	return lease, nil
}

// Reject executes the rejection transition. Only the request record is
// touched: status becomes rejected with the reason recorded, and the
// acknowledgement flag starts false, blocking resubmission until the
// applicant acknowledges.
func (s *BookingService) Reject(ctx context.Context, requestID, adminID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrReasonRequired
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if _, err := s.validator.ApplyRequest(ctx, req.Status, domain.EventReject); err != nil {
		return asDecisionError(err)
	}

	if err := s.decisions.Reject(ctx, domain.RejectionParams{
		RequestID: requestID,
		AdminID:   adminID,
		Reason:    reason,
	}); err != nil {
		return err
	}

	req, err = s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, domain.EventReject, req); err != nil {
		return fmt.Errorf("publishing reject event: %w", err)
	}

	return nil
}

// Acknowledge flips the acknowledgement flag on the caller's rejected
// request. Acknowledging an already-acknowledged request is a no-op
// success so the client can retry after a dropped response.
func (s *BookingService) Acknowledge(ctx context.Context, requestID, userID string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		// Do not reveal other users' requests.
		return domain.ErrRequestNotFound
	}
	if req.Status != domain.StatusRejected {
		return &domain.GuardError{
			Code:   domain.CodeNotRejected,
			Reason: "only a rejected request can be acknowledged",
		}
	}
	if req.RejectionAcknowledged {
		return nil
	}

	if err := s.requests.Acknowledge(ctx, requestID, userID); err != nil {
		return err
	}

	req.RejectionAcknowledged = true
	if err := s.publisher.Publish(ctx, domain.EventAcknowledge, req); err != nil {
		return fmt.Errorf("publishing acknowledge event: %w", err)
	}

	return nil
}

// TerminateLease executes the reverse transition with the same atomicity
// contract as Approve: lease terminated, unit released, tenant demoted
// back to user, all-or-nothing. This re-enables booking for the tenant.
func (s *BookingService) TerminateLease(ctx context.Context, leaseID, adminID string) error {
	lease, err := s.leases.GetLease(ctx, leaseID)
	if err != nil {
		return err
	}
	if lease.Status != domain.LeaseActive {
		return &domain.GuardError{
			Code:   domain.CodeLeaseNotActive,
			Reason: "lease is already terminated",
		}
	}

	if err := s.decisions.Terminate(ctx, leaseID); err != nil {
		return err
	}

	req, err := s.requests.GetByID(ctx, lease.RequestID)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, domain.EventTerminate, req); err != nil {
		return fmt.Errorf("publishing terminate event: %w", err)
	}

	return nil
}

// asDecisionError maps a transition failure on the request lifecycle to
// the guard code admins branch on: the request was decided by someone
// else and their view is stale.
func asDecisionError(err error) error {
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return &domain.GuardError{
			Code:   domain.CodeAlreadyDecided,
			Reason: fmt.Sprintf("request is already %s", trErr.Current),
		}
	}
	return err
}

// asUnitError maps a transition failure on the unit lifecycle to the
// unit-unavailable guard code.
func asUnitError(err error) error {
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return &domain.GuardError{
			Code:   domain.CodeUnitUnavailable,
			Reason: fmt.Sprintf("unit is %s", trErr.Current),
		}
	}
	return err
}
