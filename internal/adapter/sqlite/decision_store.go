package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/villagio/leaseflow/internal/domain"
)

// Approve executes the four-way approval write in one transaction: the
// unit flips to occupied, a lease is inserted, the request flips to
// approved, and the applicant is promoted to villager. Every status
// change is a compare-and-swap on the previously read state, so a
// concurrent decision aborts the whole transaction instead of leaving a
// lease without a role promotion.
func (s *Store) Approve(ctx context.Context, p domain.ApprovalParams) (domain.Lease, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Lease{}, fmt.Errorf("beginning approval transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var userID, unitID, status string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, unit_id, status FROM rental_requests WHERE id = ?`,
		p.RequestID,
	).Scan(&userID, &unitID, &status)
	if err == sql.ErrNoRows {
		return domain.Lease{}, domain.ErrRequestNotFound
	}
	if err != nil {
		return domain.Lease{}, fmt.Errorf("loading request for approval: %w", err)
	}
	if status != string(domain.StatusPending) {
		return domain.Lease{}, &domain.GuardError{
			Code:   domain.CodeAlreadyDecided,
			Reason: fmt.Sprintf("request is already %s", status),
		}
	}

	var rentStr string
	err = tx.QueryRowContext(ctx,
		`SELECT monthly_rent FROM units WHERE id = ?`, unitID,
	).Scan(&rentStr)
	if err == sql.ErrNoRows {
		return domain.Lease{}, domain.ErrUnitNotFound
	}
	if err != nil {
		return domain.Lease{}, fmt.Errorf("loading unit for approval: %w", err)
	}
	rent, err := decimal.NewFromString(rentStr)
	if err != nil {
		return domain.Lease{}, fmt.Errorf("parsing unit rent: %w", err)
	}

	now := time.Now().UTC()

	// Occupy the unit. The status guard in the WHERE clause is the race
	// gate for two approvals targeting the same unit: the second one
	// matches zero rows and the transaction rolls back.
	result, err := tx.ExecContext(ctx,
		`UPDATE units SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(domain.UnitOccupied), now.Format(timeFormat),
		unitID, string(domain.UnitAvailable),
	)
	if err != nil {
		return domain.Lease{}, fmt.Errorf("occupying unit: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return domain.Lease{}, fmt.Errorf("checking rows affected: %w", err)
	} else if n == 0 {
		return domain.Lease{}, &domain.GuardError{
			Code:   domain.CodeUnitUnavailable,
			Reason: "unit is no longer available",
		}
	}

	lease := domain.NewLease(p.LeaseID, p.RequestID, unitID, userID, p.StartDate, p.EndDate, rent)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO leases (`+leaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lease.ID, lease.RequestID, lease.UnitID, lease.TenantUserID,
		lease.StartDate.Format(dateFormat), lease.EndDate.Format(dateFormat),
		lease.MonthlyRent.String(), string(lease.Status),
		lease.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// One-active-lease-per-unit backstop behind the status CAS.
			return domain.Lease{}, &domain.GuardError{
				Code:   domain.CodeUnitUnavailable,
				Reason: "unit already has an active lease",
			}
		}
		return domain.Lease{}, fmt.Errorf("inserting lease: %w", err)
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE rental_requests
		 SET status = ?, decision_date = ?, decided_by = ?, lease_id = ?
		 WHERE id = ? AND status = ?`,
		string(domain.StatusApproved), now.Format(timeFormat), p.AdminID, lease.ID,
		p.RequestID, string(domain.StatusPending),
	)
	if err != nil {
		return domain.Lease{}, fmt.Errorf("approving request: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return domain.Lease{}, fmt.Errorf("checking rows affected: %w", err)
	} else if n == 0 {
		return domain.Lease{}, &domain.GuardError{
			Code:   domain.CodeAlreadyDecided,
			Reason: "request was decided concurrently",
		}
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(domain.RoleVillager), now.Format(timeFormat), userID,
	)
	if err != nil {
		return domain.Lease{}, fmt.Errorf("promoting applicant: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return domain.Lease{}, fmt.Errorf("checking rows affected: %w", err)
	} else if n == 0 {
		return domain.Lease{}, domain.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return domain.Lease{}, fmt.Errorf("committing approval: %w", err)
	}

	return lease, nil
}

// Reject flips a pending request to rejected. The status guard in the
// WHERE clause settles concurrent decisions: zero rows affected means
// another admin got there first.
func (s *Store) Reject(ctx context.Context, p domain.RejectionParams) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE rental_requests
		 SET status = ?, decision_date = ?, decided_by = ?,
		     rejection_reason = ?, rejection_acknowledged = 0
		 WHERE id = ? AND status = ?`,
		string(domain.StatusRejected), time.Now().UTC().Format(timeFormat),
		p.AdminID, p.Reason,
		p.RequestID, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("rejecting request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetByID(ctx, p.RequestID); err != nil {
			return err
		}
		return &domain.GuardError{
			Code:   domain.CodeAlreadyDecided,
			Reason: "request was decided concurrently",
		}
	}

	return nil
}

// Terminate executes the reverse transition: lease terminated, unit
// released, tenant demoted, in one transaction. A unit that was moved to
// maintenance in the meantime stays in maintenance, and an admin-held
// lease never demotes the admin role.
func (s *Store) Terminate(ctx context.Context, leaseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning termination transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var unitID, tenantID, status string
	err = tx.QueryRowContext(ctx,
		`SELECT unit_id, tenant_user_id, status FROM leases WHERE id = ?`,
		leaseID,
	).Scan(&unitID, &tenantID, &status)
	if err == sql.ErrNoRows {
		return domain.ErrLeaseNotFound
	}
	if err != nil {
		return fmt.Errorf("loading lease for termination: %w", err)
	}
	if status != string(domain.LeaseActive) {
		return &domain.GuardError{
			Code:   domain.CodeLeaseNotActive,
			Reason: "lease is already terminated",
		}
	}

	now := time.Now().UTC().Format(timeFormat)

	result, err := tx.ExecContext(ctx,
		`UPDATE leases SET status = ? WHERE id = ? AND status = ?`,
		string(domain.LeaseTerminated), leaseID, string(domain.LeaseActive),
	)
	if err != nil {
		return fmt.Errorf("terminating lease: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	} else if n == 0 {
		return &domain.GuardError{
			Code:   domain.CodeLeaseNotActive,
			Reason: "lease was terminated concurrently",
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE units SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(domain.UnitAvailable), now, unitID, string(domain.UnitOccupied),
	)
	if err != nil {
		return fmt.Errorf("releasing unit: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ? AND role = ?`,
		string(domain.RoleUser), now, tenantID, string(domain.RoleVillager),
	)
	if err != nil {
		return fmt.Errorf("demoting tenant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing termination: %w", err)
	}

	return nil
}
