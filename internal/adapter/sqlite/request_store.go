package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/villagio/leaseflow/internal/domain"
)

const requestColumns = `id, user_id, unit_id, full_name, email, phone, occupation,
	emergency_contact, lease_duration_months, status, request_date, decision_date,
	decided_by, rejection_reason, rejection_acknowledged, lease_id`

// Create inserts a pending rental request. A UNIQUE violation here can
// only come from the one-pending-per-user partial index, so it maps to
// the PENDING_EXISTS guard: the caller lost a submission race.
func (s *Store) Create(ctx context.Context, r domain.RentalRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rental_requests (`+requestColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, '', '', 0, '')`,
		r.ID, r.UserID, r.UnitID,
		r.Applicant.FullName, r.Applicant.Email, r.Applicant.Phone,
		r.Applicant.Occupation, r.Applicant.EmergencyContact,
		r.LeaseDurationMonths, string(r.Status),
		r.RequestDate.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.GuardError{
				Code:   domain.CodePendingExists,
				Reason: "a pending request already exists for this user",
			}
		}
		return fmt.Errorf("inserting rental request: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.RentalRequest, error) {
	return scanRequest(s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM rental_requests WHERE id = ?`, id,
	))
}

// LatestByUser returns the user's most recent request, ties broken by
// insertion order. Returns domain.ErrRequestNotFound when the user has
// never submitted.
func (s *Store) LatestByUser(ctx context.Context, userID string) (domain.RentalRequest, error) {
	return scanRequest(s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM rental_requests
		 WHERE user_id = ?
		 ORDER BY request_date DESC, rowid DESC
		 LIMIT 1`, userID,
	))
}

func (s *Store) List(ctx context.Context, filter domain.RequestFilter) ([]domain.RentalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM rental_requests`
	var args []any
	var where []string

	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.UserID != "" {
		where = append(where, `user_id = ?`)
		args = append(args, filter.UserID)
	}

	for i, cond := range where {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}

	query += ` ORDER BY request_date DESC, rowid DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rental requests: %w", err)
	}
	defer rows.Close()

	var out []domain.RentalRequest
	for rows.Next() {
		r, err := scanRequestFromRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// Acknowledge flips the acknowledgement flag on the user's rejected
// request. The WHERE clause makes the write idempotent: a repeat call
// matches the already-acknowledged row and succeeds without effect.
func (s *Store) Acknowledge(ctx context.Context, requestID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE rental_requests SET rejection_acknowledged = 1
		 WHERE id = ? AND user_id = ? AND status = ?`,
		requestID, userID, string(domain.StatusRejected),
	)
	if err != nil {
		return fmt.Errorf("acknowledging rejection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing or foreign request from one that is
		// simply not in the rejected state.
		r, err := s.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if r.UserID != userID {
			return domain.ErrRequestNotFound
		}
		return &domain.GuardError{
			Code:   domain.CodeNotRejected,
			Reason: "only a rejected request can be acknowledged",
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row *sql.Row) (domain.RentalRequest, error) {
	r, err := scanRequestRow(row)
	if err == sql.ErrNoRows {
		return domain.RentalRequest{}, domain.ErrRequestNotFound
	}
	return r, err
}

func scanRequestFromRows(rows *sql.Rows) (domain.RentalRequest, error) {
	return scanRequestRow(rows)
}

func scanRequestRow(row rowScanner) (domain.RentalRequest, error) {
	var r domain.RentalRequest
	var status, requestDate string
	var decisionDate sql.NullString
	var acknowledged int

	err := row.Scan(
		&r.ID, &r.UserID, &r.UnitID,
		&r.Applicant.FullName, &r.Applicant.Email, &r.Applicant.Phone,
		&r.Applicant.Occupation, &r.Applicant.EmergencyContact,
		&r.LeaseDurationMonths, &status, &requestDate, &decisionDate,
		&r.DecidedBy, &r.RejectionReason, &acknowledged, &r.LeaseID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.RentalRequest{}, err
		}
		return domain.RentalRequest{}, fmt.Errorf("scanning rental request: %w", err)
	}

	r.Status = domain.Status(status)
	r.RequestDate, _ = time.Parse(timeFormat, requestDate)
	if decisionDate.Valid {
		t, _ := time.Parse(timeFormat, decisionDate.String)
		r.DecisionDate = &t
	}
	r.RejectionAcknowledged = acknowledged != 0

	return r, nil
}
