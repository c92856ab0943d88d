package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/villagio/leaseflow/internal/domain"
)

const leaseColumns = `id, request_id, unit_id, tenant_user_id, start_date, end_date,
	monthly_rent, status, created_at`

func (s *Store) GetLease(ctx context.Context, id string) (domain.Lease, error) {
	return scanLease(s.db.QueryRowContext(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE id = ?`, id,
	))
}

// ActiveLeaseForUnit returns the active lease on a unit, or
// domain.ErrLeaseNotFound when the unit is not leased.
func (s *Store) ActiveLeaseForUnit(ctx context.Context, unitID string) (domain.Lease, error) {
	return scanLease(s.db.QueryRowContext(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE unit_id = ? AND status = ?`,
		unitID, string(domain.LeaseActive),
	))
}

func scanLease(row *sql.Row) (domain.Lease, error) {
	var l domain.Lease
	var start, end, rent, status, createdAt string

	err := row.Scan(
		&l.ID, &l.RequestID, &l.UnitID, &l.TenantUserID,
		&start, &end, &rent, &status, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Lease{}, domain.ErrLeaseNotFound
		}
		return domain.Lease{}, fmt.Errorf("scanning lease: %w", err)
	}

	l.StartDate, _ = time.Parse(dateFormat, start)
	l.EndDate, _ = time.Parse(dateFormat, end)
	l.MonthlyRent, err = decimal.NewFromString(rent)
	if err != nil {
		return domain.Lease{}, fmt.Errorf("parsing lease rent: %w", err)
	}
	l.Status = domain.LeaseStatus(status)
	l.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return l, nil
}
