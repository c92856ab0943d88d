package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/villagio/leaseflow/internal/domain"
)

// CreateUnit inserts a unit into the registry. Used by seeding and tests;
// unit CRUD proper belongs to the inventory surface, not this service.
func (s *Store) CreateUnit(ctx context.Context, u domain.Unit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO units (id, name, status, monthly_rent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, string(u.Status), u.MonthlyRent.String(),
		u.CreatedAt.Format(timeFormat), u.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting unit: %w", err)
	}
	return nil
}

func (s *Store) GetUnit(ctx context.Context, id string) (domain.Unit, error) {
	var u domain.Unit
	var status, rent, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, status, monthly_rent, created_at, updated_at
		 FROM units WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &status, &rent, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Unit{}, domain.ErrUnitNotFound
		}
		return domain.Unit{}, fmt.Errorf("scanning unit: %w", err)
	}

	u.Status = domain.UnitStatus(status)
	u.MonthlyRent, err = decimal.NewFromString(rent)
	if err != nil {
		return domain.Unit{}, fmt.Errorf("parsing unit rent: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	u.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return u, nil
}

// SetUnitStatus updates a unit's status outside the decision transitions,
// e.g. for maintenance scheduling.
func (s *Store) SetUnitStatus(ctx context.Context, id string, status domain.UnitStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE units SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("updating unit status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUnitNotFound
	}

	return nil
}
