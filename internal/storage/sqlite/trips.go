package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripsplit/ledger/internal/models"
)

// CreateTrip persists a new trip to the database.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.Status == "" {
		trip.Status = models.TripActive
	}
	if trip.CreatedAt == "" {
		trip.CreatedAt = now()
	}
	trip.UpdatedAt = trip.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, name, owner_id, base_currency, start_date, end_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID, trip.Name, trip.OwnerID, trip.BaseCurrency,
		nullable(trip.StartDate), nullable(trip.EndDate), string(trip.Status),
		trip.CreatedAt, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, base_currency, start_date, end_date, status, created_at, updated_at
		 FROM trips WHERE id = ?`,
		tripID,
	)
	trip, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: trip %s", models.ErrNotFound, tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// ListTripsByOwner retrieves all trips created by the given user, newest first.
func (s *SQLiteStore) ListTripsByOwner(ctx context.Context, ownerID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_id, base_currency, start_date, end_date, status, created_at, updated_at
		 FROM trips WHERE owner_id = ? ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// UpdateTripStatus moves a trip through its lifecycle. The updated-at
// timestamp is touched explicitly here rather than by a trigger.
func (s *SQLiteStore) UpdateTripStatus(ctx context.Context, tripID string, status models.TripStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE trips SET status = ?, updated_at = ? WHERE id = ?",
		string(status), now(), tripID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: trip %s", models.ErrNotFound, tripID)
	}
	return nil
}

// DeleteTrip removes a trip and everything it owns. Children go first, in
// dependency order, inside one transaction.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM trips WHERE id = ?", tripID).Scan(&exists); err == sql.ErrNoRows {
		return fmt.Errorf("%w: trip %s", models.ErrNotFound, tripID)
	} else if err != nil {
		return fmt.Errorf("failed to check trip existence: %w", err)
	}

	for _, stmt := range []string{
		"DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE trip_id = ?)",
		"DELETE FROM expenses WHERE trip_id = ?",
		"DELETE FROM payments WHERE trip_id = ?",
		"DELETE FROM participants WHERE trip_id = ?",
		"DELETE FROM trips WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, tripID); err != nil {
			return fmt.Errorf("failed to delete trip data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(row scanner) (*models.Trip, error) {
	trip := &models.Trip{}
	var start, end sql.NullString
	var status string
	err := row.Scan(&trip.ID, &trip.Name, &trip.OwnerID, &trip.BaseCurrency,
		&start, &end, &status, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return nil, err
	}
	trip.StartDate = start.String
	trip.EndDate = end.String
	trip.Status = models.TripStatus(status)
	return trip, nil
}
