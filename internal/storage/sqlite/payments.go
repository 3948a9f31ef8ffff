package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripsplit/ledger/internal/models"
)

// CreatePayment persists a direct settlement transfer. Both parties must be
// participants of the trip; that is checked here so a payment can never
// reference someone outside the group.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == "" {
		payment.CreatedAt = now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	members, err := tripParticipantSet(ctx, tx, payment.TripID)
	if err != nil {
		return err
	}
	if !members[payment.PayerID] {
		return fmt.Errorf("%w: payer %s", models.ErrUnknownParticipant, payment.PayerID)
	}
	if !members[payment.ReceiverID] {
		return fmt.Errorf("%w: receiver %s", models.ErrUnknownParticipant, payment.ReceiverID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, trip_id, payer_id, receiver_id, amount, payment_date, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.TripID, payment.PayerID, payment.ReceiverID,
		payment.Amount, payment.Date, nullable(payment.Note), payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListPayments retrieves a trip's payments, newest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, tripID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, payer_id, receiver_id, amount, payment_date, note, created_at
		 FROM payments WHERE trip_id = ? ORDER BY payment_date DESC, created_at DESC, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var note sql.NullString
		if err := rows.Scan(&payment.ID, &payment.TripID, &payment.PayerID, &payment.ReceiverID,
			&payment.Amount, &payment.Date, &note, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Note = note.String
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// DeletePayment removes a payment by ID.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: payment %s", models.ErrNotFound, paymentID)
	}
	return nil
}
