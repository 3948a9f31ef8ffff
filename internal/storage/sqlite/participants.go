package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripsplit/ledger/internal/models"
)

// AddParticipant adds a person to a trip. The unique indexes on
// (trip, user) and (trip, display name) reject duplicate membership.
func (s *SQLiteStore) AddParticipant(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.New().String()
	}
	if participant.CreatedAt == "" {
		participant.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, trip_id, user_id, display_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		participant.ID, participant.TripID, nullable(participant.UserID),
		participant.DisplayName, participant.CreatedAt,
	)
	// The only unique constraints on this insert are the two membership
	// ones, so any unique violation is a duplicate. The (trip, user) index
	// reports by index name, not column, hence the broad match.
	if isUniqueViolation(err, "") {
		return fmt.Errorf("%w: %s", models.ErrDuplicateParticipant, participant.DisplayName)
	}
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	participant := &models.Participant{}
	var userID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, user_id, display_name, created_at
		 FROM participants WHERE id = ?`,
		participantID,
	).Scan(&participant.ID, &participant.TripID, &userID, &participant.DisplayName, &participant.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: participant %s", models.ErrNotFound, participantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	participant.UserID = userID.String
	return participant, nil
}

// ListParticipants retrieves a trip's participants, ID ascending.
func (s *SQLiteStore) ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, user_id, display_name, created_at
		 FROM participants WHERE trip_id = ? ORDER BY id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		participant := &models.Participant{}
		var userID sql.NullString
		if err := rows.Scan(&participant.ID, &participant.TripID, &userID,
			&participant.DisplayName, &participant.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participant.UserID = userID.String
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// DeleteParticipant removes a participant, but only one with no financial
// history: anyone referenced as expense payer, split holder, or payment
// party stays, to keep the ledger's past intact.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, participantID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM participants WHERE id = ?", participantID).Scan(&exists); err == sql.ErrNoRows {
		return fmt.Errorf("%w: participant %s", models.ErrNotFound, participantID)
	} else if err != nil {
		return fmt.Errorf("failed to check participant existence: %w", err)
	}

	var references int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM expenses WHERE payer_id = ?)
		      + (SELECT COUNT(*) FROM expense_splits WHERE participant_id = ?)
		      + (SELECT COUNT(*) FROM payments WHERE payer_id = ? OR receiver_id = ?)`,
		participantID, participantID, participantID, participantID,
	).Scan(&references)
	if err != nil {
		return fmt.Errorf("failed to count participant references: %w", err)
	}
	if references > 0 {
		return fmt.Errorf("%w: participant %s", models.ErrParticipantInUse, participantID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", participantID); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearParticipantUser drops the link to a removed user account while
// preserving the participant row and all its history.
func (s *SQLiteStore) ClearParticipantUser(ctx context.Context, participantID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE participants SET user_id = NULL WHERE id = ?",
		participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear participant user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: participant %s", models.ErrNotFound, participantID)
	}
	return nil
}
