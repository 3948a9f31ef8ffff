package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripsplit/ledger/internal/calculator"
	"github.com/tripsplit/ledger/internal/models"
)

// CreateExpense persists an expense and its splits atomically. The payer
// check and the split-sum invariant run inside the same transaction as the
// inserts, so a concurrent reader can never observe an expense whose splits
// do not add up.
//
// The unique index on client_id turns a racing retry of the same submission
// into a clean ErrDuplicateClientID instead of a check-then-act duplicate.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == "" {
		expense.CreatedAt = now()
	}
	expense.UpdatedAt = expense.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	members, err := tripParticipantSet(ctx, tx, expense.TripID)
	if err != nil {
		return err
	}
	if !members[expense.PayerID] {
		return fmt.Errorf("%w: %s", models.ErrUnknownPayer, expense.PayerID)
	}
	if err := calculator.ValidateSplits(expense.Amount, expense.Splits, members); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, payer_id, amount, currency, expense_date, category, client_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.TripID, expense.PayerID, expense.Amount, expense.Currency,
		expense.Date, nullable(expense.Category), nullable(expense.ClientID),
		expense.CreatedAt, expense.UpdatedAt,
	)
	if isUniqueViolation(err, "expenses.client_id") {
		return fmt.Errorf("%w: %s", models.ErrDuplicateClientID, expense.ClientID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, participant_id, amount) VALUES (?, ?, ?)",
			expense.ID, split.ParticipantID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, payer_id, amount, currency, expense_date, category, client_id, created_at, updated_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: expense %s", models.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpenseByClientID retrieves an expense by its idempotency key.
func (s *SQLiteStore) GetExpenseByClientID(ctx context.Context, clientID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, payer_id, amount, currency, expense_date, category, client_id, created_at, updated_at
		 FROM expenses WHERE client_id = ?`,
		clientID,
	)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: client id %s", models.ErrNotFound, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense by client id: %w", err)
	}

	if err := s.loadSplits(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves a trip's expenses with splits, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, payer_id, amount, currency, expense_date, category, client_id, created_at, updated_at
		 FROM expenses WHERE trip_id = ? ORDER BY expense_date DESC, created_at DESC, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadSplits(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", models.ErrNotFound, expenseID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// loadSplits attaches an expense's splits, participant ID ascending.
func (s *SQLiteStore) loadSplits(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY participant_id",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ParticipantID, &split.Amount); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

// tripParticipantSet loads the IDs of a trip's participants inside tx,
// verifying the trip itself exists first.
func tripParticipantSet(ctx context.Context, tx *sql.Tx, tripID string) (map[string]bool, error) {
	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM trips WHERE id = ?", tripID).Scan(&exists); err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: trip %s", models.ErrNotFound, tripID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check trip existence: %w", err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT id FROM participants WHERE trip_id = ?", tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip participants: %w", err)
	}
	defer rows.Close()

	members := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant id: %w", err)
		}
		members[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participant ids: %w", err)
	}
	return members, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var category, clientID sql.NullString
	err := row.Scan(&expense.ID, &expense.TripID, &expense.PayerID, &expense.Amount,
		&expense.Currency, &expense.Date, &category, &clientID,
		&expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return nil, err
	}
	expense.Category = category.String
	expense.ClientID = clientID.String
	return expense, nil
}
