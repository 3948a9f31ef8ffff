// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/tripsplit/ledger/internal/models"
)

// Store defines the interface for ledger storage operations. This abstraction
// keeps the service layer independent of the storage backend (SQLite today,
// PostgreSQL later) and lets tests run against a temp database.
//
// All write methods are transactional: an expense and its splits commit
// together or not at all. Errors are the sentinel kinds from models, wrapped
// with context.
type Store interface {
	// CreateTrip persists a new trip. ID and timestamps are populated by
	// the store when absent.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by ID.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsByOwner retrieves all trips created by the given user,
	// newest first.
	ListTripsByOwner(ctx context.Context, ownerID string) ([]*models.Trip, error)

	// UpdateTripStatus moves a trip through its lifecycle and touches its
	// updated-at timestamp.
	UpdateTripStatus(ctx context.Context, tripID string, status models.TripStatus) error

	// DeleteTrip removes a trip and everything it owns: participants,
	// expenses, splits, payments.
	DeleteTrip(ctx context.Context, tripID string) error

	// AddParticipant adds a person to a trip. Fails with
	// ErrDuplicateParticipant if the trip already has this user or this
	// display name.
	AddParticipant(ctx context.Context, participant *models.Participant) error

	// GetParticipant retrieves a participant by ID.
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)

	// ListParticipants retrieves a trip's participants, ID ascending.
	ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error)

	// DeleteParticipant removes a participant with no financial history.
	// Fails with ErrParticipantInUse if they appear as expense payer,
	// split holder, or payment party.
	DeleteParticipant(ctx context.Context, participantID string) error

	// ClearParticipantUser drops the participant's link to a user account
	// while keeping the row, for when the account is removed.
	ClearParticipantUser(ctx context.Context, participantID string) error

	// CreateExpense persists an expense and its splits atomically. The
	// split-sum invariant is validated inside the same transaction, so a
	// concurrent reader never observes a broken expense. Fails with
	// ErrDuplicateClientID when the client identifier is already taken.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// GetExpenseByClientID retrieves an expense by its idempotency key.
	GetExpenseByClientID(ctx context.Context, clientID string) (*models.Expense, error)

	// ListExpenses retrieves a trip's expenses with splits, newest first.
	ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreatePayment persists a direct settlement between two participants.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPayments retrieves a trip's payments, newest first.
	ListPayments(ctx context.Context, tripID string) ([]*models.Payment, error)

	// DeletePayment removes a payment by ID.
	DeletePayment(ctx context.Context, paymentID string) error

	// Close releases any resources held by the store.
	Close() error
}
