// Package service implements the write and read paths of the ledger on top
// of the storage layer: boundary validation, the sync idempotency guard, and
// the derived balance/settlement reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tripsplit/ledger/internal/calculator"
	"github.com/tripsplit/ledger/internal/models"
	"github.com/tripsplit/ledger/internal/storage"
)

const dateFormat = "2006-01-02"

// LedgerService orchestrates ledger operations against a storage backend.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// CreateTrip validates and persists a new trip.
func (s *LedgerService) CreateTrip(ctx context.Context, name, ownerID, baseCurrency, startDate, endDate string) (*models.Trip, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: trip name", models.ErrEmptyName)
	}
	if !validCurrency(baseCurrency) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCurrency, baseCurrency)
	}
	start, err := parseOptionalDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(endDate)
	if err != nil {
		return nil, err
	}
	if startDate != "" && endDate != "" && end.Before(start) {
		return nil, fmt.Errorf("%w: %s < %s", models.ErrInvalidDateRange, endDate, startDate)
	}

	trip := &models.Trip{
		Name:         name,
		OwnerID:      ownerID,
		BaseCurrency: baseCurrency,
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       models.TripActive,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}
	slog.Info("Trip created", "trip_id", trip.ID, "owner_id", ownerID, "currency", baseCurrency)
	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (s *LedgerService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return s.store.GetTrip(ctx, tripID)
}

// ListTrips retrieves the trips owned by a user.
func (s *LedgerService) ListTrips(ctx context.Context, ownerID string) ([]*models.Trip, error) {
	return s.store.ListTripsByOwner(ctx, ownerID)
}

// SetTripStatus moves a trip through its lifecycle. Only the owner may settle
// or archive a trip.
func (s *LedgerService) SetTripStatus(ctx context.Context, tripID, callerID string, status models.TripStatus) (*models.Trip, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.OwnerID != callerID {
		return nil, fmt.Errorf("%w: trip %s", models.ErrNotTripOwner, tripID)
	}
	if err := s.store.UpdateTripStatus(ctx, tripID, status); err != nil {
		return nil, err
	}
	slog.Info("Trip status changed", "trip_id", tripID, "status", status)
	return s.store.GetTrip(ctx, tripID)
}

// DeleteTrip removes a trip and everything it owns. Owner only.
func (s *LedgerService) DeleteTrip(ctx context.Context, tripID, callerID string) error {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.OwnerID != callerID {
		return fmt.Errorf("%w: trip %s", models.ErrNotTripOwner, tripID)
	}
	return s.store.DeleteTrip(ctx, tripID)
}

// AddParticipant adds a registered user or a guest to an active trip.
func (s *LedgerService) AddParticipant(ctx context.Context, tripID, userID, displayName string) (*models.Participant, error) {
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name", models.ErrEmptyName)
	}
	if err := s.requireActiveTrip(ctx, tripID); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		TripID:      tripID,
		UserID:      userID,
		DisplayName: displayName,
	}
	if err := s.store.AddParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// ListParticipants retrieves a trip's participants.
func (s *LedgerService) ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.store.ListParticipants(ctx, tripID)
}

// RemoveParticipant deletes a participant with no financial history.
func (s *LedgerService) RemoveParticipant(ctx context.Context, participantID string) error {
	return s.store.DeleteParticipant(ctx, participantID)
}

// UnlinkParticipantUser clears the participant's user-account link, for when
// the backing account is removed. The row and its history survive.
func (s *LedgerService) UnlinkParticipantUser(ctx context.Context, participantID string) error {
	return s.store.ClearParticipantUser(ctx, participantID)
}

// ExpenseSubmission is one logical expense as submitted by a client.
// ClientID, when set, makes the submission idempotent.
type ExpenseSubmission struct {
	TripID   string
	PayerID  string
	Amount   int64
	Currency string
	Date     string
	Category string
	ClientID string
	Splits   []models.ExpenseSplit
}

// SubmitExpense records an expense. The returned bool is true when a new
// expense was created and false when the submission replayed an earlier one.
//
// Idempotency: a submission with a ClientID that already exists returns the
// stored expense unchanged if the payload matches, or ErrConflictingRetry if
// it does not: the original record is never overwritten. A racing pair of
// retries is resolved by the store's unique client_id index: the loser gets
// ErrDuplicateClientID and re-reads the winner's row.
func (s *LedgerService) SubmitExpense(ctx context.Context, sub ExpenseSubmission) (*models.Expense, bool, error) {
	if sub.Amount <= 0 {
		return nil, false, fmt.Errorf("%w: %d", models.ErrInvalidAmount, sub.Amount)
	}
	if !validCurrency(sub.Currency) {
		return nil, false, fmt.Errorf("%w: %q", models.ErrInvalidCurrency, sub.Currency)
	}
	if _, err := time.Parse(dateFormat, sub.Date); err != nil {
		return nil, false, fmt.Errorf("%w: %q", models.ErrInvalidDate, sub.Date)
	}

	trip, err := s.store.GetTrip(ctx, sub.TripID)
	if err != nil {
		return nil, false, err
	}
	if trip.Status != models.TripActive {
		return nil, false, fmt.Errorf("%w: trip %s is %s", models.ErrTripNotActive, trip.ID, trip.Status)
	}
	if sub.Currency != trip.BaseCurrency {
		return nil, false, fmt.Errorf("%w: %s != %s", models.ErrCurrencyMismatch, sub.Currency, trip.BaseCurrency)
	}

	if sub.ClientID != "" {
		existing, err := s.store.GetExpenseByClientID(ctx, sub.ClientID)
		if err == nil {
			return s.resolveRetry(existing, sub)
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, false, err
		}
	}

	expense := &models.Expense{
		TripID:   sub.TripID,
		PayerID:  sub.PayerID,
		Amount:   sub.Amount,
		Currency: sub.Currency,
		Date:     sub.Date,
		Category: sub.Category,
		ClientID: sub.ClientID,
		Splits:   sub.Splits,
	}
	err = s.store.CreateExpense(ctx, expense)
	if errors.Is(err, models.ErrDuplicateClientID) {
		// Lost the race against another retry of the same submission.
		existing, getErr := s.store.GetExpenseByClientID(ctx, sub.ClientID)
		if getErr != nil {
			return nil, false, getErr
		}
		return s.resolveRetry(existing, sub)
	}
	if err != nil {
		return nil, false, err
	}

	slog.Info("Expense recorded",
		"trip_id", expense.TripID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"splits", len(expense.Splits),
	)
	return expense, true, nil
}

// resolveRetry decides whether a submission that hit an existing client id is
// a harmless replay or a client bug.
func (s *LedgerService) resolveRetry(existing *models.Expense, sub ExpenseSubmission) (*models.Expense, bool, error) {
	if !samePayload(existing, sub) {
		slog.Warn("Conflicting retry rejected", "client_id", sub.ClientID, "expense_id", existing.ID)
		return nil, false, fmt.Errorf("%w: %s", models.ErrConflictingRetry, sub.ClientID)
	}
	slog.Debug("Idempotent replay", "client_id", sub.ClientID, "expense_id", existing.ID)
	return existing, false, nil
}

// samePayload reports whether a retried submission describes the same logical
// expense as the stored one: payer, amount, currency, date, and the full
// split set. Category is metadata and does not participate.
func samePayload(existing *models.Expense, sub ExpenseSubmission) bool {
	if existing.TripID != sub.TripID ||
		existing.PayerID != sub.PayerID ||
		existing.Amount != sub.Amount ||
		existing.Currency != sub.Currency ||
		existing.Date != sub.Date ||
		len(existing.Splits) != len(sub.Splits) {
		return false
	}

	a := append([]models.ExpenseSplit(nil), existing.Splits...)
	b := append([]models.ExpenseSplit(nil), sub.Splits...)
	sort.Slice(a, func(i, j int) bool { return a[i].ParticipantID < a[j].ParticipantID })
	sort.Slice(b, func(i, j int) bool { return b[i].ParticipantID < b[j].ParticipantID })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetExpense retrieves an expense with its splits.
func (s *LedgerService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpenses retrieves a trip's expenses.
func (s *LedgerService) ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, tripID)
}

// RecordPayment records a direct settlement transfer between two distinct
// participants of an active trip.
func (s *LedgerService) RecordPayment(ctx context.Context, tripID, payerID, receiverID string, amount int64, date, note string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidAmount, amount)
	}
	if payerID == receiverID {
		return nil, fmt.Errorf("%w: %s", models.ErrSelfPayment, payerID)
	}
	if _, err := time.Parse(dateFormat, date); err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDate, date)
	}
	if err := s.requireActiveTrip(ctx, tripID); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TripID:     tripID,
		PayerID:    payerID,
		ReceiverID: receiverID,
		Amount:     amount,
		Date:       date,
		Note:       note,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	slog.Info("Payment recorded",
		"trip_id", tripID,
		"payment_id", payment.ID,
		"from", payerID,
		"to", receiverID,
		"amount", amount,
	)
	return payment, nil
}

// ListPayments retrieves a trip's payments.
func (s *LedgerService) ListPayments(ctx context.Context, tripID string) ([]*models.Payment, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, tripID)
}

// Balances computes each participant's net position from the current ledger
// state. Pure read; reflects whatever snapshot the store provides.
func (s *LedgerService) Balances(ctx context.Context, tripID string) ([]models.Balance, error) {
	participants, expenses, payments, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeBalances(participants, expenses, payments), nil
}

// SettlementPlan suggests transfers that would zero every net position.
// Advisory only: applying a suggestion means calling RecordPayment.
func (s *LedgerService) SettlementPlan(ctx context.Context, tripID string) ([]models.Transfer, error) {
	balances, err := s.Balances(ctx, tripID)
	if err != nil {
		return nil, err
	}
	plan, err := calculator.PlanSettlement(balances)
	if err != nil {
		slog.Error("Settlement planning refused", "trip_id", tripID, "error", err)
		return nil, err
	}
	return plan, nil
}

// snapshot loads the three collections the derived reads work from.
func (s *LedgerService) snapshot(ctx context.Context, tripID string) ([]*models.Participant, []*models.Expense, []*models.Payment, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, nil, nil, err
	}
	participants, err := s.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, tripID)
	if err != nil {
		return nil, nil, nil, err
	}
	payments, err := s.store.ListPayments(ctx, tripID)
	if err != nil {
		return nil, nil, nil, err
	}
	return participants, expenses, payments, nil
}

func (s *LedgerService) requireActiveTrip(ctx context.Context, tripID string) error {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.Status != models.TripActive {
		return fmt.Errorf("%w: trip %s is %s", models.ErrTripNotActive, trip.ID, trip.Status)
	}
	return nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func parseOptionalDate(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidDate, date)
	}
	return t, nil
}
