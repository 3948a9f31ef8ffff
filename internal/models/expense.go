package models

// Expense is money fronted by one participant on behalf of several.
// An expense and its splits are persisted atomically: a reader never
// observes an expense whose splits do not sum to its amount.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the owning trip. Deleting the trip cascades to its expenses.
	TripID string

	// PayerID is the participant who paid. Must belong to the same trip.
	PayerID string

	// Amount is the total in the smallest currency unit. Strictly positive.
	Amount int64

	// Currency is the ISO-4217 code. Must match the trip's base currency;
	// this ledger has no conversion layer.
	Currency string

	// Date is the "YYYY-MM-DD" day the expense occurred.
	Date string

	// Category is optional metadata (e.g. "food", "transport"). Advisory
	// category suggestions from upstream tooling land here; it never
	// affects balance arithmetic.
	Category string

	// ClientID is an optional client-generated identifier, unique across
	// the whole system. Offline clients set it before first submission so
	// retries are recognized as the same logical expense.
	ClientID string

	// Splits is one entry per participant responsible for part of the
	// amount. The split amounts sum exactly to Amount.
	Splits []ExpenseSplit

	// CreatedAt and UpdatedAt are "YYYY-MM-DD HH:MM:SS" UTC timestamps.
	CreatedAt string
	UpdatedAt string
}

// ExpenseSplit assigns part of an expense to one participant's obligation.
type ExpenseSplit struct {
	// ParticipantID is the participant who owes this share.
	ParticipantID string

	// Amount owed, in the smallest currency unit. Strictly positive.
	Amount int64
}
