package models

// Payment records a direct settlement transfer between two participants of
// the same trip: money that already changed hands outside the expense-split
// mechanism. Recording one reduces the group's imbalance.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// TripID is the trip this payment belongs to.
	TripID string

	// PayerID is the participant who handed over money (debtor settling up).
	PayerID string

	// ReceiverID is the participant who received it (creditor being paid).
	// Always distinct from PayerID.
	ReceiverID string

	// Amount in the smallest currency unit. Strictly positive.
	Amount int64

	// Date is the "YYYY-MM-DD" day the money moved.
	Date string

	// Note is an optional description ("venmo", "cash at airport").
	Note string

	// CreatedAt is a "YYYY-MM-DD HH:MM:SS" UTC timestamp.
	CreatedAt string
}
