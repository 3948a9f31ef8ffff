package models

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	// TripActive accepts new participants, expenses, and payments.
	TripActive TripStatus = "active"

	// TripSettled marks a trip whose balances have been squared away.
	// The ledger keeps the history but rejects further writes.
	TripSettled TripStatus = "settled"

	// TripArchived hides a trip from active views. Read-only, like settled.
	TripArchived TripStatus = "archived"
)

// Valid reports whether s is one of the known trip statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripActive, TripSettled, TripArchived:
		return true
	}
	return false
}

// Trip groups participants, expenses, and payments under one base currency.
// A trip is never physically deleted while hiding it from users; archiving
// is the soft form, deletion cascades to everything the trip owns.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name (e.g. "Lisbon 2026").
	Name string

	// OwnerID identifies the user who created the trip. Only the owner may
	// change the trip's status or delete it.
	OwnerID string

	// BaseCurrency is the ISO-4217 code all amounts in this trip share.
	BaseCurrency string

	// StartDate and EndDate are optional "YYYY-MM-DD" bounds.
	// When both are set, EndDate >= StartDate.
	StartDate string
	EndDate   string

	// Status is the lifecycle state: active, settled, or archived.
	Status TripStatus

	// CreatedAt and UpdatedAt are "YYYY-MM-DD HH:MM:SS" UTC timestamps.
	// UpdatedAt is touched explicitly by every store update.
	CreatedAt string
	UpdatedAt string
}
