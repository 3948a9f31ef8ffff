package models

// Participant is a person scoped to one trip. A participant is either backed
// by a registered user account (UserID set) or a guest known only by name.
//
// Uniqueness: one row per (trip, user) and per (trip, display name), so the
// same person cannot join a trip twice under either identity.
//
// If the backing user account is removed, the participant row survives for
// historical integrity: only the UserID link is cleared.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// TripID is the trip this participant belongs to.
	TripID string

	// UserID links to a registered user account. Empty for guests and for
	// participants whose account was later removed.
	UserID string

	// DisplayName is how this person appears within the trip.
	DisplayName string

	// CreatedAt is a "YYYY-MM-DD HH:MM:SS" UTC timestamp.
	CreatedAt string
}
