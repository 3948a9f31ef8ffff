package models

import "errors"

// Error kinds for the ledger. Callers match with errors.Is; lower layers wrap
// these with context via fmt.Errorf("%w: ...").
var (
	// ErrNotFound reports a missing trip, participant, expense, or payment.
	ErrNotFound = errors.New("not found")

	// Validation errors: rejected synchronously at the write boundary,
	// never partially applied.

	// ErrInvalidAmount reports a zero or negative monetary amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrEmptyName reports a missing trip name or participant display name.
	ErrEmptyName = errors.New("name is required")

	// ErrInvalidCurrency reports a currency code that is not 3 letters.
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")

	// ErrCurrencyMismatch reports an expense or payment whose currency
	// differs from the trip's base currency. Trips are single-currency;
	// there is no conversion layer.
	ErrCurrencyMismatch = errors.New("currency does not match trip base currency")

	// ErrInvalidDate reports a date that is not valid "YYYY-MM-DD".
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidDateRange reports a trip whose end date precedes its start.
	ErrInvalidDateRange = errors.New("end date before start date")

	// ErrInvalidStatus reports an unknown trip status value.
	ErrInvalidStatus = errors.New("invalid trip status")

	// ErrSplitMismatch reports splits that do not sum to the expense
	// amount. Wrapped with the expected and actual totals.
	ErrSplitMismatch = errors.New("split amounts do not sum to expense amount")

	// ErrEmptySplits reports an expense submitted with no splits at all.
	ErrEmptySplits = errors.New("expense must have at least one split")

	// ErrDuplicateSplit reports the same participant appearing twice in one
	// expense's split set.
	ErrDuplicateSplit = errors.New("duplicate participant in splits")

	// ErrSelfPayment reports a payment whose payer and receiver are the
	// same participant.
	ErrSelfPayment = errors.New("payer and receiver must differ")

	// Integrity errors: a specific referential constraint was violated.

	// ErrUnknownPayer reports a payer that is not a participant of the trip.
	ErrUnknownPayer = errors.New("payer is not a participant of the trip")

	// ErrUnknownParticipant reports a split or payment referencing a
	// participant outside the trip.
	ErrUnknownParticipant = errors.New("participant does not belong to the trip")

	// ErrDuplicateParticipant reports a second membership for the same
	// user or the same display name within one trip.
	ErrDuplicateParticipant = errors.New("participant already in trip")

	// ErrParticipantInUse blocks deleting a participant who appears in
	// financial history (as payer, split holder, or payment party). Clear
	// the user link instead.
	ErrParticipantInUse = errors.New("participant referenced by financial history")

	// ErrNotTripOwner reports a status change or deletion attempted by
	// someone other than the trip's owner.
	ErrNotTripOwner = errors.New("caller is not the trip owner")

	// ErrTripNotActive rejects writes to a settled or archived trip.
	ErrTripNotActive = errors.New("trip is not active")

	// Idempotency errors.

	// ErrDuplicateClientID is returned by the store when an insert hits the
	// unique client_id index. The service resolves it into a replay or a
	// ErrConflictingRetry; handlers never see it.
	ErrDuplicateClientID = errors.New("client id already used")

	// ErrConflictingRetry reports two different expense payloads submitted
	// under the same client id. The original record is kept untouched.
	ErrConflictingRetry = errors.New("conflicting payload for client id")

	// Consistency errors.

	// ErrUnbalancedLedger reports net balances that do not sum to zero.
	// The settlement planner refuses to run rather than guess; this
	// indicates a bug upstream, not bad user input.
	ErrUnbalancedLedger = errors.New("net balances do not sum to zero")
)
