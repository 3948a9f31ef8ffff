package models

// Balance is a participant's net position within a trip, recomputed on demand
// from the ledger: it is never persisted, so it is always consistent with
// the latest writes.
//
// Net = (Paid + SettledReceived) - (Owed + SettledPaid). Positive means the
// participant is owed money; negative means they owe.
type Balance struct {
	// ParticipantID identifies whose position this is.
	ParticipantID string

	// Paid is the sum of expense amounts this participant fronted as payer.
	Paid int64

	// Owed is the sum of this participant's shares across all splits.
	Owed int64

	// SettledPaid is the sum of payments this participant made.
	SettledPaid int64

	// SettledReceived is the sum of payments this participant received.
	SettledReceived int64

	// Net is the overall position. For a trip with only expenses recorded,
	// the nets of all participants sum to zero.
	Net int64
}

// Transfer is one suggested settlement payment: From pays To the Amount.
// Transfers are advisory output of the settlement planner; applying one means
// explicitly recording a Payment.
type Transfer struct {
	From   string
	To     string
	Amount int64
}
