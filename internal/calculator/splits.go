// Package calculator holds the pure arithmetic of the ledger: split
// validation, balance aggregation, and settlement planning. Nothing here
// touches storage; every function works on values handed to it and is safe
// to call concurrently.
package calculator

import (
	"fmt"

	"github.com/tripsplit/ledger/internal/models"
)

// ValidateSplits enforces the split-sum invariant for one expense: every
// split references a distinct participant of the trip, every split amount is
// positive, and the amounts sum exactly to the expense amount. Amounts are
// integers in minor units, so the comparison is exact equality: no epsilon.
//
// The storage layer cannot enforce this cheaply, so it calls ValidateSplits
// inside the same transaction as the expense insert.
func ValidateSplits(amount int64, splits []models.ExpenseSplit, tripParticipants map[string]bool) error {
	if len(splits) == 0 {
		return models.ErrEmptySplits
	}

	seen := make(map[string]bool, len(splits))
	var sum int64
	for _, split := range splits {
		if split.Amount <= 0 {
			return fmt.Errorf("%w: split for %s is %d", models.ErrInvalidAmount, split.ParticipantID, split.Amount)
		}
		if !tripParticipants[split.ParticipantID] {
			return fmt.Errorf("%w: %s", models.ErrUnknownParticipant, split.ParticipantID)
		}
		if seen[split.ParticipantID] {
			return fmt.Errorf("%w: %s", models.ErrDuplicateSplit, split.ParticipantID)
		}
		seen[split.ParticipantID] = true
		sum += split.Amount
	}

	if sum != amount {
		return fmt.Errorf("%w: expected %d, got %d", models.ErrSplitMismatch, amount, sum)
	}
	return nil
}
