package calculator

import (
	"fmt"

	"github.com/tripsplit/ledger/internal/models"
)

// position is one side of the settlement matching: a participant and how
// much of their imbalance is still unsettled (always kept positive).
type position struct {
	id        string
	remaining int64
}

// PlanSettlement produces a sequence of transfers that zeroes every
// participant's net position. Input nets must sum to zero (the aggregator's
// conservation guarantee); otherwise the planner refuses with
// ErrUnbalancedLedger rather than produce a wrong plan.
//
// Greedy debt simplification: repeatedly match the creditor with the largest
// remaining claim against the debtor with the largest remaining debt, move
// the smaller of the two magnitudes, and drop whichever side hits zero. Ties
// break by participant ID ascending, so output is deterministic. The plan has
// at most n-1 transfers for n non-zero participants; it is not guaranteed to
// be the global minimum, which is a harder matching problem.
//
// The plan is advisory: nothing is written anywhere. Applying a suggestion
// means recording a payment for it.
func PlanSettlement(balances []models.Balance) ([]models.Transfer, error) {
	var creditors, debtors []position
	var total int64
	for _, b := range balances {
		total += b.Net
		switch {
		case b.Net > 0:
			creditors = append(creditors, position{id: b.ParticipantID, remaining: b.Net})
		case b.Net < 0:
			debtors = append(debtors, position{id: b.ParticipantID, remaining: -b.Net})
		}
	}
	if total != 0 {
		return nil, fmt.Errorf("%w: off by %d", models.ErrUnbalancedLedger, total)
	}

	var plan []models.Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := creditors[ci].remaining
		if debtors[di].remaining < amount {
			amount = debtors[di].remaining
		}

		plan = append(plan, models.Transfer{
			From:   debtors[di].id,
			To:     creditors[ci].id,
			Amount: amount,
		})

		creditors[ci].remaining -= amount
		debtors[di].remaining -= amount
		if creditors[ci].remaining == 0 {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtors[di].remaining == 0 {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	return plan, nil
}

// largest returns the index of the position with the biggest remaining
// amount, breaking ties by participant ID ascending.
func largest(positions []position) int {
	best := 0
	for i := 1; i < len(positions); i++ {
		if positions[i].remaining > positions[best].remaining ||
			(positions[i].remaining == positions[best].remaining && positions[i].id < positions[best].id) {
			best = i
		}
	}
	return best
}
