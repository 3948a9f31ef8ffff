package calculator

import (
	"sort"

	"github.com/tripsplit/ledger/internal/models"
)

// ComputeBalances derives every participant's net position from a snapshot of
// the trip's expenses and payments.
//
// For each participant:
//   - Paid: expenses where they are payer
//   - Owed: splits where they are responsible
//   - SettledPaid / SettledReceived: payments where they are payer / receiver
//   - Net = (Paid + SettledReceived) - (Owed + SettledPaid)
//
// Every trip participant gets a row, including those with no activity.
// Conservation: with only expenses recorded, the nets sum to zero, because
// every cent a payer fronts is owed by exactly the split participants.
//
// Output is ordered by participant ID ascending for reproducible results.
func ComputeBalances(participants []*models.Participant, expenses []*models.Expense, payments []*models.Payment) []models.Balance {
	byID := make(map[string]*models.Balance, len(participants))
	for _, p := range participants {
		byID[p.ID] = &models.Balance{ParticipantID: p.ID}
	}

	for _, e := range expenses {
		if b, ok := byID[e.PayerID]; ok {
			b.Paid += e.Amount
		}
		for _, s := range e.Splits {
			if b, ok := byID[s.ParticipantID]; ok {
				b.Owed += s.Amount
			}
		}
	}

	for _, p := range payments {
		if b, ok := byID[p.PayerID]; ok {
			b.SettledPaid += p.Amount
		}
		if b, ok := byID[p.ReceiverID]; ok {
			b.SettledReceived += p.Amount
		}
	}

	balances := make([]models.Balance, 0, len(byID))
	for _, b := range byID {
		b.Net = (b.Paid + b.SettledReceived) - (b.Owed + b.SettledPaid)
		balances = append(balances, *b)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].ParticipantID < balances[j].ParticipantID
	})
	return balances
}
