package calculator

import (
	"testing"

	"github.com/tripsplit/ledger/internal/models"
)

func participants(ids ...string) []*models.Participant {
	out := make([]*models.Participant, len(ids))
	for i, id := range ids {
		out[i] = &models.Participant{ID: id, TripID: "trip", DisplayName: id}
	}
	return out
}

func TestComputeBalances_WorkedExample(t *testing.T) {
	// A pays 3000 split evenly three ways; B pays 1200 split A=600, B=600.
	expenses := []*models.Expense{
		{
			PayerID: "a", Amount: 3000,
			Splits: []models.ExpenseSplit{
				{ParticipantID: "a", Amount: 1000},
				{ParticipantID: "b", Amount: 1000},
				{ParticipantID: "c", Amount: 1000},
			},
		},
		{
			PayerID: "b", Amount: 1200,
			Splits: []models.ExpenseSplit{
				{ParticipantID: "a", Amount: 600},
				{ParticipantID: "b", Amount: 600},
			},
		},
	}

	balances := ComputeBalances(participants("a", "b", "c"), expenses, nil)
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}

	want := map[string]models.Balance{
		"a": {ParticipantID: "a", Paid: 3000, Owed: 1600, Net: 1400},
		"b": {ParticipantID: "b", Paid: 1200, Owed: 1600, Net: -400},
		"c": {ParticipantID: "c", Paid: 0, Owed: 1000, Net: -1000},
	}
	for _, got := range balances {
		w := want[got.ParticipantID]
		if got != w {
			t.Errorf("balance for %s = %+v, want %+v", got.ParticipantID, got, w)
		}
	}
}

func TestComputeBalances_NetsSumToZero(t *testing.T) {
	// Conservation: expenses only, arbitrary splits that each sum to the
	// expense total. Every cent fronted is owed by someone.
	expenses := []*models.Expense{
		{PayerID: "a", Amount: 777, Splits: []models.ExpenseSplit{
			{ParticipantID: "b", Amount: 300},
			{ParticipantID: "c", Amount: 477},
		}},
		{PayerID: "c", Amount: 1201, Splits: []models.ExpenseSplit{
			{ParticipantID: "a", Amount: 400},
			{ParticipantID: "b", Amount: 400},
			{ParticipantID: "c", Amount: 401},
		}},
		{PayerID: "b", Amount: 50, Splits: []models.ExpenseSplit{
			{ParticipantID: "b", Amount: 50},
		}},
	}

	balances := ComputeBalances(participants("a", "b", "c"), expenses, nil)
	var sum int64
	for _, b := range balances {
		sum += b.Net
	}
	if sum != 0 {
		t.Errorf("nets sum to %d, want 0", sum)
	}
}

func TestComputeBalances_PaymentsShiftNets(t *testing.T) {
	expenses := []*models.Expense{
		{PayerID: "a", Amount: 1000, Splits: []models.ExpenseSplit{
			{ParticipantID: "a", Amount: 500},
			{ParticipantID: "b", Amount: 500},
		}},
	}
	payments := []*models.Payment{
		{PayerID: "b", ReceiverID: "a", Amount: 500},
	}

	balances := ComputeBalances(participants("a", "b"), expenses, payments)
	for _, b := range balances {
		if b.Net != 0 {
			t.Errorf("after settling, %s net = %d, want 0", b.ParticipantID, b.Net)
		}
	}

	// The components should still show the full history.
	if balances[0].ParticipantID != "a" || balances[0].SettledReceived != 500 {
		t.Errorf("a settledReceived = %d, want 500", balances[0].SettledReceived)
	}
	if balances[1].ParticipantID != "b" || balances[1].SettledPaid != 500 {
		t.Errorf("b settledPaid = %d, want 500", balances[1].SettledPaid)
	}
}

func TestComputeBalances_InactiveParticipantGetsZeroRow(t *testing.T) {
	balances := ComputeBalances(participants("a", "b"), nil, nil)
	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2", len(balances))
	}
	for _, b := range balances {
		if b.Net != 0 || b.Paid != 0 || b.Owed != 0 {
			t.Errorf("idle participant %s has nonzero balance %+v", b.ParticipantID, b)
		}
	}
}

func TestComputeBalances_OrderedByParticipantID(t *testing.T) {
	balances := ComputeBalances(participants("zed", "amy", "mia"), nil, nil)
	for i := 1; i < len(balances); i++ {
		if balances[i-1].ParticipantID >= balances[i].ParticipantID {
			t.Fatalf("balances not sorted: %s before %s", balances[i-1].ParticipantID, balances[i].ParticipantID)
		}
	}
}
