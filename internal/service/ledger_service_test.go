package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tripsplit/ledger/internal/models"
	"github.com/tripsplit/ledger/internal/storage/sqlite"
)

func newTestService(t *testing.T) *LedgerService {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewLedgerService(store)
}

// setupTrip creates a USD trip with three participants and returns their IDs.
func setupTrip(t *testing.T, svc *LedgerService) (tripID, a, b, c string) {
	t.Helper()
	ctx := context.Background()
	trip, err := svc.CreateTrip(ctx, "Lisbon", "owner-1", "USD", "", "")
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	names := []string{"A", "B", "C"}
	ids := make([]string, 3)
	for i, name := range names {
		p, err := svc.AddParticipant(ctx, trip.ID, "", name)
		if err != nil {
			t.Fatalf("AddParticipant(%s) failed: %v", name, err)
		}
		ids[i] = p.ID
	}
	return trip.ID, ids[0], ids[1], ids[2]
}

func splitsFor(pairs map[string]int64) []models.ExpenseSplit {
	var out []models.ExpenseSplit
	for id, amount := range pairs {
		out = append(out, models.ExpenseSplit{ParticipantID: id, Amount: amount})
	}
	return out
}

func TestCreateTrip_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		currency string
		start    string
		end      string
		wantErr  error
	}{
		{"lowercase currency", "usd", "", "", models.ErrInvalidCurrency},
		{"short currency", "US", "", "", models.ErrInvalidCurrency},
		{"numeric currency", "US1", "", "", models.ErrInvalidCurrency},
		{"end before start", "USD", "2026-07-10", "2026-07-01", models.ErrInvalidDateRange},
		{"malformed date", "USD", "July 1", "", models.ErrInvalidDate},
		{"valid with dates", "EUR", "2026-07-01", "2026-07-10", nil},
		{"valid same-day range", "EUR", "2026-07-01", "2026-07-01", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTrip(ctx, "Trip", "owner", tt.currency, tt.start, tt.end)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CreateTrip failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetTripStatus_OwnerOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, _, _, _ := setupTrip(t, svc)

	if _, err := svc.SetTripStatus(ctx, tripID, "intruder", models.TripSettled); !errors.Is(err, models.ErrNotTripOwner) {
		t.Fatalf("got %v, want ErrNotTripOwner", err)
	}

	trip, err := svc.SetTripStatus(ctx, tripID, "owner-1", models.TripSettled)
	if err != nil {
		t.Fatalf("SetTripStatus failed: %v", err)
	}
	if trip.Status != models.TripSettled {
		t.Errorf("status = %s, want settled", trip.Status)
	}

	// Writes to a settled trip are rejected.
	_, _, err = svc.SubmitExpense(ctx, ExpenseSubmission{
		TripID: tripID, PayerID: "whoever", Amount: 100, Currency: "USD", Date: "2026-07-01",
		Splits: []models.ExpenseSplit{{ParticipantID: "whoever", Amount: 100}},
	})
	if !errors.Is(err, models.ErrTripNotActive) {
		t.Errorf("got %v, want ErrTripNotActive", err)
	}
}

func TestSubmitExpense_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, a, b, _ := setupTrip(t, svc)

	tests := []struct {
		name    string
		sub     ExpenseSubmission
		wantErr error
	}{
		{
			"zero amount",
			ExpenseSubmission{TripID: tripID, PayerID: a, Amount: 0, Currency: "USD", Date: "2026-07-01",
				Splits: splitsFor(map[string]int64{a: 0})},
			models.ErrInvalidAmount,
		},
		{
			"negative amount",
			ExpenseSubmission{TripID: tripID, PayerID: a, Amount: -500, Currency: "USD", Date: "2026-07-01",
				Splits: splitsFor(map[string]int64{a: -500})},
			models.ErrInvalidAmount,
		},
		{
			"currency mismatch with trip",
			ExpenseSubmission{TripID: tripID, PayerID: a, Amount: 100, Currency: "EUR", Date: "2026-07-01",
				Splits: splitsFor(map[string]int64{a: 100})},
			models.ErrCurrencyMismatch,
		},
		{
			"bad date",
			ExpenseSubmission{TripID: tripID, PayerID: a, Amount: 100, Currency: "USD", Date: "01/07/2026",
				Splits: splitsFor(map[string]int64{a: 100})},
			models.ErrInvalidDate,
		},
		{
			"split mismatch",
			ExpenseSubmission{TripID: tripID, PayerID: a, Amount: 100, Currency: "USD", Date: "2026-07-01",
				Splits: splitsFor(map[string]int64{a: 50, b: 49})},
			models.ErrSplitMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SubmitExpense(ctx, tt.sub)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmitExpense_Idempotency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, a, b, _ := setupTrip(t, svc)

	sub := ExpenseSubmission{
		TripID: tripID, PayerID: a, Amount: 1000, Currency: "USD", Date: "2026-07-01",
		ClientID: "offline-abc",
		Splits:   splitsFor(map[string]int64{a: 500, b: 500}),
	}

	first, created, err := svc.SubmitExpense(ctx, sub)
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}
	if !created {
		t.Fatal("first submission should create")
	}

	// Retry with the identical payload: same expense back, nothing new.
	second, created, err := svc.SubmitExpense(ctx, sub)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if created {
		t.Error("retry should not create")
	}
	if second.ID != first.ID {
		t.Errorf("retry returned %s, want %s", second.ID, first.ID)
	}

	expenses, err := svc.ListExpenses(ctx, tripID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("store has %d expenses, want 1", len(expenses))
	}

	// Same key, different payload: client bug, original untouched.
	conflicting := sub
	conflicting.Amount = 2000
	conflicting.Splits = splitsFor(map[string]int64{a: 1000, b: 1000})
	_, _, err = svc.SubmitExpense(ctx, conflicting)
	if !errors.Is(err, models.ErrConflictingRetry) {
		t.Fatalf("got %v, want ErrConflictingRetry", err)
	}
	got, err := svc.GetExpense(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Amount != 1000 {
		t.Errorf("original amount changed to %d", got.Amount)
	}
}

func TestSubmitExpense_NoClientIDAlwaysNew(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, a, b, _ := setupTrip(t, svc)

	sub := ExpenseSubmission{
		TripID: tripID, PayerID: a, Amount: 300, Currency: "USD", Date: "2026-07-01",
		Splits: splitsFor(map[string]int64{b: 300}),
	}
	for i := 0; i < 2; i++ {
		if _, created, err := svc.SubmitExpense(ctx, sub); err != nil || !created {
			t.Fatalf("submission %d: created=%v err=%v", i, created, err)
		}
	}

	expenses, err := svc.ListExpenses(ctx, tripID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("store has %d expenses, want 2", len(expenses))
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, a, b, _ := setupTrip(t, svc)

	if _, err := svc.RecordPayment(ctx, tripID, a, a, 100, "2026-07-01", ""); !errors.Is(err, models.ErrSelfPayment) {
		t.Errorf("self payment: got %v, want ErrSelfPayment", err)
	}
	if _, err := svc.RecordPayment(ctx, tripID, a, b, 0, "2026-07-01", ""); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.RecordPayment(ctx, tripID, a, b, -10, "2026-07-01", ""); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.RecordPayment(ctx, tripID, a, b, 100, "2026-07-01", "dinner"); err != nil {
		t.Errorf("valid payment failed: %v", err)
	}
}

func TestBalancesAndSettlement_WorkedExample(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, a, b, c := setupTrip(t, svc)

	// Expense 1: A pays 3000, split evenly.
	if _, _, err := svc.SubmitExpense(ctx, ExpenseSubmission{
		TripID: tripID, PayerID: a, Amount: 3000, Currency: "USD", Date: "2026-07-01",
		Splits: splitsFor(map[string]int64{a: 1000, b: 1000, c: 1000}),
	}); err != nil {
		t.Fatalf("expense 1 failed: %v", err)
	}
	// Expense 2: B pays 1200, split A=600, B=600.
	if _, _, err := svc.SubmitExpense(ctx, ExpenseSubmission{
		TripID: tripID, PayerID: b, Amount: 1200, Currency: "USD", Date: "2026-07-02",
		Splits: splitsFor(map[string]int64{a: 600, b: 600}),
	}); err != nil {
		t.Fatalf("expense 2 failed: %v", err)
	}

	balances, err := svc.Balances(ctx, tripID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	wantNet := map[string]int64{a: 1400, b: -400, c: -1000}
	var sum int64
	for _, bal := range balances {
		if bal.Net != wantNet[bal.ParticipantID] {
			t.Errorf("net for %s = %d, want %d", bal.ParticipantID, bal.Net, wantNet[bal.ParticipantID])
		}
		sum += bal.Net
	}
	if sum != 0 {
		t.Errorf("nets sum to %d, want 0", sum)
	}

	plan, err := svc.SettlementPlan(ctx, tripID)
	if err != nil {
		t.Fatalf("SettlementPlan failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("plan has %d transfers, want 2: %+v", len(plan), plan)
	}

	// Apply every suggested transfer as a real payment; the trip settles.
	for _, tr := range plan {
		if _, err := svc.RecordPayment(ctx, tripID, tr.From, tr.To, tr.Amount, "2026-07-03", "settling up"); err != nil {
			t.Fatalf("applying transfer %+v failed: %v", tr, err)
		}
	}

	final, err := svc.Balances(ctx, tripID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	for _, bal := range final {
		if bal.Net != 0 {
			t.Errorf("after settling, %s net = %d, want 0", bal.ParticipantID, bal.Net)
		}
	}

	// A settled trip yields an empty plan.
	plan, err = svc.SettlementPlan(ctx, tripID)
	if err != nil {
		t.Fatalf("SettlementPlan failed: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestRemoveParticipant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tripID, a, b, _ := setupTrip(t, svc)

	if _, _, err := svc.SubmitExpense(ctx, ExpenseSubmission{
		TripID: tripID, PayerID: a, Amount: 100, Currency: "USD", Date: "2026-07-01",
		Splits: splitsFor(map[string]int64{b: 100}),
	}); err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}

	// Payer and split holder are both locked in by history.
	if err := svc.RemoveParticipant(ctx, a); !errors.Is(err, models.ErrParticipantInUse) {
		t.Errorf("payer removal: got %v, want ErrParticipantInUse", err)
	}
	if err := svc.RemoveParticipant(ctx, b); !errors.Is(err, models.ErrParticipantInUse) {
		t.Errorf("split holder removal: got %v, want ErrParticipantInUse", err)
	}

	// Clearing the user link is the supported alternative.
	if err := svc.UnlinkParticipantUser(ctx, a); err != nil {
		t.Errorf("UnlinkParticipantUser failed: %v", err)
	}
}
