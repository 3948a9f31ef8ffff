package calculator

import (
	"errors"
	"testing"

	"github.com/tripsplit/ledger/internal/models"
)

func nets(pairs map[string]int64) []models.Balance {
	out := make([]models.Balance, 0, len(pairs))
	for id, net := range pairs {
		out = append(out, models.Balance{ParticipantID: id, Net: net})
	}
	return out
}

// applyPlan plays the suggested transfers back into the nets and returns the
// resulting positions.
func applyPlan(balances []models.Balance, plan []models.Transfer) map[string]int64 {
	result := make(map[string]int64, len(balances))
	for _, b := range balances {
		result[b.ParticipantID] = b.Net
	}
	for _, tr := range plan {
		result[tr.From] += tr.Amount
		result[tr.To] -= tr.Amount
	}
	return result
}

func TestPlanSettlement_WorkedExample(t *testing.T) {
	balances := nets(map[string]int64{"a": 1400, "b": -400, "c": -1000})

	plan, err := PlanSettlement(balances)
	if err != nil {
		t.Fatalf("PlanSettlement failed: %v", err)
	}

	want := []models.Transfer{
		{From: "c", To: "a", Amount: 1000},
		{From: "b", To: "a", Amount: 400},
	}
	if len(plan) != len(want) {
		t.Fatalf("got %d transfers, want %d: %+v", len(plan), len(want), plan)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("transfer %d = %+v, want %+v", i, plan[i], want[i])
		}
	}
}

func TestPlanSettlement_ZeroesEveryNet(t *testing.T) {
	cases := []map[string]int64{
		{"a": 1400, "b": -400, "c": -1000},
		{"a": 1, "b": -1},
		{"a": 250, "b": 250, "c": -100, "d": -400},
		{"a": 999999, "b": -333333, "c": -333333, "d": -333333},
	}

	for _, pairs := range cases {
		balances := nets(pairs)
		plan, err := PlanSettlement(balances)
		if err != nil {
			t.Fatalf("PlanSettlement(%v) failed: %v", pairs, err)
		}
		for id, remaining := range applyPlan(balances, plan) {
			if remaining != 0 {
				t.Errorf("after plan for %v: %s left with %d", pairs, id, remaining)
			}
		}
	}
}

func TestPlanSettlement_TransferCountBound(t *testing.T) {
	// At most n-1 transfers for n participants with non-zero net.
	balances := nets(map[string]int64{
		"a": 500, "b": 300, "c": -200, "d": -200, "e": -400, "f": 0,
	})

	plan, err := PlanSettlement(balances)
	if err != nil {
		t.Fatalf("PlanSettlement failed: %v", err)
	}

	nonZero := 0
	for _, b := range balances {
		if b.Net != 0 {
			nonZero++
		}
	}
	if len(plan) > nonZero-1 {
		t.Errorf("plan has %d transfers, bound is %d", len(plan), nonZero-1)
	}
}

func TestPlanSettlement_DeterministicTieBreak(t *testing.T) {
	// Equal magnitudes everywhere: ties resolve by participant ID ascending.
	balances := nets(map[string]int64{"d": -100, "c": -100, "b": 100, "a": 100})

	plan, err := PlanSettlement(balances)
	if err != nil {
		t.Fatalf("PlanSettlement failed: %v", err)
	}

	want := []models.Transfer{
		{From: "c", To: "a", Amount: 100},
		{From: "d", To: "b", Amount: 100},
	}
	if len(plan) != len(want) {
		t.Fatalf("got %d transfers, want %d: %+v", len(plan), len(want), plan)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("transfer %d = %+v, want %+v", i, plan[i], want[i])
		}
	}
}

func TestPlanSettlement_AllZeroNets(t *testing.T) {
	plan, err := PlanSettlement(nets(map[string]int64{"a": 0, "b": 0}))
	if err != nil {
		t.Fatalf("PlanSettlement failed: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestPlanSettlement_UnbalancedLedgerRefused(t *testing.T) {
	_, err := PlanSettlement(nets(map[string]int64{"a": 100, "b": -50}))
	if !errors.Is(err, models.ErrUnbalancedLedger) {
		t.Fatalf("got %v, want ErrUnbalancedLedger", err)
	}
}
