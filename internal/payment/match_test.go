package payment

import "testing"

func TestTolerance(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent float64
		min     int64
		want    int64
	}{
		{name: "percent dominates", amount: 10000, percent: 0.02, min: 100, want: 200},
		{name: "minimum dominates", amount: 1000, percent: 0.02, min: 100, want: 100},
		{name: "floors fractional band", amount: 10070, percent: 0.02, min: 100, want: 201},
		{name: "zero amount", amount: 0, percent: 0.02, min: 100, want: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Tolerance(tc.amount, tc.percent, tc.min); got != tc.want {
				t.Fatalf("Tolerance() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMatchToleranceBand(t *testing.T) {
	tol := Tolerance(10000, 0.02, 100)
	tests := []struct {
		reported int64
		want     bool
	}{
		{10000, true},
		{9900, true},
		{9800, true},
		{9799, false},
		{10200, true},
		{10201, false},
	}
	for _, tc := range tests {
		_, ok := Match(10000, []Mutation{{Type: "CR", Amount: tc.reported}}, tol, nil)
		if ok != tc.want {
			t.Fatalf("Match(10000, %d) = %v, want %v", tc.reported, ok, tc.want)
		}
	}
}

func TestMatchSkipsDebitsAndClaimed(t *testing.T) {
	claimedMutation := Mutation{Type: "CR", Amount: 10000, Raw: []byte(`{"id":1}`)}
	fresh := Mutation{Type: "credit", Amount: 9950, Raw: []byte(`{"id":2}`)}
	mutations := []Mutation{
		{Type: "DB", Amount: 10000, Raw: []byte(`{"id":0}`)},
		claimedMutation,
		fresh,
	}
	claimed := map[string]struct{}{claimedMutation.Fingerprint(): {}}

	got, ok := Match(10000, mutations, 200, claimed)
	if !ok {
		t.Fatalf("expected a match")
	}
	if got.Fingerprint() != fresh.Fingerprint() {
		t.Fatalf("matched %+v, want the unclaimed credit", got)
	}
	if _, ok := Match(10000, mutations[:2], 200, claimed); ok {
		t.Fatalf("debit or claimed mutation must not match")
	}
}

func TestMatchFirstWins(t *testing.T) {
	a := Mutation{Type: "CR", Amount: 9990, Raw: []byte(`{"id":"a"}`)}
	b := Mutation{Type: "CR", Amount: 10000, Raw: []byte(`{"id":"b"}`)}
	got, ok := Match(10000, []Mutation{a, b}, 100, nil)
	if !ok || got.Fingerprint() != a.Fingerprint() {
		t.Fatalf("expected first matching mutation, got %+v ok=%v", got, ok)
	}
}

func TestFee(t *testing.T) {
	if got := Fee(10000, 0.007); got != 70 {
		t.Fatalf("Fee(10000) = %d, want 70", got)
	}
	if got := Fee(1001, 0.007); got != 8 {
		t.Fatalf("Fee(1001) = %d, want 8", got)
	}
	if got := Fee(0, 0.007); got != 0 {
		t.Fatalf("Fee(0) = %d, want 0", got)
	}
}
