// Package payment decides whether a reported bank mutation settles an
// expected donation amount.
package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Mutation is one entry of the bank mutation history.
type Mutation struct {
	Type   string
	Amount int64
	// Raw is the record as reported by the provider, used for fingerprinting.
	Raw []byte
}

// IsCredit reports whether the mutation is an inbound credit.
func (m Mutation) IsCredit() bool {
	switch strings.ToUpper(strings.TrimSpace(m.Type)) {
	case "CR", "CREDIT":
		return true
	}
	return false
}

// Fingerprint identifies the mutation so it can settle at most one entry.
func (m Mutation) Fingerprint() string {
	src := m.Raw
	if len(src) == 0 {
		src = []byte(strings.ToUpper(m.Type) + ":" + strconv.FormatInt(m.Amount, 10))
	}
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Tolerance returns max(min, floor(amount * percent)).
func Tolerance(amount int64, percent float64, min int64) int64 {
	band := decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(percent)).Floor().IntPart()
	if band < min {
		return min
	}
	return band
}

// Within reports whether got is within tolerance of want.
func Within(want, got, tolerance int64) bool {
	diff := want - got
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// Match returns the first credit mutation within tolerance of amount whose
// fingerprint is not in claimed.
func Match(amount int64, mutations []Mutation, tolerance int64, claimed map[string]struct{}) (Mutation, bool) {
	for _, m := range mutations {
		if !m.IsCredit() {
			continue
		}
		if !Within(amount, m.Amount, tolerance) {
			continue
		}
		if _, taken := claimed[m.Fingerprint()]; taken {
			continue
		}
		return m, true
	}
	return Mutation{}, false
}

// Fee returns ceil(amount * percent) for the service fee added to a donation.
func Fee(amount int64, percent float64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(percent)).Ceil().IntPart()
}
