package domain

import (
	"strconv"
	"strings"
	"time"
)

// Status is the payment status of a transaction entry.
type Status string

const (
	StatusUnpaid     Status = "Belum Bayar"
	StatusProcessing Status = "Di Proses"
	StatusSuccess    Status = "Berhasil"
	StatusCancelled  Status = "Dibatalkan"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusUnpaid, StatusProcessing, StatusSuccess, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Kind separates goods from services.
type Kind string

const (
	KindGoods   Kind = "produk"
	KindService Kind = "jasa"
)

const DefaultPaymentMethod = "QRIS"

// Entry is one donation transaction. JSON names match the document the
// donation page reads and writes.
type Entry struct {
	Seller        string `json:"penjual"`
	Kind          Kind   `json:"jenis"`
	CreatedAt     string `json:"tanggal"`
	PayerName     string `json:"nama"`
	PayerEmail    string `json:"email"`
	Message       string `json:"pesan"`
	Label         string `json:"nama_transaksi"`
	Amount        string `json:"harga_transaksi"`
	PaymentMethod string `json:"metode_pembayaran_transaksi"`
	Status        Status `json:"status_pembayaran_transaksi"`
	PaymentURL    string `json:"url_pambayaran"`
	ExpiresAt     string `json:"kedaluwarsa"`
	MutationRef   string `json:"ref_mutasi,omitempty"`
}

// AmountValue parses the digits of the amount text, ignoring separators and
// currency symbols. Unparseable amounts yield zero.
func (e Entry) AmountValue() int64 {
	return ParseDigits(e.Amount)
}

// Expiry returns the parsed expiry timestamp when present.
func (e Entry) Expiry() (time.Time, bool) {
	if strings.TrimSpace(e.ExpiresAt) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, e.ExpiresAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Entries maps a transaction key to its entry.
type Entries map[string]Entry

// Clone returns a shallow copy safe to mutate without touching e.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ParseDigits keeps only ASCII digits from s and parses the result.
func ParseDigits(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
