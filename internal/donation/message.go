package donation

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"viaqris/internal/domain"
)

var wib = time.FixedZone("WIB", 7*60*60)

// FormatRupiah formats n with Indonesian digit grouping, e.g. "Rp 10.000".
func FormatRupiah(n int64) string {
	return "Rp " + message.NewPrinter(language.Indonesian).Sprintf("%d", n)
}

// PaidMessage renders the Telegram HTML message for a settled donation.
func PaidMessage(key string, e domain.Entry, at time.Time) string {
	name := e.PayerName
	if name == "" {
		name = "-"
	}
	method := e.PaymentMethod
	if method == "" {
		method = domain.DefaultPaymentMethod
	}

	var b strings.Builder
	b.WriteString("<b>🎉 DUKUNGAN BERHASIL</b>\n")
	b.WriteString("───────────────\n")
	fmt.Fprintf(&b, "<b>ID</b>: <code>%s</code>\n", html.EscapeString(key))
	fmt.Fprintf(&b, "<b>Nama</b>: %s\n", html.EscapeString(name))
	fmt.Fprintf(&b, "<b>Jumlah</b>: %s\n", html.EscapeString(FormatRupiah(e.AmountValue())))
	fmt.Fprintf(&b, "<b>Metode</b>: %s\n", html.EscapeString(method))
	if e.Message != "" {
		fmt.Fprintf(&b, "<b>Pesan</b>:\n<blockquote>%s</blockquote>\n", html.EscapeString(e.Message))
	}
	fmt.Fprintf(&b, "<b>Waktu</b>: %s", at.In(wib).Format("02/01/2006 15.04.05 MST"))
	return b.String()
}
