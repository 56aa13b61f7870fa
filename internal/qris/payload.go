// Package qris builds dynamic QRIS payloads from a merchant's static code.
package qris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	tagAmount   = "54"
	tagChecksum = "6304"

	countryCodeMarker = "5802ID"
	staticInitiation  = "010211"
	dynamicInitiation = "010212"

	checksumLen = 4
)

// ErrFormat reports a static template that cannot be turned into a dynamic payload.
var ErrFormat = errors.New("qris: invalid static payload")

// Validate checks the preconditions BuildPayload relies on.
func Validate(template string) error {
	if len(template) < len(tagChecksum)+checksumLen {
		return fmt.Errorf("%w: payload too short", ErrFormat)
	}
	if !strings.Contains(template, countryCodeMarker) {
		return fmt.Errorf("%w: country code tag (%s) not found", ErrFormat, countryCodeMarker)
	}
	trailer := template[len(template)-len(tagChecksum)-checksumLen : len(template)-checksumLen]
	if trailer != tagChecksum {
		return fmt.Errorf("%w: missing checksum field", ErrFormat)
	}
	return nil
}

// BuildPayload converts a static QRIS template into a dynamic payload carrying
// the given amount. Negative amounts are clamped to zero.
func BuildPayload(template string, amount int64) (string, error) {
	if err := Validate(template); err != nil {
		return "", err
	}
	body := template[:len(template)-checksumLen]
	body = strings.Replace(body, staticInitiation, dynamicInitiation, 1)

	pos := strings.Index(body, countryCodeMarker)
	if pos < 0 {
		return "", fmt.Errorf("%w: country code tag (%s) not found", ErrFormat, countryCodeMarker)
	}

	var b strings.Builder
	b.Grow(len(body) + 16)
	b.WriteString(body[:pos])
	b.WriteString(amountField(amount))
	b.WriteString(body[pos:])
	out := b.String()
	return out + CRC16(out), nil
}

func amountField(amount int64) string {
	if amount < 0 {
		amount = 0
	}
	digits := strconv.FormatInt(amount, 10)
	return fmt.Sprintf("%s%02d%s", tagAmount, len(digits), digits)
}
