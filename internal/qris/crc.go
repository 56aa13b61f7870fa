package qris

import (
	"fmt"
	"strings"
)

// CRC16 returns the CRC-16/CCITT-FALSE checksum of s as four uppercase hex
// digits (poly 0x1021, init 0xFFFF, no reflection, no final XOR).
func CRC16(s string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}

// Verify reports whether the trailing checksum field of payload is correct.
func Verify(payload string) error {
	if len(payload) < len(tagChecksum)+checksumLen {
		return fmt.Errorf("%w: payload too short", ErrFormat)
	}
	body := payload[:len(payload)-checksumLen]
	if !strings.HasSuffix(body, tagChecksum) {
		return fmt.Errorf("%w: missing checksum field", ErrFormat)
	}
	got := strings.ToUpper(payload[len(payload)-checksumLen:])
	if want := CRC16(body); got != want {
		return fmt.Errorf("%w: checksum mismatch: got %s want %s", ErrFormat, got, want)
	}
	return nil
}
