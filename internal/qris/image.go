package qris

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultImageSize is the rendered PNG edge length in pixels.
const DefaultImageSize = 512

// RenderPNG encodes payload as a PNG QR code with the highest error
// correction level. The library keeps a four-module quiet zone.
func RenderPNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	code, err := qrcode.New(payload, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("qris: encode qr: %w", err)
	}
	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("qris: render png: %w", err)
	}
	return png, nil
}

// DataURL renders payload and wraps it as a base64 PNG data URL.
func DataURL(payload string) (string, error) {
	png, err := RenderPNG(payload, DefaultImageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
