package checkin

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	tokenBytes = 32
	qrSize     = 256
)

// newToken returns an unguessable URL-safe token.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// qrPNG renders the token as a QR code for the provider to display at the door.
func qrPNG(token string) ([]byte, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render check-in qr code: %w", err)
	}
	return png, nil
}
