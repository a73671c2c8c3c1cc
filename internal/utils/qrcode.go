package utils

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRCodeDataURL gera o PNG do QR code e devolve como data URL.
func QRCodeDataURL(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar QR code: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
