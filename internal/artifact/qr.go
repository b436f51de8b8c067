package artifact

import (
	"fmt"
	"regexp"

	qrcode "github.com/skip2/go-qrcode"
)

// qrSize matches the original rendering so stored and on-the-fly images
// stay byte-identical for the same code.
const qrSize = 256

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// QRFileName derives the deterministic artifact name for a pass code.
func QRFileName(code string) string {
	return unsafeChars.ReplaceAllString(code, "_") + ".png"
}

// QRRelPath is the storage-relative location of a pass's QR image.
func QRRelPath(code string) string {
	return "qr/" + QRFileName(code)
}

// EncodeQR renders the QR PNG for a pass code. The image is a pure function
// of the code: no timestamps, no randomness.
func EncodeQR(code string) ([]byte, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %s: %w", code, err)
	}
	return png, nil
}
